package domain

import (
	"strings"

	"github.com/google/uuid"
)

type PatronCategory string

const (
	PatronCategoryStudent PatronCategory = "STUDENT"
	PatronCategoryFaculty PatronCategory = "FACULTY"
)

// BorrowLimit returns the maximum number of concurrently active loans.
func (c PatronCategory) BorrowLimit() int {
	switch c {
	case PatronCategoryStudent:
		return 5
	case PatronCategoryFaculty:
		return 10
	default:
		return 0
	}
}

func (c PatronCategory) IDPrefix() string {
	switch c {
	case PatronCategoryStudent:
		return "STU"
	case PatronCategoryFaculty:
		return "FAC"
	default:
		return "PAT"
	}
}

func (c PatronCategory) Valid() bool {
	return c == PatronCategoryStudent || c == PatronCategoryFaculty
}

type Patron struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Category         PatronCategory  `json:"category"`
	BorrowingHistory []LendingRecord `json:"borrowing_history"`
}

// NewPatronID builds an identifier such as "STU1A2B3C4D".
func NewPatronID(category PatronCategory) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return category.IDPrefix() + strings.ToUpper(suffix)
}

func (p *Patron) BorrowLimit() int {
	return p.Category.BorrowLimit()
}

func (p *Patron) ActiveBorrowCount() int {
	n := 0
	for i := range p.BorrowingHistory {
		if p.BorrowingHistory[i].IsActive() {
			n++
		}
	}
	return n
}

func (p *Patron) CanBorrowMore() bool {
	return p.ActiveBorrowCount() < p.BorrowLimit()
}

// BorrowedISBNs is the set of every ISBN the patron has ever borrowed.
func (p *Patron) BorrowedISBNs() map[string]struct{} {
	seen := make(map[string]struct{}, len(p.BorrowingHistory))
	for _, rec := range p.BorrowingHistory {
		seen[rec.ISBN] = struct{}{}
	}
	return seen
}

// ReplaceHistoryRecord swaps in rec for the history entry with the same ID.
// It returns false when no such entry exists.
func (p *Patron) ReplaceHistoryRecord(rec LendingRecord) bool {
	for i := range p.BorrowingHistory {
		if p.BorrowingHistory[i].ID == rec.ID {
			p.BorrowingHistory[i] = rec
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no history storage with p.
func (p Patron) Clone() Patron {
	if p.BorrowingHistory != nil {
		h := make([]LendingRecord, len(p.BorrowingHistory))
		for i, rec := range p.BorrowingHistory {
			h[i] = rec.Clone()
		}
		p.BorrowingHistory = h
	}
	return p
}
