package domain

import "time"

// LoanPeriod is the time between borrowing a book and its due date.
const LoanPeriod = 14 * 24 * time.Hour

type LendingRecord struct {
	ID         string     `json:"id"`
	PatronID   string     `json:"patron_id"`
	ISBN       string     `json:"isbn"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

func (r *LendingRecord) IsActive() bool {
	return r.ReturnDate == nil
}

func (r *LendingRecord) IsOverdue(now time.Time) bool {
	return r.IsActive() && now.After(r.DueDate)
}

func (r LendingRecord) Clone() LendingRecord {
	if r.ReturnDate != nil {
		t := *r.ReturnDate
		r.ReturnDate = &t
	}
	return r
}
