package strategy

import (
	"fmt"
	"sort"
	"sync"

	"library-lending-backend/internal/domain"
)

type RecommendationStrategy interface {
	Name() string
	Recommend(patron *domain.Patron, allBooks []domain.Book, limit int) ([]domain.Book, error)
}

// PopularitySource is implemented by strategies that need the borrowing
// history of every patron before they can rank.
type PopularitySource interface {
	UpdatePopularityData(patrons []domain.Patron)
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}
	return nil
}

func truncate(books []domain.Book, limit int) []domain.Book {
	if len(books) > limit {
		return books[:limit]
	}
	return books
}

// AuthorBased favours authors the patron has borrowed most often.
type AuthorBased struct{}

func (AuthorBased) Name() string { return "author" }

func (AuthorBased) Recommend(patron *domain.Patron, allBooks []domain.Book, limit int) ([]domain.Book, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	if len(patron.BorrowingHistory) == 0 {
		available := make([]domain.Book, 0, len(allBooks))
		for _, b := range allBooks {
			if b.IsAvailable() {
				available = append(available, b)
			}
		}
		sort.SliceStable(available, func(i, j int) bool {
			return available[i].PublicationYear > available[j].PublicationYear
		})
		return truncate(available, limit), nil
	}

	borrowed := patron.BorrowedISBNs()
	byISBN := make(map[string]*domain.Book, len(allBooks))
	for i := range allBooks {
		byISBN[allBooks[i].ISBN] = &allBooks[i]
	}

	// Ties in frequency keep the order in which authors first appear in the history.
	freq := make(map[string]int)
	var authors []string
	for _, rec := range patron.BorrowingHistory {
		b, ok := byISBN[rec.ISBN]
		if !ok {
			continue
		}
		if _, seen := freq[b.Author]; !seen {
			authors = append(authors, b.Author)
		}
		freq[b.Author]++
	}
	sort.SliceStable(authors, func(i, j int) bool {
		return freq[authors[i]] > freq[authors[j]]
	})

	eligible := func(b *domain.Book) bool {
		_, had := borrowed[b.ISBN]
		return b.IsAvailable() && !had
	}

	picked := make(map[string]struct{})
	recs := []domain.Book{}
	for _, author := range authors {
		for i := range allBooks {
			b := &allBooks[i]
			if b.Author == author && eligible(b) {
				recs = append(recs, *b)
				picked[b.ISBN] = struct{}{}
			}
		}
		if len(recs) >= limit {
			break
		}
	}

	for i := range allBooks {
		if len(recs) >= limit {
			break
		}
		b := &allBooks[i]
		if _, dup := picked[b.ISBN]; dup || !eligible(b) {
			continue
		}
		recs = append(recs, *b)
		picked[b.ISBN] = struct{}{}
	}

	return truncate(recs, limit), nil
}

// PopularityBased ranks by how often every patron has borrowed each book.
// UpdatePopularityData must run before Recommend yields anything but year order.
type PopularityBased struct {
	mu     sync.RWMutex
	counts map[string]int
}

func NewPopularityBased() *PopularityBased {
	return &PopularityBased{counts: make(map[string]int)}
}

func (*PopularityBased) Name() string { return "popularity" }

// UpdatePopularityData rebuilds the counts from scratch.
func (p *PopularityBased) UpdatePopularityData(patrons []domain.Patron) {
	counts := make(map[string]int)
	for _, patron := range patrons {
		for _, rec := range patron.BorrowingHistory {
			counts[rec.ISBN]++
		}
	}
	p.mu.Lock()
	p.counts = counts
	p.mu.Unlock()
}

func (p *PopularityBased) Popularity(isbn string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counts[isbn]
}

func (p *PopularityBased) Recommend(patron *domain.Patron, allBooks []domain.Book, limit int) ([]domain.Book, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	borrowed := patron.BorrowedISBNs()

	p.mu.RLock()
	counts := p.counts
	p.mu.RUnlock()

	out := []domain.Book{}
	for _, b := range allBooks {
		if _, had := borrowed[b.ISBN]; had || !b.IsAvailable() {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := counts[out[i].ISBN], counts[out[j].ISBN]
		if ci != cj {
			return ci > cj
		}
		return out[i].PublicationYear > out[j].PublicationYear
	})
	return truncate(out, limit), nil
}
