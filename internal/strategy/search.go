// Package strategy holds the interchangeable catalog search and
// recommendation algorithms.
package strategy

import (
	"strings"

	"library-lending-backend/internal/domain"
)

type SearchStrategy interface {
	Name() string
	Search(books []domain.Book, query string) []domain.Book
}

type TitleSearch struct{}

type AuthorSearch struct{}

// ISBNSearch matches exactly. Case is significant.
type ISBNSearch struct{}

func (TitleSearch) Name() string  { return "title" }
func (AuthorSearch) Name() string { return "author" }
func (ISBNSearch) Name() string   { return "isbn" }

func (TitleSearch) Search(books []domain.Book, query string) []domain.Book {
	return containsFold(books, query, func(b *domain.Book) string { return b.Title })
}

func (AuthorSearch) Search(books []domain.Book, query string) []domain.Book {
	return containsFold(books, query, func(b *domain.Book) string { return b.Author })
}

func (ISBNSearch) Search(books []domain.Book, query string) []domain.Book {
	q := strings.TrimSpace(query)
	out := []domain.Book{}
	if q == "" {
		return out
	}
	for _, b := range books {
		if b.ISBN == q {
			out = append(out, b)
		}
	}
	return out
}

func containsFold(books []domain.Book, query string, field func(*domain.Book) string) []domain.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []domain.Book{}
	if q == "" {
		return out
	}
	for i := range books {
		if strings.Contains(strings.ToLower(field(&books[i])), q) {
			out = append(out, books[i])
		}
	}
	return out
}

// SearchStrategyByName resolves "title", "author" or "isbn".
func SearchStrategyByName(name string) (SearchStrategy, bool) {
	switch strings.ToLower(name) {
	case "title":
		return TitleSearch{}, true
	case "author":
		return AuthorSearch{}, true
	case "isbn":
		return ISBNSearch{}, true
	default:
		return nil, false
	}
}
