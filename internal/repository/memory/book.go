package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type bookRepository struct {
	mu    sync.RWMutex
	books map[string]domain.Book
	order []string
}

func NewBookRepository() repository.BookRepository {
	return &bookRepository{books: make(map[string]domain.Book)}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return missing("book")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ISBN]; ok {
		return fmt.Errorf("%w: book %s already exists", domain.ErrDuplicateKey, book.ISBN)
	}
	r.books[book.ISBN] = *book
	r.order = append(r.order, book.ISBN)
	return nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[isbn]
	if !ok {
		return nil, fmt.Errorf("%w: book %s", domain.ErrNotFound, isbn)
	}
	return &b, nil
}

// List returns books in insertion order.
func (r *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Book, 0, len(r.order))
	for _, isbn := range r.order {
		out = append(out, r.books[isbn])
	}
	return out, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return missing("book")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ISBN]; !ok {
		return fmt.Errorf("%w: book %s", domain.ErrNotFound, book.ISBN)
	}
	r.books[book.ISBN] = *book
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, isbn string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[isbn]; !ok {
		return false, nil
	}
	delete(r.books, isbn)
	r.order = removeKey(r.order, isbn)
	return true, nil
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i:i], keys[i+1:]...)
		}
	}
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
