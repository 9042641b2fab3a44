package memory

import (
	"context"
	"fmt"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type lendingRepository struct {
	mu      sync.RWMutex
	records map[string]domain.LendingRecord
	order   []string
}

func NewLendingRepository() repository.LendingRepository {
	return &lendingRepository{records: make(map[string]domain.LendingRecord)}
}

func (r *lendingRepository) Create(ctx context.Context, rec *domain.LendingRecord) error {
	if rec == nil {
		return missing("lending record")
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: lending record id is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; ok {
		return fmt.Errorf("%w: lending record %s already exists", domain.ErrDuplicateKey, rec.ID)
	}
	r.records[rec.ID] = rec.Clone()
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *lendingRepository) GetByID(ctx context.Context, id string) (*domain.LendingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: lending record %s", domain.ErrNotFound, id)
	}
	cp := rec.Clone()
	return &cp, nil
}

func (r *lendingRepository) List(ctx context.Context) ([]domain.LendingRecord, error) {
	return r.filter(func(*domain.LendingRecord) bool { return true }), nil
}

func (r *lendingRepository) ListByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error) {
	return r.filter(func(rec *domain.LendingRecord) bool { return rec.PatronID == patronID }), nil
}

func (r *lendingRepository) ListByISBN(ctx context.Context, isbn string) ([]domain.LendingRecord, error) {
	return r.filter(func(rec *domain.LendingRecord) bool { return rec.ISBN == isbn }), nil
}

func (r *lendingRepository) ListActiveByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error) {
	return r.filter(func(rec *domain.LendingRecord) bool {
		return rec.PatronID == patronID && rec.IsActive()
	}), nil
}

func (r *lendingRepository) Upsert(ctx context.Context, rec *domain.LendingRecord) error {
	if rec == nil {
		return missing("lending record")
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: lending record id is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	}
	r.records[rec.ID] = rec.Clone()
	return nil
}

// filter walks records in insertion order.
func (r *lendingRepository) filter(keep func(*domain.LendingRecord) bool) []domain.LendingRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.LendingRecord{}
	for _, id := range r.order {
		rec := r.records[id]
		if keep(&rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}
