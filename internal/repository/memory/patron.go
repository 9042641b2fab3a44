package memory

import (
	"context"
	"fmt"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type patronRepository struct {
	mu      sync.RWMutex
	patrons map[string]domain.Patron
}

func NewPatronRepository() repository.PatronRepository {
	return &patronRepository{patrons: make(map[string]domain.Patron)}
}

func (r *patronRepository) Create(ctx context.Context, patron *domain.Patron) error {
	if patron == nil {
		return missing("patron")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patrons[patron.ID]; ok {
		return fmt.Errorf("%w: patron %s already exists", domain.ErrDuplicateKey, patron.ID)
	}
	r.patrons[patron.ID] = patron.Clone()
	return nil
}

func (r *patronRepository) GetByID(ctx context.Context, id string) (*domain.Patron, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patrons[id]
	if !ok {
		return nil, fmt.Errorf("%w: patron %s", domain.ErrNotFound, id)
	}
	cp := p.Clone()
	return &cp, nil
}

func (r *patronRepository) List(ctx context.Context) ([]domain.Patron, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Patron, 0, len(r.patrons))
	for _, id := range sortedKeys(r.patrons) {
		out = append(out, r.patrons[id].Clone())
	}
	return out, nil
}

func (r *patronRepository) Update(ctx context.Context, patron *domain.Patron) error {
	if patron == nil {
		return missing("patron")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patrons[patron.ID]; !ok {
		return fmt.Errorf("%w: patron %s", domain.ErrNotFound, patron.ID)
	}
	r.patrons[patron.ID] = patron.Clone()
	return nil
}

func (r *patronRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patrons[id]; !ok {
		return false, nil
	}
	delete(r.patrons, id)
	return true, nil
}
