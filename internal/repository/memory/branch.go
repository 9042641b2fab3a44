package memory

import (
	"context"
	"fmt"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type branchRepository struct {
	mu       sync.RWMutex
	branches map[string]domain.Branch
}

func NewBranchRepository() repository.BranchRepository {
	return &branchRepository{branches: make(map[string]domain.Branch)}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	if branch == nil {
		return missing("branch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[branch.ID]; ok {
		return fmt.Errorf("%w: branch %s already exists", domain.ErrDuplicateKey, branch.ID)
	}
	r.branches[branch.ID] = *branch
	return nil
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.branches[id]
	if !ok {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrNotFound, id)
	}
	return &b, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Branch, 0, len(r.branches))
	for _, id := range sortedKeys(r.branches) {
		out = append(out, r.branches[id])
	}
	return out, nil
}

func (r *branchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	if branch == nil {
		return missing("branch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[branch.ID]; !ok {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, branch.ID)
	}
	r.branches[branch.ID] = *branch
	return nil
}

func (r *branchRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[id]; !ok {
		return false, nil
	}
	delete(r.branches, id)
	return true, nil
}
