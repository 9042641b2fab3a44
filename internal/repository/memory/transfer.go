package memory

import (
	"context"
	"fmt"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type transferRepository struct {
	mu        sync.RWMutex
	transfers map[string]domain.TransferRequest
	order     []string
}

func NewTransferRepository() repository.TransferRepository {
	return &transferRepository{transfers: make(map[string]domain.TransferRequest)}
}

func cloneTransfer(t domain.TransferRequest) domain.TransferRequest {
	if t.CompletionDate != nil {
		c := *t.CompletionDate
		t.CompletionDate = &c
	}
	return t
}

func (r *transferRepository) Create(ctx context.Context, req *domain.TransferRequest) error {
	if req == nil {
		return missing("transfer request")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[req.ID]; ok {
		return fmt.Errorf("%w: transfer %s already exists", domain.ErrDuplicateKey, req.ID)
	}
	r.transfers[req.ID] = cloneTransfer(*req)
	r.order = append(r.order, req.ID)
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*domain.TransferRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, fmt.Errorf("%w: transfer %s", domain.ErrNotFound, id)
	}
	cp := cloneTransfer(t)
	return &cp, nil
}

func (r *transferRepository) Update(ctx context.Context, req *domain.TransferRequest) error {
	if req == nil {
		return missing("transfer request")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[req.ID]; !ok {
		return fmt.Errorf("%w: transfer %s", domain.ErrNotFound, req.ID)
	}
	r.transfers[req.ID] = cloneTransfer(*req)
	return nil
}

func (r *transferRepository) ListByISBN(ctx context.Context, isbn string) ([]domain.TransferRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.TransferRequest{}
	for _, id := range r.order {
		if t := r.transfers[id]; t.ISBN == isbn {
			out = append(out, cloneTransfer(t))
		}
	}
	return out, nil
}
