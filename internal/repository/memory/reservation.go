package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type reservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]domain.Reservation
	order        []string
}

func NewReservationRepository() repository.ReservationRepository {
	return &reservationRepository{reservations: make(map[string]domain.Reservation)}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if res == nil {
		return missing("reservation")
	}
	if res.ID == "" {
		return fmt.Errorf("%w: reservation id is required", domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[res.ID]; ok {
		return fmt.Errorf("%w: reservation %s already exists", domain.ErrDuplicateKey, res.ID)
	}
	r.reservations[res.ID] = res.Clone()
	r.order = append(r.order, res.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	cp := res.Clone()
	return &cp, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	if res == nil {
		return missing("reservation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[res.ID]; !ok {
		return fmt.Errorf("%w: reservation %s", domain.ErrNotFound, res.ID)
	}
	r.reservations[res.ID] = res.Clone()
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[id]; !ok {
		return false, nil
	}
	delete(r.reservations, id)
	r.order = removeKey(r.order, id)
	return true, nil
}

func (r *reservationRepository) ListActiveByISBN(ctx context.Context, isbn string) ([]domain.Reservation, error) {
	out := r.filter(func(res *domain.Reservation) bool {
		return res.ISBN == isbn && res.Status == domain.ReservationStatusActive
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].QueuePosition < out[j].QueuePosition
	})
	return out, nil
}

func (r *reservationRepository) ListByPatron(ctx context.Context, patronID string) ([]domain.Reservation, error) {
	return r.filter(func(res *domain.Reservation) bool { return res.PatronID == patronID }), nil
}

func (r *reservationRepository) ListByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.filter(func(res *domain.Reservation) bool { return res.Status == status }), nil
}

func (r *reservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	return r.filter(func(*domain.Reservation) bool { return true }), nil
}

func (r *reservationRepository) filter(keep func(*domain.Reservation) bool) []domain.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Reservation{}
	for _, id := range r.order {
		res := r.reservations[id]
		if keep(&res) {
			out = append(out, res.Clone())
		}
	}
	return out
}
