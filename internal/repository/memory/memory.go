// Package memory keeps every repository in process memory. Each repository
// guards its map with its own lock, so single operations are atomic but
// nothing spans repositories.
package memory

import (
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

func NewStore() *repository.Store {
	return &repository.Store{
		Books:        NewBookRepository(),
		Patrons:      NewPatronRepository(),
		Lendings:     NewLendingRepository(),
		Reservations: NewReservationRepository(),
		Branches:     NewBranchRepository(),
		Transfers:    NewTransferRepository(),
	}
}

func missing(what string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, what)
}
