package repository

import (
	"context"

	"library-lending-backend/internal/domain"
)

// Reads return copies. Callers modify a copy and write it back with Update.

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, isbn string) (bool, error)
}

type PatronRepository interface {
	Create(ctx context.Context, patron *domain.Patron) error
	GetByID(ctx context.Context, id string) (*domain.Patron, error)
	List(ctx context.Context) ([]domain.Patron, error)
	Update(ctx context.Context, patron *domain.Patron) error
	Delete(ctx context.Context, id string) (bool, error)
}

type LendingRepository interface {
	Create(ctx context.Context, rec *domain.LendingRecord) error
	GetByID(ctx context.Context, id string) (*domain.LendingRecord, error)
	List(ctx context.Context) ([]domain.LendingRecord, error)
	ListByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error)
	ListByISBN(ctx context.Context, isbn string) ([]domain.LendingRecord, error)
	ListActiveByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error)
	Upsert(ctx context.Context, rec *domain.LendingRecord) error
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Update(ctx context.Context, res *domain.Reservation) error
	Delete(ctx context.Context, id string) (bool, error)
	// ListActiveByISBN returns ACTIVE reservations ordered by queue position.
	ListActiveByISBN(ctx context.Context, isbn string) ([]domain.Reservation, error)
	ListByPatron(ctx context.Context, patronID string) ([]domain.Reservation, error)
	ListByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)
	List(ctx context.Context) ([]domain.Reservation, error)
}

type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
	Update(ctx context.Context, branch *domain.Branch) error
	Delete(ctx context.Context, id string) (bool, error)
}

type TransferRepository interface {
	Create(ctx context.Context, req *domain.TransferRequest) error
	GetByID(ctx context.Context, id string) (*domain.TransferRequest, error)
	Update(ctx context.Context, req *domain.TransferRequest) error
	ListByISBN(ctx context.Context, isbn string) ([]domain.TransferRequest, error)
}

// Store groups every repository behind one value so the backing implementation can be swapped.
type Store struct {
	Books        BookRepository
	Patrons      PatronRepository
	Lendings     LendingRepository
	Reservations ReservationRepository
	Branches     BranchRepository
	Transfers    TransferRepository
}
