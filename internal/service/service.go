package service

import (
	"context"
	"time"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/strategy"
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

type CatalogService interface {
	AddBook(ctx context.Context, book *domain.Book) error
	UpdateBook(ctx context.Context, book *domain.Book) error
	RemoveBook(ctx context.Context, isbn string) (bool, error)
	GetBook(ctx context.Context, isbn string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
	ListAvailableBooks(ctx context.Context) ([]domain.Book, error)
	SearchBooks(ctx context.Context, s strategy.SearchStrategy, query string) ([]domain.Book, error)
}

type PatronService interface {
	RegisterPatron(ctx context.Context, name, email, phone string, category domain.PatronCategory) (*domain.Patron, error)
	UpdateContact(ctx context.Context, patronID, name, email, phone string) (*domain.Patron, error)
	RemovePatron(ctx context.Context, patronID string) (bool, error)
	GetPatron(ctx context.Context, patronID string) (*domain.Patron, error)
	ListPatrons(ctx context.Context) ([]domain.Patron, error)
}

// LendingListener observes successful borrows and returns. Calls are
// synchronous and in registration order.
type LendingListener interface {
	OnBorrowed(ctx context.Context, rec domain.LendingRecord)
	OnReturned(ctx context.Context, rec domain.LendingRecord)
}

type ReservationListener interface {
	OnReservationEvent(ctx context.Context, ev domain.ReservationEvent)
}

// ReturnProcessor is invoked after every successful return.
type ReturnProcessor interface {
	ProcessBookReturn(ctx context.Context, isbn string) error
}

type LendingService interface {
	BorrowBook(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error)
	ReturnBook(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error)
	GetPatronActiveBorrows(ctx context.Context, patronID string) ([]domain.LendingRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.LendingRecord, error)
	AddListener(l LendingListener)
	RemoveListener(l LendingListener)
	SetReturnProcessor(p ReturnProcessor)
}

type ReservationService interface {
	ReturnProcessor
	CreateReservation(ctx context.Context, isbn, patronID string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) error
	FulfillReservation(ctx context.Context, isbn, patronID string) (bool, error)
	ExpireHolds(ctx context.Context, now time.Time) (int, error)
	GetPatronReservations(ctx context.Context, patronID string) ([]domain.Reservation, error)
	GetBookReservations(ctx context.Context, isbn string) ([]domain.Reservation, error)
	AddListener(l ReservationListener)
	RemoveListener(l ReservationListener)
}

type RecommendationService interface {
	SetStrategy(s strategy.RecommendationStrategy) error
	Strategy() strategy.RecommendationStrategy
	GetRecommendations(ctx context.Context, patronID string, limit int) ([]domain.Book, error)
	GetDefaultRecommendations(ctx context.Context, patronID string) ([]domain.Book, error)
	GetRecommendationsWithStrategy(ctx context.Context, patronID string, s strategy.RecommendationStrategy, limit int) ([]domain.Book, error)
	RefreshPopularity(ctx context.Context) error
}

type BranchService interface {
	RegisterBranch(ctx context.Context, branch *domain.Branch) error
	UpdateBranch(ctx context.Context, branch *domain.Branch) error
	DeleteBranch(ctx context.Context, branchID string) error
	GetBranch(ctx context.Context, branchID string) (*domain.Branch, error)
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	BranchExists(ctx context.Context, branchID string) (bool, error)
}

type TransferService interface {
	InitiateTransfer(ctx context.Context, isbn, sourceBranchID, destinationBranchID string) (*domain.TransferRequest, error)
	CompleteTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error)
	CancelTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error)
	ListTransfersForBook(ctx context.Context, isbn string) ([]domain.TransferRequest, error)
}

type EmailService interface {
	SendBorrowReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error
	SendReturnReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error
	SendHoldReady(ctx context.Context, email, name string, res domain.Reservation) error
	SendOverdueReminder(ctx context.Context, email, name string, rec domain.LendingRecord) error
}

type PushService interface {
	NotifyPatron(ctx context.Context, patronID, title, body string, data map[string]string) error
}
