package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type lendingService struct {
	bookRepo    repository.BookRepository
	patronRepo  repository.PatronRepository
	lendingRepo repository.LendingRepository
	clock       Clock
	locks       *keyedMutex
	patronLocks *keyedMutex

	mu        sync.RWMutex
	listeners []LendingListener
	processor ReturnProcessor
}

func NewLendingService(
	bookRepo repository.BookRepository,
	patronRepo repository.PatronRepository,
	lendingRepo repository.LendingRepository,
	clock Clock,
) LendingService {
	return &lendingService{
		bookRepo:    bookRepo,
		patronRepo:  patronRepo,
		lendingRepo: lendingRepo,
		clock:       clock,
		locks:       newKeyedMutex(),
		patronLocks: newKeyedMutex(),
	}
}

func (s *lendingService) AddListener(l LendingListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *lendingService) RemoveListener(l LendingListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *lendingService) SetReturnProcessor(p ReturnProcessor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processor = p
}

func (s *lendingService) snapshot() ([]LendingListener, ReturnProcessor) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LendingListener(nil), s.listeners...), s.processor
}

func (s *lendingService) BorrowBook(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error) {
	logger.EnterMethod("lendingService.BorrowBook", "isbn", isbn, "patronID", patronID)

	rec, err := s.borrow(ctx, isbn, patronID)
	if err != nil {
		logger.ExitMethodWithError("lendingService.BorrowBook", err, "isbn", isbn, "patronID", patronID)
		return nil, err
	}

	listeners, _ := s.snapshot()
	for _, l := range listeners {
		l.OnBorrowed(ctx, *rec)
	}

	logger.Info("Book borrowed", "isbn", isbn, "patronID", patronID, "due", rec.DueDate)
	logger.ExitMethod("lendingService.BorrowBook", "recordID", rec.ID)
	return rec, nil
}

func (s *lendingService) borrow(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error) {
	// ISBN before patron, always.
	unlock := s.locks.Lock(isbn)
	defer unlock()
	unlockPatron := s.patronLocks.Lock(patronID)
	defer unlockPatron()

	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	patron, err := s.patronRepo.GetByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, fmt.Errorf("%w: book %s is not available", domain.ErrInvalidState, isbn)
	}
	if !patron.CanBorrowMore() {
		return nil, fmt.Errorf("%w: patron %s has reached the borrow limit of %d", domain.ErrInvalidState, patronID, patron.BorrowLimit())
	}

	now := s.clock.now()
	rec := domain.LendingRecord{
		ID:         uuid.New().String(),
		PatronID:   patronID,
		ISBN:       isbn,
		BorrowDate: now,
		DueDate:    now.Add(domain.LoanPeriod),
	}

	book.Status = domain.BookStatusBorrowed
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to mark book borrowed: %w", err)
	}
	if err := s.lendingRepo.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("failed to record loan: %w", err)
	}
	patron.BorrowingHistory = append(patron.BorrowingHistory, rec)
	if err := s.patronRepo.Update(ctx, patron); err != nil {
		return nil, fmt.Errorf("failed to update patron history: %w", err)
	}
	return &rec, nil
}

func (s *lendingService) ReturnBook(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error) {
	logger.EnterMethod("lendingService.ReturnBook", "isbn", isbn, "patronID", patronID)

	rec, err := s.giveBack(ctx, isbn, patronID)
	if err != nil {
		logger.ExitMethodWithError("lendingService.ReturnBook", err, "isbn", isbn, "patronID", patronID)
		return nil, err
	}

	listeners, processor := s.snapshot()
	for _, l := range listeners {
		l.OnReturned(ctx, *rec)
	}
	if processor != nil {
		s.runReturnProcessor(ctx, processor, isbn)
	}

	logger.Info("Book returned", "isbn", isbn, "patronID", patronID)
	logger.ExitMethod("lendingService.ReturnBook", "recordID", rec.ID)
	return rec, nil
}

func (s *lendingService) giveBack(ctx context.Context, isbn, patronID string) (*domain.LendingRecord, error) {
	// ISBN before patron, always.
	unlock := s.locks.Lock(isbn)
	defer unlock()
	unlockPatron := s.patronLocks.Lock(patronID)
	defer unlockPatron()

	active, err := s.lendingRepo.ListActiveByPatron(ctx, patronID)
	if err != nil {
		return nil, err
	}
	var rec *domain.LendingRecord
	for i := range active {
		if active[i].ISBN == isbn {
			rec = &active[i]
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no active loan of %s for patron %s", domain.ErrInvalidState, isbn, patronID)
	}

	returned := s.clock.now()
	rec.ReturnDate = &returned
	if err := s.lendingRepo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record return: %w", err)
	}

	patron, err := s.patronRepo.GetByID(ctx, patronID)
	switch {
	case err == nil:
		if !patron.ReplaceHistoryRecord(*rec) {
			patron.BorrowingHistory = append(patron.BorrowingHistory, *rec)
		}
		if err := s.patronRepo.Update(ctx, patron); err != nil {
			return nil, fmt.Errorf("failed to update patron history: %w", err)
		}
	case isNotFound(err):
		logger.Warn("Returning book for a patron that no longer exists", "isbn", isbn, "patronID", patronID)
	default:
		return nil, err
	}

	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	book.Status = domain.BookStatusAvailable
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to mark book available: %w", err)
	}
	return rec, nil
}

// runReturnProcessor never fails the return it follows.
func (s *lendingService) runReturnProcessor(ctx context.Context, p ReturnProcessor, isbn string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Reservation processing panicked after return", "isbn", isbn, "panic", r)
		}
	}()
	if err := p.ProcessBookReturn(ctx, isbn); err != nil {
		logger.Error("Reservation processing failed after return", "isbn", isbn, "error", err)
	}
}

func (s *lendingService) GetPatronActiveBorrows(ctx context.Context, patronID string) ([]domain.LendingRecord, error) {
	return s.lendingRepo.ListActiveByPatron(ctx, patronID)
}

func (s *lendingService) ListOverdue(ctx context.Context, now time.Time) ([]domain.LendingRecord, error) {
	all, err := s.lendingRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	overdue := []domain.LendingRecord{}
	for _, rec := range all {
		if rec.IsOverdue(now) {
			overdue = append(overdue, rec)
		}
	}
	return overdue, nil
}
