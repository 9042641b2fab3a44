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

type reservationService struct {
	reservationRepo repository.ReservationRepository
	bookRepo        repository.BookRepository
	patronRepo      repository.PatronRepository
	clock           Clock
	locks           *keyedMutex

	mu        sync.RWMutex
	listeners []ReservationListener
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	bookRepo repository.BookRepository,
	patronRepo repository.PatronRepository,
	clock Clock,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		bookRepo:        bookRepo,
		patronRepo:      patronRepo,
		clock:           clock,
		locks:           newKeyedMutex(),
	}
}

func (s *reservationService) AddListener(l ReservationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *reservationService) RemoveListener(l ReservationListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *reservationService) emit(ctx context.Context, ev domain.ReservationEvent) {
	s.mu.RLock()
	listeners := append([]ReservationListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l.OnReservationEvent(ctx, ev)
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, isbn, patronID string) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "isbn", isbn, "patronID", patronID)

	res, err := s.create(ctx, isbn, patronID)
	if err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "isbn", isbn, "patronID", patronID)
		return nil, err
	}

	s.emit(ctx, domain.ReservationCreated{Reservation: res.Clone(), At: res.ReservationDate})
	logger.Info("Reservation created", "reservationID", res.ID, "isbn", isbn, "position", res.QueuePosition)
	logger.ExitMethod("reservationService.CreateReservation", "reservationID", res.ID)
	return res, nil
}

func (s *reservationService) create(ctx context.Context, isbn, patronID string) (*domain.Reservation, error) {
	unlock := s.locks.Lock(isbn)
	defer unlock()

	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if _, err := s.patronRepo.GetByID(ctx, patronID); err != nil {
		return nil, err
	}
	if book.IsAvailable() {
		return nil, fmt.Errorf("%w: book %s is available, borrow it instead", domain.ErrInvalidArgument, isbn)
	}

	existing, err := s.reservationRepo.ListByPatron(ctx, patronID)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.ISBN == isbn && r.IsHeld() {
			return nil, fmt.Errorf("%w: patron %s already holds reservation %s for %s", domain.ErrInvalidArgument, patronID, r.ID, isbn)
		}
	}

	queue, err := s.reservationRepo.ListActiveByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		ID:              uuid.New().String(),
		ISBN:            isbn,
		PatronID:        patronID,
		Status:          domain.ReservationStatusActive,
		ReservationDate: s.clock.now(),
		QueuePosition:   len(queue) + 1,
	}
	if err := s.reservationRepo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *reservationService) ProcessBookReturn(ctx context.Context, isbn string) error {
	logger.EnterMethod("reservationService.ProcessBookReturn", "isbn", isbn)

	unlock := s.locks.Lock(isbn)
	ready, err := s.promoteNext(ctx, isbn)
	unlock()
	if err != nil {
		logger.ExitMethodWithError("reservationService.ProcessBookReturn", err, "isbn", isbn)
		return err
	}

	if ready != nil {
		s.emit(ctx, *ready)
	}
	logger.ExitMethod("reservationService.ProcessBookReturn", "isbn", isbn, "promoted", ready != nil)
	return nil
}

// promoteNext moves the head of the queue to AVAILABLE and closes the gap.
// Callers hold the ISBN lock.
func (s *reservationService) promoteNext(ctx context.Context, isbn string) (*domain.ReservationReady, error) {
	queue, err := s.reservationRepo.ListActiveByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, nil
	}

	now := s.clock.now()
	expiry := now.Add(domain.HoldWindow)
	head := queue[0]
	head.Status = domain.ReservationStatusAvailable
	head.ExpiryDate = &expiry
	head.NotificationSentDate = &now
	head.QueuePosition = 0
	if err := s.reservationRepo.Update(ctx, &head); err != nil {
		return nil, fmt.Errorf("failed to promote reservation %s: %w", head.ID, err)
	}

	if err := s.renumber(ctx, queue[1:]); err != nil {
		return nil, err
	}

	// A hold whose patron cannot be resolved stays AVAILABLE but is not announced.
	patron, err := s.patronRepo.GetByID(ctx, head.PatronID)
	if err != nil {
		logger.Warn("Promoted reservation for unknown patron, no notice sent", "reservationID", head.ID, "patronID", head.PatronID, "error", err)
		return nil, nil
	}
	ready := &domain.ReservationReady{Reservation: head.Clone(), Patron: patron, At: now}
	logger.Info("Reservation ready for pickup", "reservationID", head.ID, "isbn", isbn, "patronID", head.PatronID, "expires", expiry)
	return ready, nil
}

// renumber assigns positions 1..N to queue in its current order.
func (s *reservationService) renumber(ctx context.Context, queue []domain.Reservation) error {
	for i := range queue {
		if queue[i].QueuePosition == i+1 {
			continue
		}
		queue[i].QueuePosition = i + 1
		if err := s.reservationRepo.Update(ctx, &queue[i]); err != nil {
			return fmt.Errorf("failed to renumber reservation %s: %w", queue[i].ID, err)
		}
	}
	return nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID string) error {
	logger.EnterMethod("reservationService.CancelReservation", "reservationID", reservationID)

	events, err := s.cancel(ctx, reservationID)
	if err != nil {
		logger.ExitMethodWithError("reservationService.CancelReservation", err, "reservationID", reservationID)
		return err
	}
	for _, ev := range events {
		s.emit(ctx, ev)
	}
	logger.ExitMethod("reservationService.CancelReservation", "reservationID", reservationID)
	return nil
}

func (s *reservationService) cancel(ctx context.Context, reservationID string) ([]domain.ReservationEvent, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(res.ISBN)
	defer unlock()

	// Re-read under the lock; the status may have moved since.
	if res, err = s.reservationRepo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	if !res.IsHeld() {
		return nil, fmt.Errorf("%w: reservation %s is %s", domain.ErrInvalidState, reservationID, res.Status)
	}

	wasHold := res.Status == domain.ReservationStatusAvailable
	res.Status = domain.ReservationStatusCancelled
	res.QueuePosition = 0
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	events := []domain.ReservationEvent{domain.ReservationCancelled{Reservation: res.Clone(), At: s.clock.now()}}

	queue, err := s.reservationRepo.ListActiveByISBN(ctx, res.ISBN)
	if err != nil {
		return nil, err
	}
	if err := s.renumber(ctx, queue); err != nil {
		return nil, err
	}

	// A released hold passes to the next patron while the copy sits on the shelf.
	if wasHold {
		ready, err := s.promoteIfShelved(ctx, res.ISBN)
		if err != nil {
			return nil, err
		}
		if ready != nil {
			events = append(events, *ready)
		}
	}

	logger.Info("Reservation cancelled", "reservationID", reservationID, "isbn", res.ISBN)
	return events, nil
}

func (s *reservationService) promoteIfShelved(ctx context.Context, isbn string) (*domain.ReservationReady, error) {
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, nil
	}
	return s.promoteNext(ctx, isbn)
}

// FulfillReservation closes the patron's AVAILABLE hold on isbn, if any.
func (s *reservationService) FulfillReservation(ctx context.Context, isbn, patronID string) (bool, error) {
	unlock := s.locks.Lock(isbn)
	defer unlock()

	held, err := s.reservationRepo.ListByPatron(ctx, patronID)
	if err != nil {
		return false, err
	}
	for i := range held {
		res := &held[i]
		if res.ISBN != isbn || res.Status != domain.ReservationStatusAvailable {
			continue
		}
		res.Status = domain.ReservationStatusFulfilled
		res.QueuePosition = 0
		if err := s.reservationRepo.Update(ctx, res); err != nil {
			return false, err
		}
		logger.Info("Reservation fulfilled", "reservationID", res.ID, "isbn", isbn, "patronID", patronID)
		return true, nil
	}
	return false, nil
}

// ExpireHolds marks AVAILABLE reservations past their expiry as EXPIRED and
// offers each released copy to the next patron in line.
func (s *reservationService) ExpireHolds(ctx context.Context, now time.Time) (int, error) {
	holds, err := s.reservationRepo.ListByStatus(ctx, domain.ReservationStatusAvailable)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, h := range holds {
		if !h.IsExpired(now) {
			continue
		}
		events, err := s.expire(ctx, h.ID, now)
		if err != nil {
			return expired, err
		}
		if len(events) > 0 {
			expired++
		}
		for _, ev := range events {
			s.emit(ctx, ev)
		}
	}
	if expired > 0 {
		logger.Info("Expired reservation holds", "count", expired)
	}
	return expired, nil
}

func (s *reservationService) expire(ctx context.Context, reservationID string, now time.Time) ([]domain.ReservationEvent, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(res.ISBN)
	defer unlock()

	if res, err = s.reservationRepo.GetByID(ctx, reservationID); err != nil {
		return nil, err
	}
	if !res.IsExpired(now) {
		return nil, nil
	}
	res.Status = domain.ReservationStatusExpired
	res.QueuePosition = 0
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	events := []domain.ReservationEvent{domain.ReservationExpired{Reservation: res.Clone(), At: now}}

	ready, err := s.promoteIfShelved(ctx, res.ISBN)
	if err != nil {
		return nil, err
	}
	if ready != nil {
		events = append(events, *ready)
	}
	return events, nil
}

func (s *reservationService) GetPatronReservations(ctx context.Context, patronID string) ([]domain.Reservation, error) {
	return s.reservationRepo.ListByPatron(ctx, patronID)
}

func (s *reservationService) GetBookReservations(ctx context.Context, isbn string) ([]domain.Reservation, error) {
	return s.reservationRepo.ListActiveByISBN(ctx, isbn)
}
