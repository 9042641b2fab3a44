package service

import (
	"context"
	"fmt"
	"log/slog"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

// Listeners in this file never panic and never return errors. Failures are logged.

// LoggingListener writes every lending and reservation event to the log.
type LoggingListener struct {
	log *slog.Logger
}

func NewLoggingListener() *LoggingListener {
	return &LoggingListener{log: logger.WithComponent("events")}
}

func (l *LoggingListener) OnBorrowed(ctx context.Context, rec domain.LendingRecord) {
	l.log.InfoContext(ctx, "Book borrowed", "isbn", rec.ISBN, "patronID", rec.PatronID, "due", rec.DueDate)
}

func (l *LoggingListener) OnReturned(ctx context.Context, rec domain.LendingRecord) {
	l.log.InfoContext(ctx, "Book returned", "isbn", rec.ISBN, "patronID", rec.PatronID, "returned", rec.ReturnDate)
}

func (l *LoggingListener) OnReservationEvent(ctx context.Context, ev domain.ReservationEvent) {
	switch e := ev.(type) {
	case domain.ReservationCreated:
		l.log.InfoContext(ctx, "Reservation created", "reservationID", e.Reservation.ID, "isbn", e.Reservation.ISBN,
			"patronID", e.Reservation.PatronID, "position", e.Reservation.QueuePosition)
	case domain.ReservationReady:
		args := []any{"reservationID", e.Reservation.ID, "isbn", e.Reservation.ISBN, "expires", e.Reservation.ExpiryDate}
		if e.Patron != nil {
			args = append(args, "patron", e.Patron.Name, "email", e.Patron.Email)
		}
		l.log.InfoContext(ctx, "Book ready for pickup", args...)
	case domain.ReservationCancelled:
		l.log.InfoContext(ctx, "Reservation cancelled", "reservationID", e.Reservation.ID, "isbn", e.Reservation.ISBN)
	case domain.ReservationExpired:
		l.log.InfoContext(ctx, "Reservation hold expired", "reservationID", e.Reservation.ID, "isbn", e.Reservation.ISBN)
	}
}

// EmailNotifier mails receipts and pickup notices to patrons.
type EmailNotifier struct {
	patronRepo repository.PatronRepository
	email      EmailService
}

func NewEmailNotifier(patronRepo repository.PatronRepository, email EmailService) *EmailNotifier {
	return &EmailNotifier{patronRepo: patronRepo, email: email}
}

func (n *EmailNotifier) recipient(ctx context.Context, patronID string) (*domain.Patron, bool) {
	p, err := n.patronRepo.GetByID(ctx, patronID)
	if err != nil {
		logger.Warn("Cannot resolve email recipient", "patronID", patronID, "error", err)
		return nil, false
	}
	if p.Email == "" {
		return nil, false
	}
	return p, true
}

func (n *EmailNotifier) OnBorrowed(ctx context.Context, rec domain.LendingRecord) {
	if p, ok := n.recipient(ctx, rec.PatronID); ok {
		if err := n.email.SendBorrowReceipt(ctx, p.Email, p.Name, rec); err != nil {
			logger.Error("Failed to send borrow receipt", "patronID", p.ID, "error", err)
		}
	}
}

func (n *EmailNotifier) OnReturned(ctx context.Context, rec domain.LendingRecord) {
	if p, ok := n.recipient(ctx, rec.PatronID); ok {
		if err := n.email.SendReturnReceipt(ctx, p.Email, p.Name, rec); err != nil {
			logger.Error("Failed to send return receipt", "patronID", p.ID, "error", err)
		}
	}
}

func (n *EmailNotifier) OnReservationEvent(ctx context.Context, ev domain.ReservationEvent) {
	ready, ok := ev.(domain.ReservationReady)
	if !ok || ready.Patron == nil || ready.Patron.Email == "" {
		return
	}
	if err := n.email.SendHoldReady(ctx, ready.Patron.Email, ready.Patron.Name, ready.Reservation); err != nil {
		logger.Error("Failed to send hold notice", "reservationID", ready.Reservation.ID, "error", err)
	}
}

// PushNotifier sends a push message when a reserved book is ready.
type PushNotifier struct {
	push PushService
}

func NewPushNotifier(push PushService) *PushNotifier {
	return &PushNotifier{push: push}
}

func (n *PushNotifier) OnReservationEvent(ctx context.Context, ev domain.ReservationEvent) {
	ready, ok := ev.(domain.ReservationReady)
	if !ok {
		return
	}
	res := ready.Reservation
	data := map[string]string{
		"type":           string(ready.Type()),
		"reservation_id": res.ID,
		"isbn":           res.ISBN,
	}
	if res.ExpiryDate != nil {
		data["expires"] = res.ExpiryDate.UTC().Format("2006-01-02T15:04:05Z")
	}
	body := fmt.Sprintf("Your reserved book %s is ready for pickup.", res.ISBN)
	if err := n.push.NotifyPatron(ctx, res.PatronID, "Book ready for pickup", body, data); err != nil {
		logger.Error("Failed to push hold notice", "reservationID", res.ID, "error", err)
	}
}

// FulfillmentListener closes a patron's pickup hold once they borrow the book.
type FulfillmentListener struct {
	reservations ReservationService
}

func NewFulfillmentListener(reservations ReservationService) *FulfillmentListener {
	return &FulfillmentListener{reservations: reservations}
}

func (l *FulfillmentListener) OnBorrowed(ctx context.Context, rec domain.LendingRecord) {
	if _, err := l.reservations.FulfillReservation(ctx, rec.ISBN, rec.PatronID); err != nil {
		logger.Error("Failed to fulfil reservation", "isbn", rec.ISBN, "patronID", rec.PatronID, "error", err)
	}
}

func (l *FulfillmentListener) OnReturned(context.Context, domain.LendingRecord) {}
