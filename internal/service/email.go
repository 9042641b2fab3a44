package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
)

const dateLayout = "Mon, 02 Jan 2006"

type message struct {
	to, toName, subject, body string
}

func borrowReceipt(email, name string, rec domain.LendingRecord) message {
	return message{email, name, "Book Borrowed Successfully",
		fmt.Sprintf("Hello %s,\n\nYou have borrowed the book with ISBN %s. Please return it by %s.\n\nThe Library", name, rec.ISBN, rec.DueDate.Format(dateLayout))}
}

func returnReceipt(email, name string, rec domain.LendingRecord) message {
	return message{email, name, "Book Returned Successfully",
		fmt.Sprintf("Hello %s,\n\nYou have returned the book with ISBN %s. Thank you!\n\nThe Library", name, rec.ISBN)}
}

func holdReady(email, name string, res domain.Reservation) message {
	expiry := "soon"
	if res.ExpiryDate != nil {
		expiry = res.ExpiryDate.Format(dateLayout)
	}
	return message{email, name, "Your reserved book is ready for pickup",
		fmt.Sprintf("Dear %s,\n\nYour reserved book (ISBN %s) is ready. Please pick it up by %s.\n\nReservation: %s\n\nThe Library", name, res.ISBN, expiry, res.ID)}
}

func overdueReminder(email, name string, rec domain.LendingRecord) message {
	return message{email, name, "Overdue book reminder",
		fmt.Sprintf("Hello %s,\n\nThe book with ISBN %s was due on %s. Please return it as soon as possible.\n\nThe Library", name, rec.ISBN, rec.DueDate.Format(dateLayout))}
}

// mailer is the transport behind an EmailService.
type mailer func(ctx context.Context, m message) error

type emailService struct {
	send mailer
}

func (s *emailService) SendBorrowReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	return s.send(ctx, borrowReceipt(email, name, rec))
}

func (s *emailService) SendReturnReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	return s.send(ctx, returnReceipt(email, name, rec))
}

func (s *emailService) SendHoldReady(ctx context.Context, email, name string, res domain.Reservation) error {
	return s.send(ctx, holdReady(email, name, res))
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	return s.send(ctx, overdueReminder(email, name, rec))
}

// NewSendGridEmailService delivers mail through the SendGrid v3 API.
func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	client := sendgrid.NewSendClient(apiKey)
	from := mail.NewEmail(fromName, fromEmail)

	return &emailService{send: func(ctx context.Context, m message) error {
		logger.ExternalServiceCall("sendgrid", "send", "to", m.to, "subject", m.subject)
		msg := mail.NewSingleEmail(from, m.subject, mail.NewEmail(m.toName, m.to), m.body, "")
		response, err := client.SendWithContext(ctx, msg)
		if err == nil && response.StatusCode >= 400 {
			err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		}
		if err != nil {
			err = fmt.Errorf("failed to send email: %w", err)
		}
		logger.ExternalServiceResult("sendgrid", "send", err, "to", m.to)
		return err
	}}
}

// NewLogEmailService only logs what would have been sent.
func NewLogEmailService() EmailService {
	return &emailService{send: func(ctx context.Context, m message) error {
		logger.InfoContext(ctx, "Email (not sent)", "to", m.to, "subject", m.subject, "body", m.body)
		return nil
	}}
}
