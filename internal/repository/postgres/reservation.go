package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, isbn, patron_id, status, reservation_date, expiry_date, notification_sent_date, queue_position`

func scanReservation(row interface{ Scan(...any) error }) (domain.Reservation, error) {
	var res domain.Reservation
	var expiry, notified sql.NullTime
	err := row.Scan(&res.ID, &res.ISBN, &res.PatronID, &res.Status, &res.ReservationDate, &expiry, &notified, &res.QueuePosition)
	if expiry.Valid {
		t := expiry.Time
		res.ExpiryDate = &t
	}
	if notified.Valid {
		t := notified.Time
		res.NotificationSentDate = &t
	}
	return res, err
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if res == nil {
		return missing("reservation")
	}
	if res.ID == "" {
		return fmt.Errorf("%w: reservation id is required", domain.ErrInvalidArgument)
	}
	logger.EnterMethod("reservationRepository.Create", "reservationID", res.ID, "isbn", res.ISBN, "position", res.QueuePosition)
	query := `INSERT INTO reservations (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, res.ID, res.ISBN, res.PatronID, res.Status, res.ReservationDate, res.ExpiryDate, res.NotificationSentDate, res.QueuePosition)
	if err != nil {
		err = mapError(err, "reservation "+res.ID)
		logger.ExitMethodWithError("reservationRepository.Create", err, "reservationID", res.ID)
		return err
	}
	logger.ExitMethod("reservationRepository.Create", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "reservation "+id)
	}
	return &res, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	if res == nil {
		return missing("reservation")
	}
	logger.EnterMethod("reservationRepository.Update", "reservationID", res.ID, "status", res.Status, "position", res.QueuePosition)
	query := `UPDATE reservations SET status=$1, expiry_date=$2, notification_sent_date=$3, queue_position=$4 WHERE id=$5`
	result, err := r.db.ExecContext(ctx, query, res.Status, res.ExpiryDate, res.NotificationSentDate, res.QueuePosition, res.ID)
	if err == nil {
		err = requireRow(result, "reservation "+res.ID)
	}
	if err != nil {
		logger.ExitMethodWithError("reservationRepository.Update", err, "reservationID", res.ID)
		return err
	}
	logger.ExitMethod("reservationRepository.Update", "reservationID", res.ID)
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

func (r *reservationRepository) ListActiveByISBN(ctx context.Context, isbn string) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE isbn = $1 AND status = $2 ORDER BY queue_position`,
		isbn, domain.ReservationStatusActive)
}

func (r *reservationRepository) ListByPatron(ctx context.Context, patronID string) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE patron_id = $1 ORDER BY reservation_date, id`, patronID)
}

func (r *reservationRepository) ListByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE status = $1 ORDER BY reservation_date, id`, status)
}

func (r *reservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY reservation_date, id`)
}

func (r *reservationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
