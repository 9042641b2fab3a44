package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type lendingRepository struct {
	db *sql.DB
}

func NewLendingRepository(db *sql.DB) repository.LendingRepository {
	return &lendingRepository{db: db}
}

const lendingColumns = `id, patron_id, isbn, borrow_date, due_date, return_date`

func scanLending(row interface{ Scan(...any) error }) (domain.LendingRecord, error) {
	var rec domain.LendingRecord
	var returned sql.NullTime
	err := row.Scan(&rec.ID, &rec.PatronID, &rec.ISBN, &rec.BorrowDate, &rec.DueDate, &returned)
	if returned.Valid {
		t := returned.Time
		rec.ReturnDate = &t
	}
	return rec, err
}

func (r *lendingRepository) Create(ctx context.Context, rec *domain.LendingRecord) error {
	if rec == nil {
		return missing("lending record")
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: lending record id is required", domain.ErrInvalidArgument)
	}
	logger.EnterMethod("lendingRepository.Create", "recordID", rec.ID, "isbn", rec.ISBN, "patronID", rec.PatronID)
	query := `INSERT INTO lending_records (id, patron_id, isbn, borrow_date, due_date, return_date) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.PatronID, rec.ISBN, rec.BorrowDate, rec.DueDate, rec.ReturnDate)
	if err != nil {
		err = mapError(err, "lending record "+rec.ID)
		logger.ExitMethodWithError("lendingRepository.Create", err, "recordID", rec.ID)
		return err
	}
	logger.ExitMethod("lendingRepository.Create", "recordID", rec.ID)
	return nil
}

func (r *lendingRepository) GetByID(ctx context.Context, id string) (*domain.LendingRecord, error) {
	query := `SELECT ` + lendingColumns + ` FROM lending_records WHERE id = $1`
	rec, err := scanLending(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "lending record "+id)
	}
	return &rec, nil
}

func (r *lendingRepository) List(ctx context.Context) ([]domain.LendingRecord, error) {
	return r.query(ctx, `SELECT `+lendingColumns+` FROM lending_records ORDER BY borrow_date, id`)
}

func (r *lendingRepository) ListByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error) {
	return r.query(ctx, `SELECT `+lendingColumns+` FROM lending_records WHERE patron_id = $1 ORDER BY borrow_date, id`, patronID)
}

func (r *lendingRepository) ListByISBN(ctx context.Context, isbn string) ([]domain.LendingRecord, error) {
	return r.query(ctx, `SELECT `+lendingColumns+` FROM lending_records WHERE isbn = $1 ORDER BY borrow_date, id`, isbn)
}

func (r *lendingRepository) ListActiveByPatron(ctx context.Context, patronID string) ([]domain.LendingRecord, error) {
	return r.query(ctx, `SELECT `+lendingColumns+` FROM lending_records WHERE patron_id = $1 AND return_date IS NULL ORDER BY borrow_date, id`, patronID)
}

func (r *lendingRepository) Upsert(ctx context.Context, rec *domain.LendingRecord) error {
	if rec == nil {
		return missing("lending record")
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: lending record id is required", domain.ErrInvalidArgument)
	}
	query := `INSERT INTO lending_records (id, patron_id, isbn, borrow_date, due_date, return_date)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET due_date = EXCLUDED.due_date, return_date = EXCLUDED.return_date`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.PatronID, rec.ISBN, rec.BorrowDate, rec.DueDate, rec.ReturnDate)
	return err
}

func (r *lendingRepository) query(ctx context.Context, query string, args ...any) ([]domain.LendingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.LendingRecord{}
	for rows.Next() {
		rec, err := scanLending(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
