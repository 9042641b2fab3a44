package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

const uniqueViolation = "23505"

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Books:        NewBookRepository(db),
		Patrons:      NewPatronRepository(db),
		Lendings:     NewLendingRepository(db),
		Reservations: NewReservationRepository(db),
		Branches:     NewBranchRepository(db),
		Transfers:    NewTransferRepository(db),
	}
}

// mapError translates driver errors into the domain sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, what)
	}
	return err
}

// requireRow turns a zero-row UPDATE into ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return nil
}

func missing(what string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, what)
}

func deleted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
