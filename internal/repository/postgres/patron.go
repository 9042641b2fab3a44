package postgres

import (
	"context"
	"database/sql"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

// patronRepository persists patron columns in patrons and the borrowing
// history in lending_records.
type patronRepository struct {
	db       *sql.DB
	lendings *lendingRepository
}

func NewPatronRepository(db *sql.DB) repository.PatronRepository {
	return &patronRepository{db: db, lendings: &lendingRepository{db: db}}
}

func (r *patronRepository) Create(ctx context.Context, p *domain.Patron) error {
	if p == nil {
		return missing("patron")
	}
	query := `INSERT INTO patrons (id, name, email, phone, category, created_on) VALUES ($1, $2, $3, $4, $5, NOW())`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.Phone, p.Category)
	if err != nil {
		return mapError(err, "patron "+p.ID)
	}
	return r.saveHistory(ctx, p)
}

func (r *patronRepository) GetByID(ctx context.Context, id string) (*domain.Patron, error) {
	logger.EnterMethod("patronRepository.GetByID", "patronID", id)
	p := &domain.Patron{}
	query := `SELECT id, name, email, phone, category FROM patrons WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Category)
	if err != nil {
		err = mapError(err, "patron "+id)
		logger.ExitMethodWithError("patronRepository.GetByID", err, "patronID", id)
		return nil, err
	}
	if p.BorrowingHistory, err = r.lendings.ListByPatron(ctx, id); err != nil {
		logger.ExitMethodWithError("patronRepository.GetByID", err, "patronID", id)
		return nil, err
	}
	logger.ExitMethod("patronRepository.GetByID", "patronID", id, "history", len(p.BorrowingHistory))
	return p, nil
}

func (r *patronRepository) List(ctx context.Context) ([]domain.Patron, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, phone, category FROM patrons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patrons := []domain.Patron{}
	for rows.Next() {
		var p domain.Patron
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Category); err != nil {
			return nil, err
		}
		patrons = append(patrons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	all, err := r.lendings.List(ctx)
	if err != nil {
		return nil, err
	}
	byPatron := make(map[string][]domain.LendingRecord)
	for _, rec := range all {
		byPatron[rec.PatronID] = append(byPatron[rec.PatronID], rec)
	}
	for i := range patrons {
		patrons[i].BorrowingHistory = byPatron[patrons[i].ID]
	}
	return patrons, nil
}

func (r *patronRepository) Update(ctx context.Context, p *domain.Patron) error {
	if p == nil {
		return missing("patron")
	}
	query := `UPDATE patrons SET name=$1, email=$2, phone=$3, category=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Email, p.Phone, p.Category, p.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "patron "+p.ID); err != nil {
		return err
	}
	return r.saveHistory(ctx, p)
}

func (r *patronRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patrons WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

func (r *patronRepository) saveHistory(ctx context.Context, p *domain.Patron) error {
	for i := range p.BorrowingHistory {
		if err := r.lendings.Upsert(ctx, &p.BorrowingHistory[i]); err != nil {
			return err
		}
	}
	return nil
}
