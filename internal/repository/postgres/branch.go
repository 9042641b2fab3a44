package postgres

import (
	"context"
	"database/sql"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type branchRepository struct {
	db *sql.DB
}

func NewBranchRepository(db *sql.DB) repository.BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, b *domain.Branch) error {
	if b == nil {
		return missing("branch")
	}
	query := `INSERT INTO branches (id, name, address, phone, email) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, b.ID, b.Name, b.Address, b.Phone, b.Email)
	return mapError(err, "branch "+b.ID)
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	b := &domain.Branch{}
	query := `SELECT id, name, address, phone, email FROM branches WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email)
	if err != nil {
		return nil, mapError(err, "branch "+id)
	}
	return b, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address, phone, email FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches := []domain.Branch{}
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (r *branchRepository) Update(ctx context.Context, b *domain.Branch) error {
	if b == nil {
		return missing("branch")
	}
	query := `UPDATE branches SET name=$1, address=$2, phone=$3, email=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, b.Name, b.Address, b.Phone, b.Email, b.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "branch "+b.ID)
}

func (r *branchRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}
