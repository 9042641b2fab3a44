package postgres

import (
	"context"
	"database/sql"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `id, isbn, source_branch_id, destination_branch_id, request_date, completion_date, status, remarks`

func scanTransfer(row interface{ Scan(...any) error }) (domain.TransferRequest, error) {
	var t domain.TransferRequest
	var completed sql.NullTime
	err := row.Scan(&t.ID, &t.ISBN, &t.SourceBranchID, &t.DestinationBranchID, &t.RequestDate, &completed, &t.Status, &t.Remarks)
	if completed.Valid {
		c := completed.Time
		t.CompletionDate = &c
	}
	return t, err
}

func (r *transferRepository) Create(ctx context.Context, t *domain.TransferRequest) error {
	if t == nil {
		return missing("transfer request")
	}
	query := `INSERT INTO transfer_requests (` + transferColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.ISBN, t.SourceBranchID, t.DestinationBranchID, t.RequestDate, t.CompletionDate, t.Status, t.Remarks)
	return mapError(err, "transfer "+t.ID)
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*domain.TransferRequest, error) {
	t, err := scanTransfer(r.db.QueryRowContext(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "transfer "+id)
	}
	return &t, nil
}

func (r *transferRepository) Update(ctx context.Context, t *domain.TransferRequest) error {
	if t == nil {
		return missing("transfer request")
	}
	query := `UPDATE transfer_requests SET status=$1, completion_date=$2, remarks=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, t.Status, t.CompletionDate, t.Remarks, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "transfer "+t.ID)
}

func (r *transferRepository) ListByISBN(ctx context.Context, isbn string) ([]domain.TransferRequest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transferColumns+` FROM transfer_requests WHERE isbn = $1 ORDER BY request_date`, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.TransferRequest{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
