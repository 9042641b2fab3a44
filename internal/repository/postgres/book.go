package postgres

import (
	"context"
	"database/sql"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
)

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `isbn, title, author, publication_year, status, branch_id`

func scanBook(row interface{ Scan(...any) error }) (domain.Book, error) {
	var b domain.Book
	var branch sql.NullString
	err := row.Scan(&b.ISBN, &b.Title, &b.Author, &b.PublicationYear, &b.Status, &branch)
	b.BranchID = branch.String
	return b, err
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	if b == nil {
		return missing("book")
	}
	query := `INSERT INTO books (isbn, title, author, publication_year, status, branch_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())`
	_, err := r.db.ExecContext(ctx, query, b.ISBN, b.Title, b.Author, b.PublicationYear, b.Status, nullString(b.BranchID))
	return mapError(err, "book "+b.ISBN)
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	b, err := scanBook(r.db.QueryRowContext(ctx, query, isbn))
	if err != nil {
		return nil, mapError(err, "book "+isbn)
	}
	return &b, nil
}

func (r *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_on, isbn`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	if b == nil {
		return missing("book")
	}
	query := `UPDATE books SET title=$1, author=$2, publication_year=$3, status=$4, branch_id=$5 WHERE isbn=$6`
	res, err := r.db.ExecContext(ctx, query, b.Title, b.Author, b.PublicationYear, b.Status, nullString(b.BranchID), b.ISBN)
	if err != nil {
		return err
	}
	return requireRow(res, "book "+b.ISBN)
}

func (r *bookRepository) Delete(ctx context.Context, isbn string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE isbn = $1`, isbn)
	if err != nil {
		return false, err
	}
	return deleted(res)
}
