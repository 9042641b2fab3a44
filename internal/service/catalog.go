package service

import (
	"context"
	"fmt"
	"strings"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
	"library-lending-backend/internal/strategy"
)

type catalogService struct {
	bookRepo repository.BookRepository
}

func NewCatalogService(bookRepo repository.BookRepository) CatalogService {
	return &catalogService{bookRepo: bookRepo}
}

func (s *catalogService) AddBook(ctx context.Context, book *domain.Book) error {
	if book == nil || strings.TrimSpace(book.ISBN) == "" {
		return fmt.Errorf("%w: isbn is required", domain.ErrInvalidArgument)
	}
	if book.Status == "" {
		book.Status = domain.BookStatusAvailable
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		logger.Error("Error adding book", "isbn", book.ISBN, "error", err)
		return err
	}
	logger.Info("Book added", "isbn", book.ISBN, "title", book.Title)
	return nil
}

func (s *catalogService) UpdateBook(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return fmt.Errorf("%w: book is required", domain.ErrInvalidArgument)
	}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		logger.Error("Error updating book", "isbn", book.ISBN, "error", err)
		return err
	}
	logger.Info("Book updated", "isbn", book.ISBN)
	return nil
}

func (s *catalogService) RemoveBook(ctx context.Context, isbn string) (bool, error) {
	removed, err := s.bookRepo.Delete(ctx, isbn)
	if err != nil {
		logger.Error("Error removing book", "isbn", isbn, "error", err)
		return false, err
	}
	if removed {
		logger.Info("Book removed", "isbn", isbn)
	} else {
		logger.Warn("Book not found for removal", "isbn", isbn)
	}
	return removed, nil
}

func (s *catalogService) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	return s.bookRepo.GetByISBN(ctx, isbn)
}

func (s *catalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.bookRepo.List(ctx)
}

func (s *catalogService) ListAvailableBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	available := books[:0]
	for _, b := range books {
		if b.IsAvailable() {
			available = append(available, b)
		}
	}
	return available, nil
}

func (s *catalogService) SearchBooks(ctx context.Context, st strategy.SearchStrategy, query string) ([]domain.Book, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: search strategy is required", domain.ErrInvalidArgument)
	}
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Searching catalog", "strategy", st.Name(), "query", query)
	return st.Search(books, query), nil
}
