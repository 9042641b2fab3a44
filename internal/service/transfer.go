package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type transferService struct {
	transferRepo repository.TransferRepository
	bookRepo     repository.BookRepository
	branchRepo   repository.BranchRepository
	clock        Clock
}

func NewTransferService(
	transferRepo repository.TransferRepository,
	bookRepo repository.BookRepository,
	branchRepo repository.BranchRepository,
	clock Clock,
) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		bookRepo:     bookRepo,
		branchRepo:   branchRepo,
		clock:        clock,
	}
}

func (s *transferService) InitiateTransfer(ctx context.Context, isbn, sourceBranchID, destinationBranchID string) (*domain.TransferRequest, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, fmt.Errorf("%w: isbn is required", domain.ErrInvalidArgument)
	}
	if sourceBranchID == "" || destinationBranchID == "" {
		return nil, fmt.Errorf("%w: source and destination branches are required", domain.ErrInvalidArgument)
	}
	if sourceBranchID == destinationBranchID {
		return nil, fmt.Errorf("%w: source and destination branch are both %s", domain.ErrInvalidArgument, sourceBranchID)
	}

	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book.BranchID != sourceBranchID {
		return nil, fmt.Errorf("%w: book %s is held at branch %q, not %s", domain.ErrInvalidState, isbn, book.BranchID, sourceBranchID)
	}
	for _, id := range []string{sourceBranchID, destinationBranchID} {
		if _, err := s.branchRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	req := &domain.TransferRequest{
		ID:                  uuid.New().String(),
		ISBN:                isbn,
		SourceBranchID:      sourceBranchID,
		DestinationBranchID: destinationBranchID,
		RequestDate:         s.clock.now(),
		Status:              domain.TransferStatusPending,
	}
	if err := s.transferRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Transfer initiated", "transferID", req.ID, "isbn", isbn, "from", sourceBranchID, "to", destinationBranchID)
	return req, nil
}

func (s *transferService) CompleteTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error) {
	req, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if req.IsClosed() {
		return nil, fmt.Errorf("%w: transfer %s is %s", domain.ErrInvalidState, transferID, req.Status)
	}

	book, err := s.bookRepo.GetByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}
	book.BranchID = req.DestinationBranchID
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	now := s.clock.now()
	req.Status = domain.TransferStatusCompleted
	req.CompletionDate = &now
	req.Remarks = "Transfer completed successfully"
	if err := s.transferRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Transfer completed", "transferID", transferID, "isbn", req.ISBN, "branch", req.DestinationBranchID)
	return req, nil
}

func (s *transferService) CancelTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error) {
	req, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if req.IsClosed() {
		return nil, fmt.Errorf("%w: only pending transfers can be cancelled, %s is %s", domain.ErrInvalidState, transferID, req.Status)
	}
	req.Status = domain.TransferStatusCancelled
	req.Remarks = "Transfer cancelled by user"
	if err := s.transferRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Transfer cancelled", "transferID", transferID)
	return req, nil
}

func (s *transferService) GetTransfer(ctx context.Context, transferID string) (*domain.TransferRequest, error) {
	return s.transferRepo.GetByID(ctx, transferID)
}

func (s *transferService) ListTransfersForBook(ctx context.Context, isbn string) ([]domain.TransferRequest, error) {
	return s.transferRepo.ListByISBN(ctx, isbn)
}
