package service

import (
	"context"
	"fmt"
	"strings"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type branchService struct {
	branchRepo repository.BranchRepository
}

func NewBranchService(branchRepo repository.BranchRepository) BranchService {
	return &branchService{branchRepo: branchRepo}
}

func (s *branchService) RegisterBranch(ctx context.Context, branch *domain.Branch) error {
	if branch == nil || strings.TrimSpace(branch.ID) == "" {
		return fmt.Errorf("%w: branch id is required", domain.ErrInvalidArgument)
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		logger.Warn("Could not register branch", "branchID", branch.ID, "error", err)
		return err
	}
	logger.Info("Branch registered", "branchID", branch.ID, "name", branch.Name)
	return nil
}

func (s *branchService) UpdateBranch(ctx context.Context, branch *domain.Branch) error {
	if branch == nil {
		return fmt.Errorf("%w: branch is required", domain.ErrInvalidArgument)
	}
	if err := s.branchRepo.Update(ctx, branch); err != nil {
		logger.Error("Could not update branch", "branchID", branch.ID, "error", err)
		return err
	}
	return nil
}

func (s *branchService) DeleteBranch(ctx context.Context, branchID string) error {
	removed, err := s.branchRepo.Delete(ctx, branchID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: branch %s", domain.ErrNotFound, branchID)
	}
	logger.Info("Branch deleted", "branchID", branchID)
	return nil
}

func (s *branchService) GetBranch(ctx context.Context, branchID string) (*domain.Branch, error) {
	return s.branchRepo.GetByID(ctx, branchID)
}

func (s *branchService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return s.branchRepo.List(ctx)
}

func (s *branchService) BranchExists(ctx context.Context, branchID string) (bool, error) {
	_, err := s.branchRepo.GetByID(ctx, branchID)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
