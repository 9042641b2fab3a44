package service

import (
	"context"
	"fmt"
	"strings"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
)

type patronService struct {
	patronRepo repository.PatronRepository
}

func NewPatronService(patronRepo repository.PatronRepository) PatronService {
	return &patronService{patronRepo: patronRepo}
}

func (s *patronService) RegisterPatron(ctx context.Context, name, email, phone string, category domain.PatronCategory) (*domain.Patron, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: patron name is required", domain.ErrInvalidArgument)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown patron category %q", domain.ErrInvalidArgument, category)
	}

	patron := &domain.Patron{
		ID:       domain.NewPatronID(category),
		Name:     name,
		Email:    email,
		Phone:    phone,
		Category: category,
	}
	if err := s.patronRepo.Create(ctx, patron); err != nil {
		logger.Error("Error registering patron", "patronID", patron.ID, "error", err)
		return nil, err
	}
	logger.Info("Patron registered", "patronID", patron.ID, "category", category)
	return patron, nil
}

func (s *patronService) UpdateContact(ctx context.Context, patronID, name, email, phone string) (*domain.Patron, error) {
	patron, err := s.patronRepo.GetByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		patron.Name = name
	}
	patron.Email = email
	patron.Phone = phone
	if err := s.patronRepo.Update(ctx, patron); err != nil {
		logger.Error("Error updating patron", "patronID", patronID, "error", err)
		return nil, err
	}
	return patron, nil
}

func (s *patronService) RemovePatron(ctx context.Context, patronID string) (bool, error) {
	removed, err := s.patronRepo.Delete(ctx, patronID)
	if err != nil {
		return false, err
	}
	if !removed {
		logger.Warn("Patron not found for removal", "patronID", patronID)
	}
	return removed, nil
}

func (s *patronService) GetPatron(ctx context.Context, patronID string) (*domain.Patron, error) {
	return s.patronRepo.GetByID(ctx, patronID)
}

func (s *patronService) ListPatrons(ctx context.Context) ([]domain.Patron, error) {
	return s.patronRepo.List(ctx)
}
