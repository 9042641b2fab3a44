package service

import (
	"context"
	"fmt"
	"sync"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
	"library-lending-backend/internal/strategy"
)

const DefaultRecommendationLimit = 5

type recommendationService struct {
	bookRepo     repository.BookRepository
	patronRepo   repository.PatronRepository
	defaultLimit int
	known        []strategy.RecommendationStrategy

	mu      sync.RWMutex
	current strategy.RecommendationStrategy
}

// NewRecommendationService starts with initial as the active strategy. Any
// extra strategies are refreshed alongside it by RefreshPopularity.
func NewRecommendationService(
	bookRepo repository.BookRepository,
	patronRepo repository.PatronRepository,
	initial strategy.RecommendationStrategy,
	defaultLimit int,
	extra ...strategy.RecommendationStrategy,
) RecommendationService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultRecommendationLimit
	}
	if initial == nil {
		initial = strategy.AuthorBased{}
	}
	return &recommendationService{
		bookRepo:     bookRepo,
		patronRepo:   patronRepo,
		defaultLimit: defaultLimit,
		known:        append([]strategy.RecommendationStrategy{initial}, extra...),
		current:      initial,
	}
}

func (s *recommendationService) SetStrategy(st strategy.RecommendationStrategy) error {
	if st == nil {
		return fmt.Errorf("%w: recommendation strategy is required", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
	logger.Info("Recommendation strategy changed", "strategy", st.Name())
	return nil
}

func (s *recommendationService) Strategy() strategy.RecommendationStrategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *recommendationService) GetRecommendations(ctx context.Context, patronID string, limit int) ([]domain.Book, error) {
	return s.GetRecommendationsWithStrategy(ctx, patronID, s.Strategy(), limit)
}

func (s *recommendationService) GetDefaultRecommendations(ctx context.Context, patronID string) ([]domain.Book, error) {
	return s.GetRecommendations(ctx, patronID, s.defaultLimit)
}

func (s *recommendationService) GetRecommendationsWithStrategy(ctx context.Context, patronID string, st strategy.RecommendationStrategy, limit int) ([]domain.Book, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: recommendation strategy is required", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}
	patron, err := s.patronRepo.GetByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := st.Recommend(patron, books, limit)
	if err != nil {
		return nil, err
	}
	logger.Debug("Recommendations generated", "patronID", patronID, "strategy", st.Name(), "count", len(recs))
	return recs, nil
}

// RefreshPopularity feeds every patron's history to the strategies that rank by popularity.
func (s *recommendationService) RefreshPopularity(ctx context.Context) error {
	patrons, err := s.patronRepo.List(ctx)
	if err != nil {
		return err
	}

	targets := append([]strategy.RecommendationStrategy{s.Strategy()}, s.known...)
	seen := make(map[strategy.PopularitySource]struct{})
	for _, st := range targets {
		src, ok := st.(strategy.PopularitySource)
		if !ok {
			continue
		}
		if _, done := seen[src]; done {
			continue
		}
		seen[src] = struct{}{}
		src.UpdatePopularityData(patrons)
	}
	logger.Info("Popularity data refreshed", "patrons", len(patrons), "strategies", len(seen))
	return nil
}
