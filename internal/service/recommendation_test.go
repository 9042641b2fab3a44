package service_test

import (
	"context"
	"testing"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository/memory"
	"library-lending-backend/internal/service"
	"library-lending-backend/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for i, year := range []int{1990, 2020, 2010, 2000, 2015, 1980} {
		isbn := string(rune('A' + i))
		require.NoError(t, store.Books.Create(ctx, &domain.Book{ISBN: isbn, Author: "X", PublicationYear: year, Status: domain.BookStatusAvailable}))
	}
	require.NoError(t, store.Patrons.Create(ctx, &domain.Patron{ID: "new", Category: domain.PatronCategoryStudent}))
	require.NoError(t, store.Patrons.Create(ctx, &domain.Patron{ID: "reader", Category: domain.PatronCategoryStudent,
		BorrowingHistory: []domain.LendingRecord{{ID: "1", ISBN: "F"}, {ID: "2", ISBN: "F"}}}))

	popularity := strategy.NewPopularityBased()
	svc := service.NewRecommendationService(store.Books, store.Patrons, strategy.AuthorBased{}, 0, popularity)

	t.Run("Default limit is five", func(t *testing.T) {
		recs, err := svc.GetDefaultRecommendations(ctx, "new")
		require.NoError(t, err)
		assert.Len(t, recs, 5)
		assert.Equal(t, "B", recs[0].ISBN)
	})

	t.Run("Explicit limit", func(t *testing.T) {
		recs, err := svc.GetRecommendations(ctx, "new", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "E"}, []string{recs[0].ISBN, recs[1].ISBN})

		_, err = svc.GetRecommendations(ctx, "new", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = svc.GetRecommendations(ctx, "ghost", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Strategy swap", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetStrategy(nil), domain.ErrInvalidArgument)
		require.NoError(t, svc.SetStrategy(popularity))
		assert.Equal(t, "popularity", svc.Strategy().Name())

		require.NoError(t, svc.RefreshPopularity(ctx))
		assert.Equal(t, 2, popularity.Popularity("F"))

		recs, err := svc.GetRecommendations(ctx, "new", 1)
		require.NoError(t, err)
		assert.Equal(t, "F", recs[0].ISBN)
	})

	t.Run("With explicit strategy", func(t *testing.T) {
		recs, err := svc.GetRecommendationsWithStrategy(ctx, "reader", strategy.AuthorBased{}, 1)
		require.NoError(t, err)
		assert.Equal(t, "A", recs[0].ISBN)

		_, err = svc.GetRecommendationsWithStrategy(ctx, "reader", nil, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
