package service_test

import (
	"context"
	"testing"
	"time"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository/memory"
	"library-lending-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchService(t *testing.T) {
	ctx := context.Background()
	svc := service.NewBranchService(memory.NewBranchRepository())

	require.NoError(t, svc.RegisterBranch(ctx, &domain.Branch{ID: "B1", Name: "Main"}))
	assert.ErrorIs(t, svc.RegisterBranch(ctx, &domain.Branch{ID: "B1"}), domain.ErrDuplicateKey)
	assert.ErrorIs(t, svc.RegisterBranch(ctx, &domain.Branch{}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, svc.RegisterBranch(ctx, nil), domain.ErrInvalidArgument)

	exists, err := svc.BranchExists(ctx, "B1")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = svc.BranchExists(ctx, "B9")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, svc.UpdateBranch(ctx, &domain.Branch{ID: "B1", Name: "Central"}))
	b, _ := svc.GetBranch(ctx, "B1")
	assert.Equal(t, "Central", b.Name)
	assert.ErrorIs(t, svc.UpdateBranch(ctx, &domain.Branch{ID: "B9"}), domain.ErrNotFound)

	require.NoError(t, svc.DeleteBranch(ctx, "B1"))
	assert.ErrorIs(t, svc.DeleteBranch(ctx, "B1"), domain.ErrNotFound)
	all, _ := svc.ListBranches(ctx)
	assert.Empty(t, all)
}

func TestTransferService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := service.NewTransferService(store.Transfers, store.Books, store.Branches, func() time.Time { return now })

	require.NoError(t, store.Branches.Create(ctx, &domain.Branch{ID: "B1"}))
	require.NoError(t, store.Branches.Create(ctx, &domain.Branch{ID: "B2"}))
	require.NoError(t, store.Books.Create(ctx, &domain.Book{ISBN: "978-1", Status: domain.BookStatusAvailable, BranchID: "B1"}))

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.InitiateTransfer(ctx, "", "B1", "B2")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = svc.InitiateTransfer(ctx, "978-1", "", "B2")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = svc.InitiateTransfer(ctx, "978-1", "B1", "B1")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = svc.InitiateTransfer(ctx, "nope", "B1", "B2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.InitiateTransfer(ctx, "978-1", "B2", "B1")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = svc.InitiateTransfer(ctx, "978-1", "B1", "B7")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Complete", func(t *testing.T) {
		req, err := svc.InitiateTransfer(ctx, "978-1", "B1", "B2")
		require.NoError(t, err)
		assert.Equal(t, domain.TransferStatusPending, req.Status)
		assert.Equal(t, now, req.RequestDate)

		done, err := svc.CompleteTransfer(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransferStatusCompleted, done.Status)
		require.NotNil(t, done.CompletionDate)
		assert.Equal(t, "Transfer completed successfully", done.Remarks)

		book, _ := store.Books.GetByISBN(ctx, "978-1")
		assert.Equal(t, "B2", book.BranchID)

		_, err = svc.CompleteTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		_, err = svc.CancelTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Cancel", func(t *testing.T) {
		req, err := svc.InitiateTransfer(ctx, "978-1", "B2", "B1")
		require.NoError(t, err)

		cancelled, err := svc.CancelTransfer(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TransferStatusCancelled, cancelled.Status)
		assert.Equal(t, "Transfer cancelled by user", cancelled.Remarks)

		stored, err := svc.GetTransfer(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, "Transfer cancelled by user", stored.Remarks)

		_, err = svc.CompleteTransfer(ctx, req.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		history, _ := svc.ListTransfersForBook(ctx, "978-1")
		assert.Len(t, history, 2)
	})

	t.Run("Unknown transfer", func(t *testing.T) {
		_, err := svc.CompleteTransfer(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.GetTransfer(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
