package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLendingService_BorrowBook(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		rec, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		assert.Equal(t, lib.clock.now, rec.BorrowDate)
		assert.Equal(t, lib.clock.now.Add(14*24*time.Hour), rec.DueDate)
		assert.Nil(t, rec.ReturnDate)

		assert.Equal(t, domain.BookStatusBorrowed, lib.book(t, "978-1").Status)

		stored, err := lib.store.Lendings.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "978-1", stored.ISBN)

		patron, _ := lib.store.Patrons.GetByID(ctx, "STU1")
		require.Len(t, patron.BorrowingHistory, 1)
		assert.Equal(t, rec.ID, patron.BorrowingHistory[0].ID)

		require.Len(t, lib.events.borrowed, 1)
		assert.Equal(t, rec.ID, lib.events.borrowed[0].ID)
	})

	t.Run("Unknown book", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		_, err := lib.lending.BorrowBook(ctx, "missing", "STU1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Unknown patron", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")

		_, err := lib.lending.BorrowBook(ctx, "978-1", "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, domain.BookStatusAvailable, lib.book(t, "978-1").Status)
	})

	t.Run("Book already borrowed", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)
		lib.addPatron(t, "STU2", domain.PatronCategoryStudent)

		_, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		_, err = lib.lending.BorrowBook(ctx, "978-1", "STU2")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Limit reached performs no mutation", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)
		for _, isbn := range []string{"1", "2", "3", "4", "5", "6"} {
			lib.addBook(t, isbn)
		}
		for _, isbn := range []string{"1", "2", "3", "4", "5"} {
			_, err := lib.lending.BorrowBook(ctx, isbn, "STU1")
			require.NoError(t, err)
		}

		_, err := lib.lending.BorrowBook(ctx, "6", "STU1")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Equal(t, domain.BookStatusAvailable, lib.book(t, "6").Status)

		active, _ := lib.lending.GetPatronActiveBorrows(ctx, "STU1")
		assert.Len(t, active, 5)
		all, _ := lib.store.Lendings.List(ctx)
		assert.Len(t, all, 5)
		assert.Len(t, lib.events.borrowed, 5)
	})

	t.Run("Faculty limit is ten", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addPatron(t, "FAC1", domain.PatronCategoryFaculty)
		for i := 0; i < 11; i++ {
			lib.addBook(t, string(rune('a'+i)))
		}
		for i := 0; i < 10; i++ {
			_, err := lib.lending.BorrowBook(ctx, string(rune('a'+i)), "FAC1")
			require.NoError(t, err)
		}
		_, err := lib.lending.BorrowBook(ctx, "k", "FAC1")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestLendingService_ReturnBook(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		borrowed, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		lib.clock.Advance(48 * time.Hour)

		rec, err := lib.lending.ReturnBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		assert.Equal(t, borrowed.ID, rec.ID)
		require.NotNil(t, rec.ReturnDate)
		assert.Equal(t, lib.clock.now, *rec.ReturnDate)

		assert.Equal(t, domain.BookStatusAvailable, lib.book(t, "978-1").Status)

		stored, _ := lib.store.Lendings.GetByID(ctx, rec.ID)
		assert.False(t, stored.IsActive())

		patron, _ := lib.store.Patrons.GetByID(ctx, "STU1")
		require.Len(t, patron.BorrowingHistory, 1)
		assert.False(t, patron.BorrowingHistory[0].IsActive())
		assert.Equal(t, 0, patron.ActiveBorrowCount())

		require.Len(t, lib.events.returned, 1)
	})

	t.Run("No active loan", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		_, err := lib.lending.ReturnBook(ctx, "978-1", "STU1")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Returned twice", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		_, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		_, err = lib.lending.ReturnBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		_, err = lib.lending.ReturnBook(ctx, "978-1", "STU1")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Reservation processing failure does not fail the return", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		processor := new(MockReturnProcessor)
		processor.On("ProcessBookReturn", mock.Anything, "978-1").Return(errors.New("queue unavailable"))
		lib.lending.SetReturnProcessor(processor)

		_, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		_, err = lib.lending.ReturnBook(ctx, "978-1", "STU1")
		assert.NoError(t, err)
		assert.Equal(t, domain.BookStatusAvailable, lib.book(t, "978-1").Status)
		processor.AssertExpectations(t)
	})

	t.Run("Reservation processing panic does not fail the return", func(t *testing.T) {
		lib := newLibrary(t)
		lib.addBook(t, "978-1")
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

		processor := new(MockReturnProcessor)
		processor.On("ProcessBookReturn", mock.Anything, "978-1").Panic("boom")
		lib.lending.SetReturnProcessor(processor)

		_, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
		require.NoError(t, err)
		_, err = lib.lending.ReturnBook(ctx, "978-1", "STU1")
		assert.NoError(t, err)
	})
}

func TestLendingService_Listeners(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	lib.addBook(t, "978-1")
	lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

	var order []string
	first := &recordingListener{name: "first", order: &order}
	second := &recordingListener{name: "second", order: &order}
	lib.lending.AddListener(first)
	lib.lending.AddListener(second)

	_, err := lib.lending.BorrowBook(ctx, "978-1", "STU1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)

	lib.lending.RemoveListener(first)
	_, err = lib.lending.ReturnBook(ctx, "978-1", "STU1")
	require.NoError(t, err)
	_, err = lib.lending.BorrowBook(ctx, "978-1", "STU1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestLendingService_BorrowedImpliesSingleActiveRecord(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	lib.addBook(t, "978-1")
	lib.addPatron(t, "STU1", domain.PatronCategoryStudent)
	lib.addPatron(t, "FAC1", domain.PatronCategoryFaculty)

	activeFor := func(isbn string) int {
		recs, err := lib.store.Lendings.ListByISBN(ctx, isbn)
		require.NoError(t, err)
		n := 0
		for _, r := range recs {
			if r.IsActive() {
				n++
			}
		}
		return n
	}

	for _, patron := range []string{"STU1", "FAC1", "STU1"} {
		_, err := lib.lending.BorrowBook(ctx, "978-1", patron)
		require.NoError(t, err)
		assert.Equal(t, domain.BookStatusBorrowed, lib.book(t, "978-1").Status)
		assert.Equal(t, 1, activeFor("978-1"))

		_, err = lib.lending.ReturnBook(ctx, "978-1", patron)
		require.NoError(t, err)
		assert.Equal(t, 0, activeFor("978-1"))
	}
}

func TestLendingService_ListOverdue(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	lib.addBook(t, "a")
	lib.addBook(t, "b")
	lib.addPatron(t, "STU1", domain.PatronCategoryStudent)

	_, err := lib.lending.BorrowBook(ctx, "a", "STU1")
	require.NoError(t, err)
	lib.clock.Advance(5 * 24 * time.Hour)
	_, err = lib.lending.BorrowBook(ctx, "b", "STU1")
	require.NoError(t, err)

	overdue, err := lib.lending.ListOverdue(ctx, lib.clock.now.Add(10*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "a", overdue[0].ISBN)
}

func TestLendingService_BorrowWithMocks(t *testing.T) {
	ctx := context.Background()
	bookRepo := new(MockBookRepo)
	patronRepo := new(MockPatronRepo)
	svc := service.NewLendingService(bookRepo, patronRepo, nil, nil)

	t.Run("Unavailable book stops before any write", func(t *testing.T) {
		bookRepo.On("GetByISBN", ctx, "x").Return(&domain.Book{ISBN: "x", Status: domain.BookStatusBorrowed}, nil)
		patronRepo.On("GetByID", ctx, "p").Return(&domain.Patron{ID: "p", Category: domain.PatronCategoryStudent}, nil)

		_, err := svc.BorrowBook(ctx, "x", "p")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		bookRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		patronRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestLendingService_ConcurrentBorrowsRespectLimit(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		lib := newLibrary(t)
		lib.addPatron(t, "STU1", domain.PatronCategoryStudent)
		isbns := make([]string, 10)
		for i := range isbns {
			isbns[i] = fmt.Sprintf("b%d", i)
			lib.addBook(t, isbns[i])
		}

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for _, isbn := range isbns {
			wg.Add(1)
			go func(isbn string) {
				defer wg.Done()
				if _, err := lib.lending.BorrowBook(ctx, isbn, "STU1"); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, domain.ErrInvalidState)
				}
			}(isbn)
		}
		wg.Wait()

		active, err := lib.lending.GetPatronActiveBorrows(ctx, "STU1")
		require.NoError(t, err)
		patron, err := lib.store.Patrons.GetByID(ctx, "STU1")
		require.NoError(t, err)

		require.Equal(t, 5, succeeded, "round %d", round)
		require.Len(t, active, 5, "round %d", round)
		require.Len(t, patron.BorrowingHistory, 5, "round %d", round)
		assert.Equal(t, 5, patron.ActiveBorrowCount())
	}
}

func TestLendingService_ConcurrentBorrowAndReturnKeepHistory(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	lib.addPatron(t, "FAC1", domain.PatronCategoryFaculty)
	for i := 0; i < 8; i++ {
		lib.addBook(t, fmt.Sprintf("b%d", i))
	}
	for i := 0; i < 4; i++ {
		_, err := lib.lending.BorrowBook(ctx, fmt.Sprintf("b%d", i), "FAC1")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			isbn := fmt.Sprintf("b%d", i)
			var err error
			if i < 4 {
				_, err = lib.lending.ReturnBook(ctx, isbn, "FAC1")
			} else {
				_, err = lib.lending.BorrowBook(ctx, isbn, "FAC1")
			}
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ledger, err := lib.store.Lendings.ListByPatron(ctx, "FAC1")
	require.NoError(t, err)
	patron, err := lib.store.Patrons.GetByID(ctx, "FAC1")
	require.NoError(t, err)

	require.Len(t, ledger, 8)
	require.Len(t, patron.BorrowingHistory, 8)
	assert.Equal(t, 4, patron.ActiveBorrowCount())
	for _, rec := range ledger {
		found := false
		for _, h := range patron.BorrowingHistory {
			if h.ID == rec.ID {
				found = true
				assert.Equal(t, rec.IsActive(), h.IsActive(), "record %s", rec.ID)
			}
		}
		assert.True(t, found, "record %s missing from history", rec.ID)
	}
}
