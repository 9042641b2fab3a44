package service_test

import (
	"context"
	"time"

	"library-lending-backend/internal/domain"
	"library-lending-backend/internal/repository"
	"library-lending-backend/internal/repository/memory"
	"library-lending-backend/internal/service"

	"github.com/stretchr/testify/require"
)

// tb is the part of testing.TB that rapid.T also provides.
type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

// testClock is a settable clock shared by the services under test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type library struct {
	store        *repository.Store
	clock        *testClock
	lending      service.LendingService
	reservations service.ReservationService
	events       *recordingListener
}

func newLibrary(t tb) *library {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}

	lending := service.NewLendingService(store.Books, store.Patrons, store.Lendings, clock.Now)
	reservations := service.NewReservationService(store.Reservations, store.Books, store.Patrons, clock.Now)
	lending.SetReturnProcessor(reservations)

	events := &recordingListener{}
	lending.AddListener(events)
	reservations.AddListener(events)

	return &library{store: store, clock: clock, lending: lending, reservations: reservations, events: events}
}

func (l *library) addBook(t tb, isbn string) {
	t.Helper()
	require.NoError(t, l.store.Books.Create(context.Background(), &domain.Book{
		ISBN: isbn, Title: "Title " + isbn, Author: "Author", PublicationYear: 2000, Status: domain.BookStatusAvailable,
	}))
}

func (l *library) addPatron(t tb, id string, category domain.PatronCategory) {
	t.Helper()
	require.NoError(t, l.store.Patrons.Create(context.Background(), &domain.Patron{
		ID: id, Name: "Patron " + id, Email: id + "@example.com", Category: category,
	}))
}

func (l *library) book(t tb, isbn string) *domain.Book {
	t.Helper()
	b, err := l.store.Books.GetByISBN(context.Background(), isbn)
	require.NoError(t, err)
	return b
}

func (l *library) reservation(t tb, id string) *domain.Reservation {
	t.Helper()
	r, err := l.store.Reservations.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func positions(t tb, svc service.ReservationService, isbn string) []int {
	t.Helper()
	queue, err := svc.GetBookReservations(context.Background(), isbn)
	require.NoError(t, err)
	out := make([]int, len(queue))
	for i, r := range queue {
		out[i] = r.QueuePosition
	}
	return out
}

func newFulfillment(l *library) service.LendingListener {
	return service.NewFulfillmentListener(l.reservations)
}
