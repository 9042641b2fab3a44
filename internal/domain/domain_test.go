package domain_test

import (
	"strings"
	"testing"
	"time"

	"library-lending-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPatronCategory_BorrowLimit(t *testing.T) {
	assert.Equal(t, 5, domain.PatronCategoryStudent.BorrowLimit())
	assert.Equal(t, 10, domain.PatronCategoryFaculty.BorrowLimit())
	assert.Equal(t, 0, domain.PatronCategory("GUEST").BorrowLimit())
}

func TestNewPatronID(t *testing.T) {
	t.Run("Student", func(t *testing.T) {
		id := domain.NewPatronID(domain.PatronCategoryStudent)
		assert.True(t, strings.HasPrefix(id, "STU"))
		assert.Len(t, id, 11)
		assert.Equal(t, strings.ToUpper(id), id)
	})

	t.Run("Faculty", func(t *testing.T) {
		id := domain.NewPatronID(domain.PatronCategoryFaculty)
		assert.True(t, strings.HasPrefix(id, "FAC"))
		assert.NotEqual(t, id, domain.NewPatronID(domain.PatronCategoryFaculty))
	})
}

func TestPatron_CanBorrowMore(t *testing.T) {
	returned := time.Now()
	p := &domain.Patron{ID: "STU1", Category: domain.PatronCategoryStudent}
	for i := 0; i < 4; i++ {
		p.BorrowingHistory = append(p.BorrowingHistory, domain.LendingRecord{ID: string(rune('a' + i))})
	}
	p.BorrowingHistory = append(p.BorrowingHistory, domain.LendingRecord{ID: "z", ReturnDate: &returned})

	assert.Equal(t, 4, p.ActiveBorrowCount())
	assert.True(t, p.CanBorrowMore())

	p.BorrowingHistory = append(p.BorrowingHistory, domain.LendingRecord{ID: "e"})
	assert.False(t, p.CanBorrowMore())
}

func TestPatron_CloneIsIndependent(t *testing.T) {
	orig := domain.Patron{ID: "FAC1", BorrowingHistory: []domain.LendingRecord{{ID: "r1"}}}
	cp := orig.Clone()

	now := time.Now()
	cp.BorrowingHistory[0].ReturnDate = &now

	assert.Nil(t, orig.BorrowingHistory[0].ReturnDate)
	assert.True(t, cp.ReplaceHistoryRecord(domain.LendingRecord{ID: "r1"}))
	assert.False(t, cp.ReplaceHistoryRecord(domain.LendingRecord{ID: "missing"}))
}

func TestLendingRecord_IsOverdue(t *testing.T) {
	borrowed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := domain.LendingRecord{BorrowDate: borrowed, DueDate: borrowed.Add(domain.LoanPeriod)}

	assert.False(t, rec.IsOverdue(borrowed.Add(24*time.Hour)))
	assert.True(t, rec.IsOverdue(borrowed.Add(15*24*time.Hour)))

	ret := borrowed.Add(20 * 24 * time.Hour)
	rec.ReturnDate = &ret
	assert.False(t, rec.IsOverdue(borrowed.Add(30*24*time.Hour)))
}

func TestReservationEvent_Variants(t *testing.T) {
	res := domain.Reservation{ID: "res-1"}
	events := []domain.ReservationEvent{
		domain.ReservationCreated{Reservation: res},
		domain.ReservationReady{Reservation: res},
		domain.ReservationCancelled{Reservation: res},
		domain.ReservationExpired{Reservation: res},
	}
	want := []domain.ReservationEventType{
		domain.ReservationEventCreated,
		domain.ReservationEventReady,
		domain.ReservationEventCancelled,
		domain.ReservationEventExpired,
	}
	for i, ev := range events {
		assert.Equal(t, want[i], ev.Type())
		assert.Equal(t, "res-1", ev.ReservationID())
	}
}
