package service_test

import (
	"context"
	"sync"

	"library-lending-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBorrowReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	args := m.Called(ctx, email, name, rec)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnReceipt(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	args := m.Called(ctx, email, name, rec)
	return args.Error(0)
}
func (m *MockEmailService) SendHoldReady(ctx context.Context, email, name string, res domain.Reservation) error {
	args := m.Called(ctx, email, name, res)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name string, rec domain.LendingRecord) error {
	args := m.Called(ctx, email, name, rec)
	return args.Error(0)
}

// MockPushService
type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) NotifyPatron(ctx context.Context, patronID, title, body string, data map[string]string) error {
	args := m.Called(ctx, patronID, title, body, data)
	return args.Error(0)
}

// MockReturnProcessor
type MockReturnProcessor struct {
	mock.Mock
}

func (m *MockReturnProcessor) ProcessBookReturn(ctx context.Context, isbn string) error {
	args := m.Called(ctx, isbn)
	return args.Error(0)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) List(ctx context.Context) ([]domain.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Book), args.Error(1)
}
func (m *MockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) Delete(ctx context.Context, isbn string) (bool, error) {
	args := m.Called(ctx, isbn)
	return args.Bool(0), args.Error(1)
}

// MockPatronRepo
type MockPatronRepo struct {
	mock.Mock
}

func (m *MockPatronRepo) Create(ctx context.Context, patron *domain.Patron) error {
	args := m.Called(ctx, patron)
	return args.Error(0)
}
func (m *MockPatronRepo) GetByID(ctx context.Context, id string) (*domain.Patron, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patron), args.Error(1)
}
func (m *MockPatronRepo) List(ctx context.Context) ([]domain.Patron, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Patron), args.Error(1)
}
func (m *MockPatronRepo) Update(ctx context.Context, patron *domain.Patron) error {
	args := m.Called(ctx, patron)
	return args.Error(0)
}
func (m *MockPatronRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// recordingListener captures every event it sees, in order.
type recordingListener struct {
	mu       sync.Mutex
	borrowed []domain.LendingRecord
	returned []domain.LendingRecord
	events   []domain.ReservationEvent
	order    *[]string
	name     string
}

func (l *recordingListener) OnBorrowed(ctx context.Context, rec domain.LendingRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.borrowed = append(l.borrowed, rec)
	if l.order != nil {
		*l.order = append(*l.order, l.name)
	}
}

func (l *recordingListener) OnReturned(ctx context.Context, rec domain.LendingRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.returned = append(l.returned, rec)
}

func (l *recordingListener) OnReservationEvent(ctx context.Context, ev domain.ReservationEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *recordingListener) eventTypes() []domain.ReservationEventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ReservationEventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type()
	}
	return out
}
