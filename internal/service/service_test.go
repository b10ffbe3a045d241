package service_test

import (
	"context"
	"testing"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository/memory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin    = domain.Principal{ID: 1, Level: domain.LevelAdmin}
	operator = domain.Principal{ID: 2, Level: domain.LevelOperator}
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRentalSummary(ctx context.Context, client *domain.Client, rentals []domain.Rental) error {
	args := m.Called(ctx, client, rentals)
	return args.Error(0)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, actorID int32, action string) error {
	args := m.Called(ctx, actorID, action)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(events ...domain.Event) {
	m.Called(events)
}

func seedClient(t *testing.T, store *memory.Store) *domain.Client {
	t.Helper()
	client := &domain.Client{Name: "Maria Silva", Phone: "11999990000", Email: "maria@example.com", Plate: "ABC1D23"}
	require.NoError(t, store.Clients.Create(context.Background(), client))
	return client
}

func seedBox(t *testing.T, store *memory.Store, number int32) *domain.Box {
	t.Helper()
	box := &domain.Box{Number: number, MonthlyPriceCents: 15000}
	require.NoError(t, store.Boxes.Create(context.Background(), box))
	return box
}

// seedActiveRental writes both sides of an occupied box.
func seedActiveRental(t *testing.T, store *memory.Store, clientID, boxID int32) *domain.Rental {
	t.Helper()
	ctx := context.Background()
	rental := &domain.Rental{ClientID: clientID, BoxID: boxID, StartedAt: time.Now().UTC(), Active: true}
	require.NoError(t, store.Rentals.Create(ctx, rental))
	require.NoError(t, store.Boxes.SetOccupied(ctx, boxID, true))
	return rental
}
