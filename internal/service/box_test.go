package service_test

import (
	"context"
	"testing"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository/memory"
	"boxrental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxService_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewBoxService(store.Boxes, store)

	box, err := svc.CreateBox(ctx, 12, 20000)
	require.NoError(t, err)
	assert.NotZero(t, box.ID)
	assert.False(t, box.Occupied)

	_, err = svc.CreateBox(ctx, 0, 20000)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, err = svc.CreateBox(ctx, 13, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	updated, err := svc.UpdateBox(ctx, box.ID, 14, 25000)
	require.NoError(t, err)
	assert.Equal(t, int32(14), updated.Number)

	boxes, err := svc.ListBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, int64(25000), boxes[0].MonthlyPriceCents)
}

func TestBoxService_DeleteBox(t *testing.T) {
	ctx := context.Background()

	t.Run("Free box", func(t *testing.T) {
		store := memory.NewStore()
		box := seedBox(t, store, 5)
		svc := service.NewBoxService(store.Boxes, store)

		deleted, err := svc.DeleteBox(ctx, box.ID)
		require.NoError(t, err)
		assert.Equal(t, box.ID, deleted.ID)

		_, err = store.Boxes.GetByID(ctx, box.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Occupied box is refused", func(t *testing.T) {
		store := memory.NewStore()
		client := seedClient(t, store)
		box := seedBox(t, store, 5)
		seedActiveRental(t, store, client.ID, box.ID)
		svc := service.NewBoxService(store.Boxes, store)

		_, err := svc.DeleteBox(ctx, box.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		still, err := store.Boxes.GetByID(ctx, box.ID)
		require.NoError(t, err)
		assert.True(t, still.Occupied)
	})

	t.Run("Unknown box", func(t *testing.T) {
		store := memory.NewStore()
		svc := service.NewBoxService(store.Boxes, store)
		_, err := svc.DeleteBox(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
