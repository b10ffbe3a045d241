package occupancy_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/occupancy"
	"boxrental-backend/internal/repository"
	"boxrental-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("Consistent store has no drift", func(t *testing.T) {
		store := memory.NewStore()
		engine := newEngine(t, store, domain.DeletePolicyReleaseIfActive)
		box := seedBox(t, store, 1)
		client := seedClient(t, store, "Ana Souza")
		_, _, err := engine.OpenRental(ctx, client.ID, box.ID)
		require.NoError(t, err)

		drift, err := engine.Reconcile(ctx, true)
		require.NoError(t, err)
		assert.Empty(t, drift)
	})

	t.Run("Repairs flags in both directions", func(t *testing.T) {
		store := memory.NewStore()
		engine := newEngine(t, store, domain.DeletePolicyReleaseAlways)
		stale := seedBox(t, store, 1)
		reRented := seedBox(t, store, 2)
		client := seedClient(t, store, "Ana Souza")

		// Box 1 flagged occupied with no rental.
		require.NoError(t, store.Boxes.SetOccupied(ctx, stale.ID, true))

		// Box 2 freed by an unconditional delete while rented again.
		old, _, err := engine.OpenRental(ctx, client.ID, reRented.ID)
		require.NoError(t, err)
		_, _, err = engine.CloseRental(ctx, old.ID)
		require.NoError(t, err)
		_, _, err = engine.OpenRental(ctx, client.ID, reRented.ID)
		require.NoError(t, err)
		_, err = engine.DeleteRental(ctx, old.ID)
		require.NoError(t, err)

		drift, err := engine.Reconcile(ctx, true)
		require.NoError(t, err)
		assert.Len(t, drift, 2)

		assert.False(t, getBox(t, store, stale.ID).Occupied)
		assert.True(t, getBox(t, store, reRented.ID).Occupied)
		assertConsistent(t, store)

		drift, err = engine.Reconcile(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, drift)
	})

	t.Run("Report only leaves flags alone", func(t *testing.T) {
		store := memory.NewStore()
		engine := newEngine(t, store, domain.DeletePolicyReleaseIfActive)
		box := seedBox(t, store, 1)
		require.NoError(t, store.Boxes.SetOccupied(ctx, box.ID, true))

		drift, err := engine.Reconcile(ctx, false)
		require.NoError(t, err)
		require.Len(t, drift, 1)
		assert.True(t, drift[0].Occupied)
		assert.Equal(t, int32(0), drift[0].ActiveRentals)
		assert.True(t, getBox(t, store, box.ID).Occupied)
	})
}

// stuckBoxTx fails SetOccupied for one box only.
type stuckBoxTx struct {
	store *memory.Store
	boxID int32
}

type stuckBoxes struct {
	repository.BoxRepository
	boxID int32
}

func (b stuckBoxes) SetOccupied(ctx context.Context, id int32, occupied bool) error {
	if id == b.boxID {
		return errors.New("canceling statement due to lock timeout")
	}
	return b.BoxRepository.SetOccupied(ctx, id, occupied)
}

func (s stuckBoxTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		tx.Boxes = stuckBoxes{BoxRepository: tx.Boxes, boxID: s.boxID}
		return fn(ctx, tx)
	})
}

func TestReconcile_FailedRepairDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	stuck := seedBox(t, store, 1)
	other := seedBox(t, store, 2)
	require.NoError(t, store.Boxes.SetOccupied(ctx, stuck.ID, true))
	require.NoError(t, store.Boxes.SetOccupied(ctx, other.ID, true))

	engine := occupancy.NewEngine(store.Boxes, store.Rentals, stuckBoxTx{store: store, boxID: stuck.ID}, domain.DeletePolicyReleaseIfActive)

	drift, err := engine.Reconcile(ctx, true)
	assert.Len(t, drift, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.Contains(t, err.Error(), fmt.Sprintf("box %d", stuck.ID))

	assert.True(t, getBox(t, store, stuck.ID).Occupied)
	assert.False(t, getBox(t, store, other.ID).Occupied)
}
