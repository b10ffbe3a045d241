package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"boxrental-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBoxRepository(db)

		mock.ExpectQuery("INSERT INTO boxes").
			WithArgs(int32(12), int64(20000), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

		box := &domain.Box{Number: 12, MonthlyPriceCents: 20000, Occupied: true}
		require.NoError(t, repo.Create(ctx, box))
		assert.Equal(t, int32(3), box.ID)
		assert.False(t, box.Occupied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByID not found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBoxRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM boxes WHERE id = \$1`).
			WithArgs(int32(8)).
			WillReturnError(sql.ErrNoRows)

		box, err := repo.GetByID(ctx, 8)
		assert.Nil(t, box)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("SetOccupied on missing box", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBoxRepository(db)

		mock.ExpectExec("UPDATE boxes SET occupied").
			WithArgs(false, int32(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetOccupied(ctx, 8, false), domain.ErrNotFound)
	})

	t.Run("Update keeps occupancy", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBoxRepository(db)

		mock.ExpectQuery(`UPDATE boxes SET number = \$1, monthly_price_cents = \$2 WHERE id = \$3 RETURNING occupied, created_on`).
			WithArgs(int32(14), int64(18000), int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"occupied", "created_on"}).AddRow(true, now))

		box := &domain.Box{ID: 3, Number: 14, MonthlyPriceCents: 18000}
		require.NoError(t, repo.Update(ctx, box))
		assert.True(t, box.Occupied)
	})

	t.Run("ListOccupancyDrift", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBoxRepository(db)

		mock.ExpectQuery("SELECT b.id, b.number, b.occupied, COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"id", "number", "occupied", "active_rentals"}).
				AddRow(1, 1, true, 0).
				AddRow(2, 2, false, 1))

		drift, err := repo.ListOccupancyDrift(ctx)
		require.NoError(t, err)
		require.Len(t, drift, 2)
		assert.True(t, drift[0].Occupied)
		assert.Equal(t, int32(1), drift[1].ActiveRentals)
	})
}

func TestRentalRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Close of an inactive rental", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRentalRepository(db)

		mock.ExpectExec("UPDATE rentals SET ended_at").
			WithArgs(now, int32(4)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Close(ctx, &domain.Rental{ID: 4, EndedAt: &now})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("ListWithRelations", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRentalRepository(db)

		mock.ExpectQuery("SELECT r.id, (.+) FROM rentals r JOIN clients c (.+) JOIN boxes b").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "client_id", "box_id", "started_at", "ended_at", "active",
				"c_id", "name", "phone", "email", "plate", "c_created_on",
				"b_id", "number", "monthly_price_cents", "occupied", "b_created_on",
			}).AddRow(1, 2, 3, now, nil, true,
				2, "Maria Silva", "11999990000", "maria@example.com", "ABC1D23", now,
				3, 5, 15000, true, now))

		rentals, err := repo.ListWithRelations(ctx)
		require.NoError(t, err)
		require.Len(t, rentals, 1)
		assert.Nil(t, rentals[0].EndedAt)
		assert.Equal(t, "Maria Silva", rentals[0].Client.Name)
		assert.Equal(t, int32(5), rentals[0].Box.Number)
	})

	t.Run("CountActiveByBox", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRentalRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rentals WHERE box_id = \$1 AND active`).
			WithArgs(int32(3)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		n, err := repo.CountActiveByBox(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, int32(1), n)
	})
}

func TestLogRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewLogRepository(db)

	t.Run("Create without user", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO log_entries").
			WithArgs("Listed clients", nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		entry := &domain.LogEntry{Action: "Listed clients"}
		require.NoError(t, repo.Create(ctx, entry))
		assert.Equal(t, int32(10), entry.ID)
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, action, user_id, created_on FROM log_entries").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "action", "user_id", "created_on"}).
				AddRow(2, "Login", 1, time.Now()).
				AddRow(1, "Listed clients", nil, time.Now()))

		entries, err := repo.List(ctx, 5)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.NotNil(t, entries[0].UserID)
		assert.Nil(t, entries[1].UserID)
	})
}
