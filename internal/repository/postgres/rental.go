package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/repository"
)

type rentalRepository struct {
	db dbtx
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, client_id, box_id, started_at, ended_at, active`

func scanRental(row interface{ Scan(...any) error }, rt *domain.Rental) error {
	var endedAt sql.NullTime
	if err := row.Scan(&rt.ID, &rt.ClientID, &rt.BoxID, &rt.StartedAt, &endedAt, &rt.Active); err != nil {
		return err
	}
	if endedAt.Valid {
		t := endedAt.Time
		rt.EndedAt = &t
	}
	return nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (client_id, box_id, started_at, ended_at, active) VALUES ($1, $2, $3, NULL, $4) RETURNING id`
	logger.StoreCall("INSERT", "rentals", "clientID", rt.ClientID, "boxID", rt.BoxID)
	err := r.db.QueryRowContext(ctx, query, rt.ClientID, rt.BoxID, rt.StartedAt, rt.Active).Scan(&rt.ID)
	logger.StoreResult("INSERT", 1, err, "clientID", rt.ClientID, "boxID", rt.BoxID)
	return translateError(err)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	if err := scanRental(r.db.QueryRowContext(ctx, query, id), rt); err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	if err := scanRental(r.db.QueryRowContext(ctx, query, id), rt); err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

// Close marks an active rental as ended. A rental that is missing or already
// inactive is reported as an invalid request.
func (r *rentalRepository) Close(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET ended_at = $1, active = false WHERE id = $2 AND active`
	logger.StoreCall("UPDATE", "rentals.close", "rentalID", rt.ID)
	res, err := r.db.ExecContext(ctx, query, rt.EndedAt, rt.ID)
	if err != nil {
		logger.StoreResult("UPDATE", 0, err, "rentalID", rt.ID)
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	logger.StoreResult("UPDATE", n, nil, "rentalID", rt.ID)
	if n == 0 {
		return fmt.Errorf("%w: rental not found or already closed", domain.ErrInvalidRequest)
	}
	rt.Active = false
	return nil
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) error {
	logger.StoreCall("DELETE", "rentals", "rentalID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		logger.StoreResult("DELETE", 0, err, "rentalID", id)
		return translateError(err)
	}
	return requireAffected(res, "rental")
}

func (r *rentalRepository) ListWithRelations(ctx context.Context) ([]domain.Rental, error) {
	query := `SELECT r.id, r.client_id, r.box_id, r.started_at, r.ended_at, r.active,
	                 c.id, c.name, c.phone, c.email, c.plate, c.created_on,
	                 b.id, b.number, b.monthly_price_cents, b.occupied, b.created_on
	          FROM rentals r
	          JOIN clients c ON c.id = r.client_id
	          JOIN boxes b ON b.id = r.box_id
	          ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		var endedAt sql.NullTime
		c := &domain.Client{}
		b := &domain.Box{}
		if err := rows.Scan(&rt.ID, &rt.ClientID, &rt.BoxID, &rt.StartedAt, &endedAt, &rt.Active,
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.Plate, &c.CreatedOn,
			&b.ID, &b.Number, &b.MonthlyPriceCents, &b.Occupied, &b.CreatedOn); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			rt.EndedAt = &t
		}
		rt.Client = c
		rt.Box = b
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) CountActiveByBox(ctx context.Context, boxID int32) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE box_id = $1 AND active`, boxID).Scan(&n)
	return n, translateError(err)
}

func (r *rentalRepository) CountActiveByClient(ctx context.Context, clientID int32) (int32, error) {
	var n int32
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE client_id = $1 AND active`, clientID).Scan(&n)
	return n, translateError(err)
}
