package postgres

import (
	"context"
	"database/sql"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/repository"
)

type boxRepository struct {
	db dbtx
}

func NewBoxRepository(db *sql.DB) repository.BoxRepository {
	return &boxRepository{db: db}
}

const boxColumns = `id, number, monthly_price_cents, occupied, created_on`

func scanBox(row interface{ Scan(...any) error }, b *domain.Box) error {
	return row.Scan(&b.ID, &b.Number, &b.MonthlyPriceCents, &b.Occupied, &b.CreatedOn)
}

func (r *boxRepository) Create(ctx context.Context, b *domain.Box) error {
	query := `INSERT INTO boxes (number, monthly_price_cents, occupied, created_on) VALUES ($1, $2, false, $3) RETURNING id`
	b.Occupied = false
	b.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, b.Number, b.MonthlyPriceCents, b.CreatedOn).Scan(&b.ID)
	return translateError(err)
}

func (r *boxRepository) GetByID(ctx context.Context, id int32) (*domain.Box, error) {
	b := &domain.Box{}
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE id = $1`
	if err := scanBox(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		return nil, notFound(err, "box")
	}
	return b, nil
}

func (r *boxRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Box, error) {
	b := &domain.Box{}
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE id = $1 FOR UPDATE`
	logger.StoreCall("SELECT FOR UPDATE", "boxes", "boxID", id)
	if err := scanBox(r.db.QueryRowContext(ctx, query, id), b); err != nil {
		logger.StoreResult("SELECT FOR UPDATE", 0, err, "boxID", id)
		return nil, notFound(err, "box")
	}
	logger.StoreResult("SELECT FOR UPDATE", 1, nil, "boxID", id, "occupied", b.Occupied)
	return b, nil
}

func (r *boxRepository) List(ctx context.Context) ([]domain.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes ORDER BY number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var boxes []domain.Box
	for rows.Next() {
		var b domain.Box
		if err := scanBox(rows, &b); err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

func (r *boxRepository) Update(ctx context.Context, b *domain.Box) error {
	query := `UPDATE boxes SET number = $1, monthly_price_cents = $2 WHERE id = $3 RETURNING occupied, created_on`
	err := r.db.QueryRowContext(ctx, query, b.Number, b.MonthlyPriceCents, b.ID).Scan(&b.Occupied, &b.CreatedOn)
	if err != nil {
		return notFound(err, "box")
	}
	return nil
}

func (r *boxRepository) SetOccupied(ctx context.Context, id int32, occupied bool) error {
	query := `UPDATE boxes SET occupied = $1 WHERE id = $2`
	logger.StoreCall("UPDATE", "boxes.occupied", "boxID", id, "occupied", occupied)
	res, err := r.db.ExecContext(ctx, query, occupied, id)
	if err != nil {
		logger.StoreResult("UPDATE", 0, err, "boxID", id)
		return translateError(err)
	}
	if err := requireAffected(res, "box"); err != nil {
		logger.StoreResult("UPDATE", 0, err, "boxID", id)
		return err
	}
	logger.StoreResult("UPDATE", 1, nil, "boxID", id)
	return nil
}

func (r *boxRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boxes WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res, "box")
}

func (r *boxRepository) ListOccupancyDrift(ctx context.Context) ([]domain.BoxDrift, error) {
	query := `SELECT b.id, b.number, b.occupied, COUNT(r.id) AS active_rentals
	          FROM boxes b
	          LEFT JOIN rentals r ON r.box_id = b.id AND r.active
	          GROUP BY b.id, b.number, b.occupied
	          HAVING (b.occupied AND COUNT(r.id) <> 1) OR (NOT b.occupied AND COUNT(r.id) > 0)
	          ORDER BY b.number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var drift []domain.BoxDrift
	for rows.Next() {
		var d domain.BoxDrift
		if err := rows.Scan(&d.BoxID, &d.Number, &d.Occupied, &d.ActiveRentals); err != nil {
			return nil, err
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}
