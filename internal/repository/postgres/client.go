package postgres

import (
	"context"
	"database/sql"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type clientRepository struct {
	db dbtx
}

func NewClientRepository(db *sql.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, name, phone, email, plate, created_on`

func scanClient(row interface{ Scan(...any) error }, c *domain.Client) error {
	return row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Plate, &c.CreatedOn)
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (name, phone, email, plate, created_on) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	c.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email, c.Plate, c.CreatedOn).Scan(&c.ID)
	return translateError(err)
}

func (r *clientRepository) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if err := scanClient(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		return nil, notFound(err, "client")
	}
	return c, nil
}

func (r *clientRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 FOR UPDATE`
	if err := scanClient(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		return nil, notFound(err, "client")
	}
	return c, nil
}

func (r *clientRepository) GetWithActiveRentals(ctx context.Context, id int32) (*domain.Client, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `SELECT r.id, r.client_id, r.box_id, r.started_at, r.ended_at, r.active,
	                 b.id, b.number, b.monthly_price_cents, b.occupied, b.created_on
	          FROM rentals r
	          JOIN boxes b ON b.id = r.box_id
	          WHERE r.client_id = $1 AND r.active
	          ORDER BY r.started_at`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var rt domain.Rental
		var endedAt sql.NullTime
		b := &domain.Box{}
		if err := rows.Scan(&rt.ID, &rt.ClientID, &rt.BoxID, &rt.StartedAt, &endedAt, &rt.Active,
			&b.ID, &b.Number, &b.MonthlyPriceCents, &b.Occupied, &b.CreatedOn); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			rt.EndedAt = &t
		}
		rt.Box = b
		c.Rentals = append(c.Rentals, rt)
	}
	return c, rows.Err()
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := scanClient(rows, &c); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = $1, phone = $2, email = $3, plate = $4 WHERE id = $5 RETURNING created_on`
	if err := r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email, c.Plate, c.ID).Scan(&c.CreatedOn); err != nil {
		return notFound(err, "client")
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res, "client")
}
