package postgres

import (
	"context"
	"database/sql"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type paymentRepository struct {
	db dbtx
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (client_id, method, created_on) VALUES ($1, $2, $3) RETURNING id`
	p.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, p.ClientID, p.Method, p.CreatedOn).Scan(&p.ID)
	return translateError(err)
}

func (r *paymentRepository) ListWithClient(ctx context.Context) ([]domain.Payment, error) {
	query := `SELECT p.id, p.client_id, p.method, p.created_on,
	                 c.id, c.name, c.phone, c.email, c.plate, c.created_on
	          FROM payments p
	          JOIN clients c ON c.id = p.client_id
	          ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		c := &domain.Client{}
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Method, &p.CreatedOn,
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.Plate, &c.CreatedOn); err != nil {
			return nil, err
		}
		p.Client = c
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res, "payment")
}
