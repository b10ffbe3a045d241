package postgres

import (
	"context"
	"database/sql"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type logRepository struct {
	db dbtx
}

func NewLogRepository(db *sql.DB) repository.LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(ctx context.Context, e *domain.LogEntry) error {
	query := `INSERT INTO log_entries (action, user_id, created_on) VALUES ($1, $2, $3) RETURNING id`
	e.CreatedOn = time.Now().UTC()
	return translateError(r.db.QueryRowContext(ctx, query, e.Action, e.UserID, e.CreatedOn).Scan(&e.ID))
}

func (r *logRepository) List(ctx context.Context, limit int32) ([]domain.LogEntry, error) {
	query := `SELECT id, action, user_id, created_on FROM log_entries ORDER BY id DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var userID sql.NullInt32
		if err := rows.Scan(&e.ID, &e.Action, &userID, &e.CreatedOn); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := userID.Int32
			e.UserID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
