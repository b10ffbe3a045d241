package postgres

import (
	"context"
	"database/sql"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type userRepository struct {
	db dbtx
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, level, last_login_at, created_on`

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Level, &lastLogin, &u.CreatedOn); err != nil {
		return err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, level, created_on) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	u.CreatedOn = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Level, u.CreatedOn).Scan(&u.ID)
	return translateError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), u); err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), u); err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int32, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res, "user")
}

func (r *userRepository) UpdateLevel(ctx context.Context, id int32, level int16) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET level = $1 WHERE id = $2`, level, id)
	if err != nil {
		return translateError(err)
	}
	return requireAffected(res, "user")
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	return translateError(err)
}
