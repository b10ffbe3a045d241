package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/repository"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repository can run
// standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.BoxRepository
	repository.RentalRepository
	repository.ClientRepository
	repository.PaymentRepository
	repository.UserRepository
	repository.LogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		BoxRepository:     NewBoxRepository(db),
		RentalRepository:  NewRentalRepository(db),
		ClientRepository:  NewClientRepository(db),
		PaymentRepository: NewPaymentRepository(db),
		UserRepository:    NewUserRepository(db),
		LogRepository:     NewLogRepository(db),
	}
}

// DB exposes the underlying pool for jobs that issue ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithinTx runs fn in a READ COMMITTED transaction. Row locks taken through
// GetForUpdate serialize writers on the same box or rental.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	logger.StoreCall("BEGIN", "read committed")
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.StoreResult("BEGIN", 0, err)
		return fmt.Errorf("%w: could not begin transaction", domain.ErrTransactionFailure)
	}
	defer tx.Rollback()

	repos := repository.TxRepositories{
		Boxes:   &boxRepository{db: tx},
		Rentals: &rentalRepository{db: tx},
		Clients: &clientRepository{db: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		logger.StoreResult("COMMIT", 0, err)
		kind := translateError(err)
		if !errors.Is(kind, domain.ErrTransactionFailure) {
			kind = fmt.Errorf("%w: %v", domain.ErrTransactionFailure, kind)
		}
		return fmt.Errorf("commit: %w", kind)
	}
	logger.StoreResult("COMMIT", 0, nil)
	return nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
)

// translateError maps driver errors onto the domain taxonomy. Errors that
// carry a domain kind already pass through. Driver messages and constraint
// names stay in the log; the returned text is safe to show to clients.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	logger.Warn("Store error", "code", string(pqErr.Code), "constraint", pqErr.Constraint, "table", pqErr.Table, "message", pqErr.Message)

	switch pqErr.Code {
	case codeUniqueViolation:
		switch pqErr.Constraint {
		case "rentals_one_active_per_box":
			return fmt.Errorf("%w: box invalid or already occupied", domain.ErrInvalidRequest)
		case "boxes_number_key":
			return fmt.Errorf("%w: box number already in use", domain.ErrInvalidRequest)
		case "users_email_key":
			return fmt.Errorf("%w: email already registered", domain.ErrInvalidRequest)
		}
		return fmt.Errorf("%w: conflicting write", domain.ErrTransactionFailure)
	case codeForeignKeyViolation:
		if entity, ok := referencedEntity[pqErr.Constraint]; ok {
			return fmt.Errorf("%w: referenced record does not exist (%s)", domain.ErrInvalidRequest, entity)
		}
		return fmt.Errorf("%w: referenced record does not exist", domain.ErrInvalidRequest)
	case codeCheckViolation:
		return fmt.Errorf("%w: value out of the allowed range", domain.ErrInvalidRequest)
	case codeSerializationFail, codeDeadlockDetected:
		return fmt.Errorf("%w: concurrent update", domain.ErrTransactionFailure)
	}
	return fmt.Errorf("%w: store error", domain.ErrTransactionFailure)
}

// referencedEntity names the parent row behind each foreign key.
var referencedEntity = map[string]string{
	"rentals_client_id_fkey":   "client",
	"rentals_box_id_fkey":      "box",
	"payments_client_id_fkey":  "client",
	"log_entries_user_id_fkey": "user",
}

// notFound wraps a missing-row error with the entity name.
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, entity)
	}
	return translateError(err)
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, entity)
	}
	return nil
}
