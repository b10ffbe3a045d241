package repository

import (
	"context"

	"boxrental-backend/internal/domain"
)

type BoxRepository interface {
	Create(ctx context.Context, box *domain.Box) error
	GetByID(ctx context.Context, id int32) (*domain.Box, error)
	// GetForUpdate reads the box and holds a row lock until the enclosing
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetForUpdate(ctx context.Context, id int32) (*domain.Box, error)
	List(ctx context.Context) ([]domain.Box, error)
	// Update writes number and price only; occupancy goes through SetOccupied.
	Update(ctx context.Context, box *domain.Box) error
	SetOccupied(ctx context.Context, id int32, occupied bool) error
	Delete(ctx context.Context, id int32) error
	ListOccupancyDrift(ctx context.Context) ([]domain.BoxDrift, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetForUpdate(ctx context.Context, id int32) (*domain.Rental, error)
	Close(ctx context.Context, rental *domain.Rental) error
	Delete(ctx context.Context, id int32) error
	ListWithRelations(ctx context.Context) ([]domain.Rental, error)
	CountActiveByBox(ctx context.Context, boxID int32) (int32, error)
	CountActiveByClient(ctx context.Context, clientID int32) (int32, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int32) (*domain.Client, error)
	// GetForUpdate locks the client row, which blocks new rentals referencing
	// it until the transaction ends.
	GetForUpdate(ctx context.Context, id int32) (*domain.Client, error)
	// GetWithActiveRentals loads the client with its active rentals, each
	// joined with its box.
	GetWithActiveRentals(ctx context.Context, id int32) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id int32) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListWithClient(ctx context.Context) ([]domain.Payment, error)
	Delete(ctx context.Context, id int32) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id int32, hash string) error
	UpdateLevel(ctx context.Context, id int32, level int16) error
	TouchLastLogin(ctx context.Context, id int32) error
}

type LogRepository interface {
	Create(ctx context.Context, entry *domain.LogEntry) error
	List(ctx context.Context, limit int32) ([]domain.LogEntry, error)
}

// TxRepositories are the repositories bound to one transaction. Everything
// written through them commits or rolls back together.
type TxRepositories struct {
	Boxes   BoxRepository
	Rentals RentalRepository
	Clients ClientRepository
}

// Transactor runs fn inside a single store transaction. A nil return commits;
// any error rolls back and is returned to the caller.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
