// Package occupancy keeps boxes and rentals consistent. A box is occupied
// exactly when one active rental references it, and every operation that
// changes one side changes the other inside the same store transaction.
//
// The engine performs no side effects of its own. Each successful operation
// returns the events it produced so callers can dispatch notifications and
// audit records after the commit.
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/repository"
)

var (
	ErrBoxUnavailable = fmt.Errorf("%w: box invalid or already occupied", domain.ErrInvalidRequest)
	ErrRentalNotOpen  = fmt.Errorf("%w: rental not found or already closed", domain.ErrInvalidRequest)
	ErrRentalNotFound = fmt.Errorf("%w: rental not found", domain.ErrNotFound)
)

type Engine struct {
	boxes   repository.BoxRepository
	rentals repository.RentalRepository
	tx      repository.Transactor
	policy  domain.DeletePolicy
	now     func() time.Time
}

func NewEngine(boxes repository.BoxRepository, rentals repository.RentalRepository, tx repository.Transactor, policy domain.DeletePolicy) *Engine {
	if !policy.Valid() {
		policy = domain.DeletePolicyReleaseIfActive
	}
	return &Engine{
		boxes:   boxes,
		rentals: rentals,
		tx:      tx,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) Policy() domain.DeletePolicy {
	return e.policy
}

// OpenRental rents a free box to a client. The occupancy precondition is
// checked once without locks to fail fast, then again on the locked box row,
// so two concurrent opens on one box cannot both commit.
func (e *Engine) OpenRental(ctx context.Context, clientID, boxID int32) (*domain.Rental, []domain.Event, error) {
	logger.EnterMethod("occupancy.OpenRental", "clientID", clientID, "boxID", boxID)
	if clientID <= 0 || boxID <= 0 {
		err := fmt.Errorf("%w: client id and box id must be positive", domain.ErrInvalidRequest)
		logger.ExitMethodWithError("occupancy.OpenRental", err)
		return nil, nil, err
	}

	box, err := e.boxes.GetByID(ctx, boxID)
	if err != nil {
		err = boxLookupError(err)
		logger.ExitMethodWithError("occupancy.OpenRental", err, "boxID", boxID)
		return nil, nil, err
	}
	if box.Occupied {
		logger.ExitMethodWithError("occupancy.OpenRental", ErrBoxUnavailable, "boxID", boxID)
		return nil, nil, ErrBoxUnavailable
	}

	var rental *domain.Rental
	err = e.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		locked, err := tx.Boxes.GetForUpdate(ctx, boxID)
		if err != nil {
			return boxLookupError(err)
		}
		if locked.Occupied {
			return ErrBoxUnavailable
		}

		rt := &domain.Rental{
			ClientID:  clientID,
			BoxID:     boxID,
			StartedAt: e.now(),
			Active:    true,
		}
		if err := tx.Rentals.Create(ctx, rt); err != nil {
			return err
		}
		if err := tx.Boxes.SetOccupied(ctx, boxID, true); err != nil {
			return err
		}
		rental = rt
		return nil
	})
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("occupancy.OpenRental", err, "clientID", clientID, "boxID", boxID)
		return nil, nil, err
	}

	events := []domain.Event{{
		Kind:       domain.EventRentalOpened,
		RentalID:   rental.ID,
		ClientID:   rental.ClientID,
		BoxID:      rental.BoxID,
		OccurredAt: rental.StartedAt,
	}}
	logger.ExitMethod("occupancy.OpenRental", "rentalID", rental.ID, "boxID", boxID)
	return rental, events, nil
}

// CloseRental ends an active rental and frees its box.
func (e *Engine) CloseRental(ctx context.Context, rentalID int32) (*domain.Rental, []domain.Event, error) {
	logger.EnterMethod("occupancy.CloseRental", "rentalID", rentalID)

	current, err := e.rentals.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = ErrRentalNotOpen
		}
		logger.ExitMethodWithError("occupancy.CloseRental", err, "rentalID", rentalID)
		return nil, nil, err
	}
	if !current.Active {
		logger.ExitMethodWithError("occupancy.CloseRental", ErrRentalNotOpen, "rentalID", rentalID)
		return nil, nil, ErrRentalNotOpen
	}

	var closed *domain.Rental
	err = e.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		locked, err := tx.Rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrRentalNotOpen
			}
			return err
		}
		if !locked.Active {
			return ErrRentalNotOpen
		}

		endedAt := e.now()
		locked.EndedAt = &endedAt
		if err := tx.Rentals.Close(ctx, locked); err != nil {
			return err
		}
		if err := tx.Boxes.SetOccupied(ctx, locked.BoxID, false); err != nil {
			return err
		}
		closed = locked
		return nil
	})
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("occupancy.CloseRental", err, "rentalID", rentalID)
		return nil, nil, err
	}

	events := []domain.Event{{
		Kind:       domain.EventRentalClosed,
		RentalID:   closed.ID,
		ClientID:   closed.ClientID,
		BoxID:      closed.BoxID,
		OccurredAt: *closed.EndedAt,
	}}
	logger.ExitMethod("occupancy.CloseRental", "rentalID", rentalID, "boxID", closed.BoxID)
	return closed, events, nil
}

// DeleteRental removes a rental row. Under DeletePolicyReleaseIfActive the
// box is freed only when the deleted rental held it; under
// DeletePolicyReleaseAlways the box is freed unconditionally.
func (e *Engine) DeleteRental(ctx context.Context, rentalID int32) ([]domain.Event, error) {
	logger.EnterMethod("occupancy.DeleteRental", "rentalID", rentalID, "policy", e.policy)

	if _, err := e.rentals.GetByID(ctx, rentalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = ErrRentalNotFound
		}
		logger.ExitMethodWithError("occupancy.DeleteRental", err, "rentalID", rentalID)
		return nil, err
	}

	var deleted *domain.Rental
	err := e.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		locked, err := tx.Rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrRentalNotFound
			}
			return err
		}
		if err := tx.Rentals.Delete(ctx, rentalID); err != nil {
			return err
		}
		if e.policy == domain.DeletePolicyReleaseAlways || locked.Active {
			if err := tx.Boxes.SetOccupied(ctx, locked.BoxID, false); err != nil {
				return err
			}
		}
		deleted = locked
		return nil
	})
	if err != nil {
		err = classify(err)
		logger.ExitMethodWithError("occupancy.DeleteRental", err, "rentalID", rentalID)
		return nil, err
	}

	events := []domain.Event{{
		Kind:       domain.EventRentalDeleted,
		RentalID:   deleted.ID,
		ClientID:   deleted.ClientID,
		BoxID:      deleted.BoxID,
		OccurredAt: e.now(),
	}}
	logger.ExitMethod("occupancy.DeleteRental", "rentalID", rentalID, "boxID", deleted.BoxID)
	return events, nil
}

// ListRentals returns every rental joined with its client and box.
func (e *Engine) ListRentals(ctx context.Context) ([]domain.Rental, error) {
	return e.rentals.ListWithRelations(ctx)
}

func boxLookupError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ErrBoxUnavailable
	}
	return err
}

// classify makes sure anything the store raised without a domain kind is
// reported as a transaction failure.
func classify(err error) error {
	if domain.ErrorCode(err) == "INTERNAL" {
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailure, err)
	}
	return err
}
