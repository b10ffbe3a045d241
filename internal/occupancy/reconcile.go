package occupancy

import (
	"context"
	"errors"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/repository"
)

// Reconcile reports boxes whose occupied flag disagrees with their active
// rentals. With repair set, each drifting box whose rentals are unambiguous
// (zero or one active) gets its flag rewritten in its own transaction.
// Boxes with several active rentals are reported but left alone. A box whose
// repair fails does not stop the others; the failures are returned joined.
func (e *Engine) Reconcile(ctx context.Context, repair bool) ([]domain.BoxDrift, error) {
	drift, err := e.boxes.ListOccupancyDrift(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if !repair {
		return drift, nil
	}

	var errs []error
	for _, d := range drift {
		if d.ActiveRentals > 1 {
			logger.Warn("Box has several active rentals, manual repair needed", "boxID", d.BoxID, "activeRentals", d.ActiveRentals)
			continue
		}
		err := e.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
			box, err := tx.Boxes.GetForUpdate(ctx, d.BoxID)
			if err != nil {
				return err
			}
			n, err := tx.Rentals.CountActiveByBox(ctx, d.BoxID)
			if err != nil {
				return err
			}
			want := n == 1
			if n > 1 || box.Occupied == want {
				return nil
			}
			return tx.Boxes.SetOccupied(ctx, d.BoxID, want)
		})
		if err != nil {
			logger.Error("Failed to repair box occupancy", "boxID", d.BoxID, "error", err)
			errs = append(errs, fmt.Errorf("box %d: %w", d.BoxID, classify(err)))
			continue
		}
		logger.Info("Repaired box occupancy", "boxID", d.BoxID, "occupied", d.ActiveRentals == 1)
	}
	return drift, errors.Join(errs...)
}
