package jobs

import (
	"context"
	"time"

	"boxrental-backend/internal/logger"
)

const reconcileTimeout = 5 * time.Minute

// ReconcileOccupancy reports boxes whose occupied flag disagrees with their
// active rentals and, when scheduler.repair_drift is set, rewrites the flag.
func (jr *JobRunner) ReconcileOccupancy() {
	jr.runWithRecovery(JobReconcileOccupancy, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		repair := jr.config.Scheduler.RepairDrift
		drift, err := jr.services.Rental.ReconcileOccupancy(ctx, repair)
		if err != nil {
			logger.Error("Failed to reconcile box occupancy", "error", err)
			if drift == nil {
				return
			}
		}

		for _, d := range drift {
			logger.Warn("Box occupancy drift",
				"box_id", d.BoxID,
				"box_number", d.Number,
				"occupied", d.Occupied,
				"active_rentals", d.ActiveRentals,
				"repair_attempted", repair && d.ActiveRentals <= 1)
		}
		logger.Info("Completed occupancy reconciliation", "drifted_boxes", len(drift), "repair", repair)
	})
}
