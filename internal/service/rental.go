package service

import (
	"context"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/metrics"
	"boxrental-backend/internal/occupancy"
)

type rentalService struct {
	engine  *occupancy.Engine
	effects EffectDispatcher
}

func NewRentalService(engine *occupancy.Engine, effects EffectDispatcher) RentalService {
	return &rentalService{
		engine:  engine,
		effects: effects,
	}
}

func (s *rentalService) OpenRental(ctx context.Context, actorID, clientID, boxID int32) (*domain.Rental, error) {
	rental, events, err := s.engine.OpenRental(ctx, clientID, boxID)
	metrics.RecordTransition("open", err)
	if err != nil {
		return nil, err
	}
	s.dispatch(actorID, events)
	return rental, nil
}

func (s *rentalService) CloseRental(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error) {
	rental, events, err := s.engine.CloseRental(ctx, rentalID)
	metrics.RecordTransition("close", err)
	if err != nil {
		return nil, err
	}
	s.dispatch(actorID, events)
	return rental, nil
}

func (s *rentalService) DeleteRental(ctx context.Context, actorID, rentalID int32) error {
	events, err := s.engine.DeleteRental(ctx, rentalID)
	metrics.RecordTransition("delete", err)
	if err != nil {
		return err
	}
	s.dispatch(actorID, events)
	return nil
}

func (s *rentalService) ListRentals(ctx context.Context) ([]domain.Rental, error) {
	return s.engine.ListRentals(ctx)
}

func (s *rentalService) ReconcileOccupancy(ctx context.Context, repair bool) ([]domain.BoxDrift, error) {
	drift, err := s.engine.Reconcile(ctx, repair)
	if drift == nil && err != nil {
		return nil, err
	}
	metrics.OccupancyDriftBoxes.Set(float64(len(drift)))
	return drift, err
}

// dispatch runs after the commit; nothing it does can change the result
// already decided for the caller.
func (s *rentalService) dispatch(actorID int32, events []domain.Event) {
	if s.effects == nil || len(events) == 0 {
		return
	}
	for i := range events {
		events[i].ActorID = actorID
	}
	s.effects.Dispatch(events...)
}
