package service

import (
	"context"
	"errors"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type boxService struct {
	boxRepo repository.BoxRepository
	tx      repository.Transactor
}

func NewBoxService(boxRepo repository.BoxRepository, tx repository.Transactor) BoxService {
	return &boxService{boxRepo: boxRepo, tx: tx}
}

func (s *boxService) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	return s.boxRepo.List(ctx)
}

func (s *boxService) CreateBox(ctx context.Context, number int32, monthlyPriceCents int64) (*domain.Box, error) {
	if err := validateBox(number, monthlyPriceCents); err != nil {
		return nil, err
	}
	box := &domain.Box{Number: number, MonthlyPriceCents: monthlyPriceCents}
	if err := s.boxRepo.Create(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// UpdateBox changes number and price. Occupancy is not editable here.
func (s *boxService) UpdateBox(ctx context.Context, id, number int32, monthlyPriceCents int64) (*domain.Box, error) {
	if err := validateBox(number, monthlyPriceCents); err != nil {
		return nil, err
	}
	box := &domain.Box{ID: id, Number: number, MonthlyPriceCents: monthlyPriceCents}
	if err := s.boxRepo.Update(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// DeleteBox removes a free box. An occupied box is refused so an active
// rental never loses its box.
func (s *boxService) DeleteBox(ctx context.Context, id int32) (*domain.Box, error) {
	var deleted *domain.Box
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		box, err := tx.Boxes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if box.Occupied {
			return fmt.Errorf("%w: box %d is occupied", domain.ErrInvalidRequest, box.Number)
		}
		if err := tx.Boxes.Delete(ctx, id); err != nil {
			return err
		}
		deleted = box
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func validateBox(number int32, monthlyPriceCents int64) error {
	var errs []error
	if number <= 0 {
		errs = append(errs, errors.New("number must be a positive integer"))
	}
	if monthlyPriceCents <= 0 {
		errs = append(errs, errors.New("monthly price must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}
