package service

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type paymentService struct {
	paymentRepo repository.PaymentRepository
}

func NewPaymentService(paymentRepo repository.PaymentRepository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo}
}

func (s *paymentService) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.paymentRepo.ListWithClient(ctx)
}

func (s *paymentService) CreatePayment(ctx context.Context, clientID int32, method domain.PaymentMethod) (*domain.Payment, error) {
	if clientID <= 0 {
		return nil, fmt.Errorf("%w: client id must be positive", domain.ErrInvalidRequest)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: payment method must be CASH, CARD or PIX", domain.ErrInvalidRequest)
	}
	p := &domain.Payment{ClientID: clientID, Method: method}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id int32) error {
	return s.paymentRepo.Delete(ctx, id)
}
