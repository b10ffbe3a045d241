package service_test

import (
	"context"
	"testing"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository/memory"
	"boxrental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	client := seedClient(t, store)
	svc := service.NewPaymentService(store.Payments)

	t.Run("Rejects unknown method", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, client.ID, domain.PaymentMethod("CHEQUE"))
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("Rejects missing client", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, 0, domain.PaymentMethodCash)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		_, err = svc.CreatePayment(ctx, 99, domain.PaymentMethodCash)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("Create, list and delete", func(t *testing.T) {
		p, err := svc.CreatePayment(ctx, client.ID, domain.PaymentMethodCard)
		require.NoError(t, err)
		assert.NotZero(t, p.ID)

		payments, err := svc.ListPayments(ctx)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		require.NotNil(t, payments[0].Client)
		assert.Equal(t, client.Name, payments[0].Client.Name)

		require.NoError(t, svc.DeletePayment(ctx, p.ID))
		assert.ErrorIs(t, svc.DeletePayment(ctx, p.ID), domain.ErrNotFound)
	})
}
