package service

import (
	"context"

	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
)

type RentalService interface {
	OpenRental(ctx context.Context, actorID, clientID, boxID int32) (*domain.Rental, error)
	CloseRental(ctx context.Context, actorID, rentalID int32) (*domain.Rental, error)
	DeleteRental(ctx context.Context, actorID, rentalID int32) error
	ListRentals(ctx context.Context) ([]domain.Rental, error)
	ReconcileOccupancy(ctx context.Context, repair bool) ([]domain.BoxDrift, error)
}

type BoxService interface {
	ListBoxes(ctx context.Context) ([]domain.Box, error)
	CreateBox(ctx context.Context, number int32, monthlyPriceCents int64) (*domain.Box, error)
	UpdateBox(ctx context.Context, id, number int32, monthlyPriceCents int64) (*domain.Box, error)
	DeleteBox(ctx context.Context, id int32) (*domain.Box, error)
}

type ClientService interface {
	ListClients(ctx context.Context, actor domain.Principal) ([]domain.Client, error)
	CreateClient(ctx context.Context, actor domain.Principal, client *domain.Client) error
	UpdateClient(ctx context.Context, actor domain.Principal, client *domain.Client) error
	DeleteClient(ctx context.Context, actor domain.Principal, id int32) (*domain.Client, error)
	SendRentalReport(ctx context.Context, actor domain.Principal, id int32) error
}

type PaymentService interface {
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, clientID int32, method domain.PaymentMethod) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id int32) error
}

type UserService interface {
	CreateUser(ctx context.Context, name, email, password string, level int16) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Login(ctx context.Context, email, password string) (token string, greeting string, err error)
	ChangePassword(ctx context.Context, actor domain.Principal, current, next string) error
	PromoteUser(ctx context.Context, actor domain.Principal, userID int32, level int16) (*domain.User, error)
}

type AuditService interface {
	ListLogs(ctx context.Context, actor domain.Principal, limit int32) ([]domain.LogEntry, error)
}

// EffectDispatcher hands committed events to whatever delivers their side
// effects. Dispatch must not block on delivery.
type EffectDispatcher interface {
	Dispatch(events ...domain.Event)
}

// recordAudit writes an audit entry and only logs when that fails.
func recordAudit(ctx context.Context, sink audit.Sink, actorID int32, action string) {
	if sink == nil {
		return
	}
	if err := sink.Record(ctx, actorID, action); err != nil {
		logger.DeliveryFailed("audit", err, "actorID", actorID, "action", action)
	}
}
