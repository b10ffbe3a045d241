package service

import (
	"context"
	"fmt"

	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/notify"
	"boxrental-backend/internal/repository"
	"boxrental-backend/internal/security"
)

type clientService struct {
	clientRepo repository.ClientRepository
	tx         repository.Transactor
	notifier   notify.Notifier
	audit      audit.Sink
}

func NewClientService(clientRepo repository.ClientRepository, tx repository.Transactor, notifier notify.Notifier, sink audit.Sink) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		tx:         tx,
		notifier:   notifier,
		audit:      sink,
	}
}

func (s *clientService) ListClients(ctx context.Context, actor domain.Principal) ([]domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, actor.ID, "Listed clients")
	return clients, nil
}

func (s *clientService) CreateClient(ctx context.Context, actor domain.Principal, client *domain.Client) error {
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, actor.ID, "Created client")
	return nil
}

func (s *clientService) UpdateClient(ctx context.Context, actor domain.Principal, client *domain.Client) error {
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, actor.ID, fmt.Sprintf("Updated client %d", client.ID))
	return nil
}

// DeleteClient needs an admin and refuses clients that still hold a box.
// Their rental history and payments go with them.
func (s *clientService) DeleteClient(ctx context.Context, actor domain.Principal, id int32) (*domain.Client, error) {
	if err := security.Require(actor, domain.LevelAdmin); err != nil {
		return nil, fmt.Errorf("%w: only level 3 users can delete clients", domain.ErrForbidden)
	}

	var deleted *domain.Client
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		client, err := tx.Clients.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		active, err := tx.Rentals.CountActiveByClient(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: client has %d active rental(s)", domain.ErrInvalidRequest, active)
		}
		if err := tx.Clients.Delete(ctx, id); err != nil {
			return err
		}
		deleted = client
		return nil
	})
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, actor.ID, fmt.Sprintf("Deleted client %d", id))
	return deleted, nil
}

// SendRentalReport mails the client its active rentals right away. Unlike the
// post-commit summary, a delivery failure here is the caller's result.
func (s *clientService) SendRentalReport(ctx context.Context, actor domain.Principal, id int32) error {
	client, err := s.clientRepo.GetWithActiveRentals(ctx, id)
	if err != nil {
		return err
	}
	if err := s.notifier.NotifyRentalSummary(ctx, client, client.Rentals); err != nil {
		logger.DeliveryFailed("notification", err, "clientID", id)
		return err
	}
	recordAudit(ctx, s.audit, actor.ID, fmt.Sprintf("Sent rental report to client %d", id))
	return nil
}
