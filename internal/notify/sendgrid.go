package notify

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string) Notifier {
	return &sendGridNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridNotifier) NotifyRentalSummary(ctx context.Context, client *domain.Client, rentals []domain.Rental) error {
	if err := checkRecipient(client); err != nil {
		return err
	}
	subject, html, err := RenderSummary(client, rentals)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(client.Name, client.Email)
	plain := fmt.Sprintf("Hello %s, you have %d active rental(s).", client.Name, countActive(rentals))
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	logger.ExternalServiceCall("sendgrid", "Send", "clientID", client.ID)
	response, err := sendgrid.NewSendClient(s.apiKey).SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "Send", err, "clientID", client.ID)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", domain.ErrDeliveryFailure, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status %d: %s", domain.ErrDeliveryFailure, response.StatusCode, response.Body)
	}
	return nil
}

func countActive(rentals []domain.Rental) int {
	n := 0
	for _, rt := range rentals {
		if rt.Active {
			n++
		}
	}
	return n
}
