package notify

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"

	"gopkg.in/gomail.v2"
)

type smtpNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewSMTPNotifier(host string, port int, username, password, from, fromName string) Notifier {
	return &smtpNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *smtpNotifier) NotifyRentalSummary(ctx context.Context, client *domain.Client, rentals []domain.Rental) error {
	if err := checkRecipient(client); err != nil {
		return err
	}
	subject, body, err := RenderSummary(client, rentals)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", client.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "DialAndSend", "clientID", client.ID, "host", s.host)
	err = d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "clientID", client.ID)
	if err != nil {
		return fmt.Errorf("%w: smtp: %v", domain.ErrDeliveryFailure, err)
	}
	return nil
}
