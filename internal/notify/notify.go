// Package notify delivers the rental summary a client receives after renting
// a box. Every provider reports failures wrapped in domain.ErrDeliveryFailure.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"
)

// Notifier sends a client the summary of its active rentals. rentals carry
// their Box.
type Notifier interface {
	NotifyRentalSummary(ctx context.Context, client *domain.Client, rentals []domain.Rental) error
}

const summarySubject = "Rental report"

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"boxNumber": func(b *domain.Box) string {
		if b == nil {
			return "Box not informed"
		}
		return fmt.Sprintf("%d", b.Number)
	},
}).Parse(`<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 20px; border-radius: 8px;">
      <h2 style="color: #333;">Rental report</h2>
      <p>Hello <strong>{{.Client.Name}}</strong>, these are your active rentals:</p>
      <table style="width: 100%; border-collapse: collapse;">
        <thead>
          <tr style="background-color: #efefef;">
            <th style="text-align: left; border-bottom: 1px solid #ccc;">Start date</th>
            <th style="text-align: left; border-bottom: 1px solid #ccc;">Box</th>
            <th style="text-align: left; border-bottom: 1px solid #ccc;">Status</th>
          </tr>
        </thead>
        <tbody>
          {{- range .Rentals}}{{if .Active}}
          <tr style="border-bottom: 1px solid #eee;">
            <td>{{.StartedAt.Format "2006-01-02"}}</td>
            <td>{{boxNumber .Box}}</td>
            <td style="color: green; font-weight: bold;">Active rental</td>
          </tr>
          {{- end}}{{end}}
        </tbody>
      </table>
      <p style="margin-top: 30px; font-size: 14px; color: #888;">If you have any questions, get in touch with us.</p>
    </div>
  </body>
</html>
`))

// RenderSummary builds the subject and HTML body of a rental summary.
// Inactive rentals are skipped.
func RenderSummary(client *domain.Client, rentals []domain.Rental) (string, string, error) {
	var buf bytes.Buffer
	data := struct {
		Client  *domain.Client
		Rentals []domain.Rental
	}{client, rentals}
	if err := summaryTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render rental summary: %w", err)
	}
	return summarySubject, buf.String(), nil
}

func checkRecipient(client *domain.Client) error {
	if client == nil || strings.TrimSpace(client.Email) == "" {
		return fmt.Errorf("%w: client has no email address", domain.ErrDeliveryFailure)
	}
	return nil
}

// logNotifier only logs. Used in development and when no provider is set.
type logNotifier struct{}

func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) NotifyRentalSummary(ctx context.Context, client *domain.Client, rentals []domain.Rental) error {
	if err := checkRecipient(client); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Rental summary (log provider)", "clientID", client.ID, "to", client.Email, "activeRentals", len(rentals))
	return nil
}
