package notify

import (
	"fmt"

	"boxrental-backend/internal/config"
)

// New builds the notifier selected by cfg.Notify.Provider.
func New(cfg *config.Config) (Notifier, error) {
	switch cfg.Notify.Provider {
	case "smtp":
		return NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.Notify.FromName), nil
	case "sendgrid":
		return NewSendGridNotifier(cfg.Notify.SendGridAPIKey, cfg.SMTP.From, cfg.Notify.FromName), nil
	case "log", "":
		return NewLogNotifier(), nil
	}
	return nil, fmt.Errorf("unsupported notify provider: %s", cfg.Notify.Provider)
}
