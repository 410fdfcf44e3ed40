package utils

import (
	"fmt"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog/log"
)

// EmailService sends transactional email through Postmark. It is used only
// for best-effort admin notifications; a missing token disables it.
type EmailService struct {
	client *postmark.Client
	sender string
	admin  string
}

// NewEmailService builds the service from config. Returns a disabled service
// when no API token is configured, so callers never need a nil check.
func NewEmailService(cfg Config) *EmailService {
	es := &EmailService{sender: cfg.EmailSender, admin: cfg.AdminEmail}
	if cfg.PostmarkToken != "" {
		es.client = postmark.NewClient(cfg.PostmarkToken, "")
	}
	return es
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, body string) error {
	if es.client == nil {
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: body,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NotifyNewOrder emails the configured admin inbox about a freshly placed
// order. Failures are logged and swallowed; this runs after the checkout
// transaction has committed and must never fail it.
func (es *EmailService) NotifyNewOrder(orderID int64, total float64) {
	if es.client == nil || es.admin == "" {
		return
	}
	subject := fmt.Sprintf("New order #%d", orderID)
	body := fmt.Sprintf("A new order #%d was placed. Total: %.2f", orderID, total)
	if err := es.SendEmail(es.admin, subject, body); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("admin order email failed")
	}
}
