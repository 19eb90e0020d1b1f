// Package notify implements the mail and SMS sender domain services against
// third-party gateway HTTP APIs.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gatekit/config"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

const brevoSendURL = "https://api.brevo.com/v3/smtp/email"

// brevoMailer sends transactional emails via the Brevo (Sendinblue) HTTP API v3.
type brevoMailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
	logger      *slog.Logger
}

// NewBrevoMailer is the constructor for brevoMailer.
func NewBrevoMailer(cfg *config.Config, logger *slog.Logger) service.MailSender {
	return &brevoMailer{
		apiKey:      cfg.Mail.APIKey,
		senderEmail: cfg.Mail.SenderEmail,
		senderName:  cfg.Mail.SenderName,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// Send dispatches a single transactional email. The gateway call is bounded
// by the client timeout so it can never block session establishment.
func (m *brevoMailer) Send(ctx context.Context, msg *service.MailMessage) error {
	payload := map[string]any{
		"sender":      map[string]string{"name": m.senderName, "email": m.senderEmail},
		"to":          []map[string]string{{"email": msg.To}},
		"subject":     msg.Subject,
		"textContent": msg.Text,
	}
	if msg.HTML != "" {
		payload["htmlContent"] = msg.HTML
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return errors.Wrap(err, "failed to encode mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoSendURL, &body)
	if err != nil {
		return errors.Wrap(err, "failed to create mail request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to reach mail gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Warn("Mail gateway rejected send", "status", resp.StatusCode, "to", msg.To)

		return errors.Errorf("mail send failed with status %d", resp.StatusCode)
	}

	m.logger.Debug("Mail sent", "to", msg.To, "subject", msg.Subject)

	return nil
}
