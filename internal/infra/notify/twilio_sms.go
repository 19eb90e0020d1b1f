package notify

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gatekit/config"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// twilioSMS sends text messages via the Twilio REST API.
type twilioSMS struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     *slog.Logger
}

// NewTwilioSMS is the constructor for twilioSMS.
func NewTwilioSMS(cfg *config.Config, logger *slog.Logger) service.SMSSender {
	return &twilioSMS{
		accountSID: cfg.SMS.AccountSID,
		authToken:  cfg.SMS.AuthToken,
		from:       cfg.SMS.From,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Send dispatches a single SMS.
func (s *twilioSMS) Send(ctx context.Context, to, body string) error {
	endpoint := twilioAPIBase + "/Accounts/" + s.accountSID + "/Messages.json"

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", s.from)
	data.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create SMS request")
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to reach SMS gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("SMS gateway rejected send", "status", resp.StatusCode, "to", to)

		return errors.Errorf("sms send failed with status %d", resp.StatusCode)
	}

	s.logger.Debug("SMS sent", "to", to)

	return nil
}
