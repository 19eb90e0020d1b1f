package impl

import (
	"io"
	"log/slog"
	"time"

	"gatekit/config"
)

// newDiscardLogger returns a logger that swallows all output, keeping test
// runs quiet.
func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestConfig returns a config with the auth knobs the services read.
func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:      5,
			ResetTokenTTL:   4 * time.Hour,
			SMSCodeTTL:      5 * time.Minute,
			ChallengeTTL:    5 * time.Minute,
			LoginAttemptTTL: time.Hour,
		},
		Mail: &config.MailConfig{
			BaseURL: "https://app.example.com",
		},
	}
}
