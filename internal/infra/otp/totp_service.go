// Package otp implements the time-based one-time password domain service
// on top of the pquerna/otp library.
package otp

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"gatekit/config"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

type totpService struct {
	issuer string
	period uint
}

// NewTOTPService is the constructor for totpService.
func NewTOTPService(cfg *config.Config) service.TOTPService {
	return &totpService{
		issuer: cfg.TwoFactor.Issuer,
		period: cfg.TwoFactor.TOTPPeriod,
	}
}

// GenerateSecret produces a new random base32-encoded shared secret.
func (s *totpService) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: "pending",
		Period:      s.period,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to generate TOTP secret")
	}

	return key.Secret(), nil
}

// ProvisioningURI builds the otpauth:// URI for an authenticator app.
// The URI is deterministic for a given secret, so enrollment page reloads
// re-display the same QR instead of rotating the secret.
func (s *totpService) ProvisioningURI(secret, accountName string) (string, error) {
	if secret == "" {
		return "", errors.New("empty TOTP secret")
	}

	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", s.issuer)
	params.Set("period", strconv.FormatUint(uint64(s.period), 10))
	params.Set("algorithm", otp.AlgorithmSHA1.String())
	params.Set("digits", otp.DigitsSix.String())

	uri := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + s.issuer + ":" + accountName,
		RawQuery: params.Encode(),
	}

	return uri.String(), nil
}

// Validate checks a submitted code against the secret, tolerating one
// adjacent time window on either side.
func (s *totpService) Validate(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    s.period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && ok
}

// Period returns the configured TOTP period in seconds.
func (s *totpService) Period() uint {
	return s.period
}
