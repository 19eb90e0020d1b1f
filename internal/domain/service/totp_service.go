package service

// TOTPService defines the interface for time-based one-time password
// generation and verification against a shared secret.
type TOTPService interface {
	// GenerateSecret produces a new random base32-encoded shared secret.
	GenerateSecret() (string, error)

	// ProvisioningURI builds the otpauth:// URI for an authenticator app,
	// deterministic for a given secret so the QR can be re-displayed.
	ProvisioningURI(secret, accountName string) (string, error)

	// Validate checks a submitted code against the secret, tolerating
	// adjacent time windows.
	Validate(code, secret string) bool

	// Period returns the configured TOTP period in seconds.
	Period() uint
}

// QRCodeService renders content (e.g. an otpauth:// provisioning URI) as a
// PNG QR code.
type QRCodeService interface {
	GeneratePNG(content string) ([]byte, error)
}
