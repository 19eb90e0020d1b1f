package otp

import (
	"strings"
	"testing"
	"time"

	"gatekit/config"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	return &config.Config{
		TwoFactor: &config.TwoFactorConfig{
			Issuer:               "gatekit-test",
			TOTPPeriod:           30,
			QRSize:               256,
			ErrorCorrectionLevel: "M",
		},
	}
}

func TestTOTPService_GenerateSecret(t *testing.T) {
	svc := NewTOTPService(newTestConfig())

	first, err := svc.GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTOTPService_ProvisioningURI(t *testing.T) {
	svc := NewTOTPService(newTestConfig())

	secret, err := svc.GenerateSecret()
	require.NoError(t, err)

	uri, err := svc.ProvisioningURI(secret, "jane@x.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"))
	assert.Contains(t, uri, "secret="+secret)
	assert.Contains(t, uri, "issuer=gatekit-test")

	// Same secret, same URI: page reloads must not rotate the QR.
	again, err := svc.ProvisioningURI(secret, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, uri, again)

	_, err = svc.ProvisioningURI("", "jane@x.com")
	assert.Error(t, err)
}

func TestTOTPService_Validate(t *testing.T) {
	svc := NewTOTPService(newTestConfig())

	secret, err := svc.GenerateSecret()
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, svc.Validate(code, secret))
	assert.False(t, svc.Validate("000000", secret))
	assert.False(t, svc.Validate("not-a-code", secret))
}

func TestQRCodeService_GeneratePNG(t *testing.T) {
	svc := NewQRCodeService(newTestConfig())

	png, err := svc.GeneratePNG("otpauth://totp/gatekit-test:jane@x.com?secret=ABC")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
