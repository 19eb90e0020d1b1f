package usecase

import (
	"context"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// SetupTOTPOutput returns the provisioning material for an authenticator app.
// The QR code PNG encodes the otpauth URI.
type SetupTOTPOutput struct {
	Secret          string
	ProvisioningURI string
	QRCodePNG       []byte
}

// ConfirmCodeInput finalizes a pending enrollment with a code the user read
// from their authenticator app or received by SMS.
type ConfirmCodeInput struct {
	UserID uuid.UUID
	Code   string
}

// SetupSMSInput starts SMS enrollment for a phone number.
type SetupSMSInput struct {
	UserID uuid.UUID
	Phone  string
}

// VerifyChallengeInput completes a login step-up. ChallengeToken is the
// short-lived token issued at password login; Code is the second factor.
type VerifyChallengeInput struct {
	ChallengeToken string
	Code           string
}

// VerifyChallengeOutput returns the token pair withheld at login plus the
// URL the user was originally trying to reach.
type VerifyChallengeOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	AttemptedURL string
}

// TwoFactorUsecase manages second-factor enrollment and login step-up.
type TwoFactorUsecase interface {
	// SetupTOTP generates (or re-displays) the TOTP secret and QR code.
	// Idempotent until confirmed: repeat calls return the same secret.
	SetupTOTP(ctx context.Context, userID uuid.UUID) (*SetupTOTPOutput, error)

	// ConfirmTOTP verifies a code against the pending secret and enables
	// TOTP as the account's second factor.
	ConfirmTOTP(ctx context.Context, input *ConfirmCodeInput) error

	// SetupSMS sends a verification code to the phone number. While an
	// unexpired code is outstanding the same enrollment stays pending.
	SetupSMS(ctx context.Context, input *SetupSMSInput) error

	// ConfirmSMS verifies the received code and enables SMS as the
	// account's second factor.
	ConfirmSMS(ctx context.Context, input *ConfirmCodeInput) error

	// Disable turns the second factor off immediately.
	Disable(ctx context.Context, userID uuid.UUID) error

	// VerifyChallenge completes a pending login step-up and releases the
	// withheld token pair.
	VerifyChallenge(ctx context.Context, input *VerifyChallengeInput) (*VerifyChallengeOutput, error)

	// ResendChallenge sends a fresh SMS code for a pending step-up. TOTP
	// accounts have nothing to resend.
	ResendChallenge(ctx context.Context, challengeToken string) error
}
