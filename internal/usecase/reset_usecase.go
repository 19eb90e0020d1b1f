package usecase

import (
	"context"

	"github.com/google/uuid"
)

// ForgotPasswordInput starts a password reset for the account owning Email.
type ForgotPasswordInput struct {
	Email string
}

// ResetPasswordInput redeems a reset token for a new password. UserID and
// Token come from the emailed link.
type ResetPasswordInput struct {
	UserID      uuid.UUID
	Token       string
	NewPassword string
}

// ResetUsecase implements the forgotten-password workflow. Responses never
// reveal whether an email address has an account.
type ResetUsecase interface {
	// Forgot generates a reset token and emails the reset link. Unknown
	// emails succeed silently.
	Forgot(ctx context.Context, input *ForgotPasswordInput) error

	// ValidateToken checks a reset link without consuming it, so the reset
	// form can reject dead links before the user types a password.
	ValidateToken(ctx context.Context, userID uuid.UUID, token string) error

	// Redeem consumes the token and sets the new password. Every previous
	// session is revoked and the user is logged in fresh.
	Redeem(ctx context.Context, input *ResetPasswordInput) (*LoginOutput, error)
}
