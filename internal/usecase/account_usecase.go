// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account with a
// local password credential.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput defines the data required for a password login. AttemptedURL is
// where the user was headed before authentication intercepted them; it is
// echoed back after a successful two-factor step-up.
type LoginInput struct {
	Email        string
	Password     string
	IP           string
	AttemptedURL string
}

// RefreshInput carries the raw refresh token presented for rotation.
type RefreshInput struct {
	RefreshToken string
}

// ChangePasswordInput defines the data for an authenticated password change.
// CurrentPassword is ignored for accounts that have no password yet.
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the result of a password login. When the account has a
// second factor enabled, TwoFactorRequired is set and ChallengeToken replaces
// the access/refresh pair until the step-up completes.
type LoginOutput struct {
	User              *entity.User
	AccessToken       string
	RefreshToken      string
	TwoFactorRequired bool
	TwoFactorType     entity.TwoFactorType
	ChallengeToken    string
}

// TokenPairOutput returns a freshly rotated access/refresh token pair.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
}

// AccountUsecase defines the interface for local credential account operations.
// This is the contract that the delivery layer depends on.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, input *RefreshInput) (*TokenPairOutput, error)
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
