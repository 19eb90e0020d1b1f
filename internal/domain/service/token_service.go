package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type values carried in the "type" claim.
const (
	TokenTypeAccess    = "access"
	TokenTypeRefresh   = "refresh"
	TokenTypeChallenge = "challenge"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID       uuid.UUID `json:"uid"`
	SessionID    uuid.UUID `json:"sid"`
	SecondFactor bool      `json:"sfv"` // Second factor verified (or not required).
	Type         string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access and refresh token pair bound to a session.
	GenerateTokens(userID, sessionID uuid.UUID, secondFactor bool) (accessToken string, refreshToken string, err error)

	// GenerateChallengeToken creates a short-lived token that identifies a
	// step-up pending session. It grants no access on its own.
	GenerateChallengeToken(userID, sessionID uuid.UUID) (string, error)

	// ValidateAccessToken checks an access token and returns its claims.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks a refresh token and returns its claims.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// ValidateChallengeToken checks a step-up challenge token and returns its claims.
	ValidateChallengeToken(tokenString string) (*Claims, error)

	// RefreshTokenDuration returns the configured duration for refresh tokens.
	RefreshTokenDuration() time.Duration
}
