package auth

import (
	"testing"
	"time"

	"gatekit/config"
	"gatekit/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestJWTConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{ChallengeTTL: 5 * time.Minute},
	}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"

	return cfg
}

func TestJWTService_GenerateAndValidateTokens(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig())
	assert.NoError(t, err)
	assert.NotNil(t, jwtService)

	userID := uuid.New()
	sessionID := uuid.New()

	accessToken, refreshToken, err := jwtService.GenerateTokens(userID, sessionID, true)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	// Validate access token
	accessClaims, err := jwtService.ValidateAccessToken(accessToken)
	assert.NoError(t, err)
	assert.NotNil(t, accessClaims)
	assert.Equal(t, userID, accessClaims.UserID)
	assert.Equal(t, sessionID, accessClaims.SessionID)
	assert.True(t, accessClaims.SecondFactor)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)

	// Validate refresh token
	refreshClaims, err := jwtService.ValidateRefreshToken(refreshToken)
	assert.NoError(t, err)
	assert.NotNil(t, refreshClaims)
	assert.Equal(t, userID, refreshClaims.UserID)
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.Type)
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig())
	assert.NoError(t, err)

	accessToken, refreshToken, err := jwtService.GenerateTokens(uuid.New(), uuid.New(), true)
	assert.NoError(t, err)

	// A refresh token must not validate as an access token and vice versa.
	_, err = jwtService.ValidateAccessToken(refreshToken)
	assert.Error(t, err)
	_, err = jwtService.ValidateRefreshToken(accessToken)
	assert.Error(t, err)
}

func TestJWTService_ChallengeToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig())
	assert.NoError(t, err)

	userID := uuid.New()
	sessionID := uuid.New()

	challenge, err := jwtService.GenerateChallengeToken(userID, sessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, challenge)

	claims, err := jwtService.ValidateChallengeToken(challenge)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.False(t, claims.SecondFactor)
	assert.Equal(t, service.TokenTypeChallenge, claims.Type)

	// A challenge token never passes for an access token.
	_, err = jwtService.ValidateAccessToken(challenge)
	assert.Error(t, err)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig())
	assert.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_MissingSecrets(t *testing.T) {
	cfg := &config.Config{}

	jwtService, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, jwtService)
}
