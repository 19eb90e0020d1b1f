// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
)

const minPasswordLength = 4

// hashToken derives the storage form of a raw refresh token. SHA-256 keeps
// lookups by hash cheap while never persisting the raw token.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// normalizeEmail lowercases and trims an email for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateSMSCode produces a 6-digit one-time code.
func generateSMSCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "failed to generate sms code")
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generateResetToken produces the 42-hex-character password-reset token.
func generateResetToken() (string, error) {
	buf := make([]byte, 21)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate reset token")
	}

	return hex.EncodeToString(buf), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domainerrors.ErrValidationFailed.WrapMessage("password is too short")
	}

	return nil
}

// sessionIssuer centralizes post-authentication session establishment. Every
// entry point that ends in a logged-in user (password login, federated
// resolve, password-reset redemption) goes through IssueLogin so the
// two-factor step-up interception behaves identically everywhere.
type sessionIssuer struct {
	tokenService service.TokenService
	hasher       service.PasswordHasher
	smsSender    service.SMSSender
	smsCodeTTL   time.Duration
	challengeTTL time.Duration
	logger       *slog.Logger
}

// IssueLogin records the login on the user, and either establishes a fully
// authorized session with a token pair or, when a second factor is enabled,
// a pending session guarded by a short-lived challenge token.
func (iss *sessionIssuer) IssueLogin(ctx context.Context, repoFactory repository.RepositoryFactory, user *entity.User, attemptedURL string) (*usecase.LoginOutput, error) {
	now := time.Now()
	user.LastLoginAt = &now

	if user.TwoFactor.Enabled {
		return iss.issueChallenge(ctx, repoFactory, user, attemptedURL, now)
	}

	session := &entity.Session{
		ID:                   uuid.New(),
		UserID:               user.ID,
		SecondFactorVerified: true,
		AttemptedURL:         attemptedURL,
		ExpiresAt:            now.Add(iss.tokenService.RefreshTokenDuration()),
	}

	accessToken, refreshToken, err := iss.tokenService.GenerateTokens(user.ID, session.ID, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token pair")
	}
	session.TokenHash = hashToken(refreshToken)

	if err := repoFactory.SessionRepo().Create(ctx, session); err != nil {
		return nil, err
	}
	if err := repoFactory.UserRepo().Update(ctx, user); err != nil {
		return nil, err
	}

	return &usecase.LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// issueChallenge creates a step-up pending session. The refresh token pair is
// withheld until the second factor is verified.
func (iss *sessionIssuer) issueChallenge(ctx context.Context, repoFactory repository.RepositoryFactory, user *entity.User, attemptedURL string, now time.Time) (*usecase.LoginOutput, error) {
	session := &entity.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		AttemptedURL: attemptedURL,
		ExpiresAt:    now.Add(iss.challengeTTL),
	}
	if err := repoFactory.SessionRepo().Create(ctx, session); err != nil {
		return nil, err
	}

	challengeToken, err := iss.tokenService.GenerateChallengeToken(user.ID, session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate challenge token")
	}

	if user.TwoFactor.Type == entity.TwoFactorTypeSMS {
		if err := iss.issueSMSCode(ctx, user, now); err != nil {
			return nil, err
		}
	}

	if err := repoFactory.UserRepo().Update(ctx, user); err != nil {
		return nil, err
	}

	return &usecase.LoginOutput{
		User:              user,
		TwoFactorRequired: true,
		TwoFactorType:     user.TwoFactor.Type,
		ChallengeToken:    challengeToken,
	}, nil
}

// issueSMSCode generates, stores and sends a fresh step-up code unless an
// unexpired one is already outstanding.
func (iss *sessionIssuer) issueSMSCode(ctx context.Context, user *entity.User, now time.Time) error {
	if user.TwoFactor.HasPendingSMSCode(now) {
		return nil
	}

	code, err := generateSMSCode()
	if err != nil {
		return err
	}
	codeHash, err := iss.hasher.Hash(code)
	if err != nil {
		return errors.Wrap(err, "failed to hash sms code")
	}

	expires := now.Add(iss.smsCodeTTL)
	user.TwoFactor.PendingSMSHash = codeHash
	user.TwoFactor.PendingSMSExpires = &expires

	phone := user.Profile.Phone
	body := fmt.Sprintf("Your verification code is %s", code)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := iss.smsSender.Send(sendCtx, phone, body); err != nil {
			iss.logger.Error("Failed to send verification sms", slog.Any("error", err))
		}
	}()

	return nil
}
