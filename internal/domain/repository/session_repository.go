package repository

import (
	"context"
	"errors"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session is not found.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the standard operations for session persistence.
type SessionRepository interface {
	// Create persists a new session, representing a (possibly step-up pending) login.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindByTokenHash retrieves a session by its securely stored refresh token hash.
	FindByTokenHash(ctx context.Context, hash string) (*entity.Session, error)

	// Update modifies an existing session (token rotation, step-up verification).
	Update(ctx context.Context, session *entity.Session) error

	// DeleteByTokenHash deletes a session by its token hash, effectively logging out.
	DeleteByTokenHash(ctx context.Context, hash string) error

	// DeleteByUserID removes every session belonging to a user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// LoginAttemptRepository records login attempts. Records carry a TTL and are
// write-only from the application's perspective.
type LoginAttemptRepository interface {
	// Create inserts a login attempt record.
	Create(ctx context.Context, attempt *entity.LoginAttempt) error

	// DeleteExpired removes attempts past their TTL, returning how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
