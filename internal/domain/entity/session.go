package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authorized login session. Beyond the hashed refresh
// token it carries the explicit session-state fields the step-up flow needs:
// whether the second factor has been verified yet, and the URL the user was
// trying to reach before being intercepted.
type Session struct {
	ID                   uuid.UUID // The unique ID for this session record.
	UserID               uuid.UUID // Links this session to the User it belongs to.
	TokenHash            string    // SHA-256 hash of the raw refresh token; empty while a step-up challenge is pending.
	SecondFactorVerified bool      // True once the user passed step-up (or has no second factor).
	AttemptedURL         string    // Redirect target captured before step-up interception.
	ExpiresAt            time.Time // When this session expires and becomes invalid.
	CreatedAt            time.Time // When this session was created (i.e., when the user logged in).
}

// LoginAttempt records a single login attempt. Records self-expire after a
// configured TTL. They are inserted for every attempt but not consulted
// before allowing a login; no throttling policy is enforced.
type LoginAttempt struct {
	ID        uuid.UUID
	Email     string
	IP        string
	CreatedAt time.Time
	ExpiresAt time.Time
}
