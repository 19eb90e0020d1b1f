// Package oauth implements the federated identity provider adapters.
// Each adapter speaks one provider's redirect handshake and normalizes the
// result into an entity.FederatedProfile for the account-linking resolver.
package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

// StateData is the per-handshake context carried across the provider
// redirect: which provider was asked, whether this is a link request for an
// already-authenticated user, and where to send the user afterwards.
type StateData struct {
	Provider     entity.ProviderType
	LinkUserID   *uuid.UUID
	AttemptedURL string

	// PKCEVerifier is the code verifier for providers that require PKCE.
	// Kept with the state so the callback can replay it to Exchange even
	// when it lands on a different instance than the redirect.
	PKCEVerifier string
}

// NewPKCEVerifier returns a fresh code verifier for a single handshake.
func NewPKCEVerifier() string {
	buf := make([]byte, 32)
	rand.Read(buf)

	return hex.EncodeToString(buf)
}

type stateEntry struct {
	data    StateData
	expires time.Time
}

// StateStore issues and consumes one-time anti-CSRF state parameters.
type StateStore struct {
	mu      sync.Mutex
	entries map[string]stateEntry
}

// NewStateStore is the constructor for StateStore.
func NewStateStore() *StateStore {
	return &StateStore{entries: make(map[string]stateEntry)}
}

// Issue stores the handshake context under a fresh random state parameter.
func (s *StateStore) Issue(data StateData) string {
	buf := make([]byte, 32)
	rand.Read(buf)
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state] = stateEntry{data: data, expires: time.Now().Add(stateTTL)}
	s.cleanupLocked()

	return state
}

// Consume validates and removes a state parameter, returning its handshake
// context. Used states cannot be replayed.
func (s *StateStore) Consume(state string) (StateData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return StateData{}, false
	}
	delete(s.entries, state)

	if time.Now().After(entry.expires) {
		return StateData{}, false
	}

	return entry.data, true
}

func (s *StateStore) cleanupLocked() {
	now := time.Now()
	for state, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, state)
		}
	}
}
