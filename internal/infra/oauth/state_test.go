package oauth

import (
	"net/url"
	"testing"

	"gatekit/config"
	"gatekit/internal/domain/entity"
	"gatekit/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_IssueAndConsume(t *testing.T) {
	store := NewStateStore()
	linkID := uuid.New()

	verifier := NewPKCEVerifier()
	state := store.Issue(StateData{
		Provider:     entity.ProviderTypeGitHub,
		LinkUserID:   &linkID,
		AttemptedURL: "/account/profile",
		PKCEVerifier: verifier,
	})
	require.NotEmpty(t, state)

	data, ok := store.Consume(state)
	require.True(t, ok)
	assert.Equal(t, entity.ProviderTypeGitHub, data.Provider)
	require.NotNil(t, data.LinkUserID)
	assert.Equal(t, linkID, *data.LinkUserID)
	assert.Equal(t, "/account/profile", data.AttemptedURL)
	assert.Equal(t, verifier, data.PKCEVerifier)
}

func TestStateStore_ConsumeIsOneShot(t *testing.T) {
	store := NewStateStore()

	state := store.Issue(StateData{Provider: entity.ProviderTypeGoogle})

	_, ok := store.Consume(state)
	require.True(t, ok)

	_, ok = store.Consume(state)
	assert.False(t, ok)
}

func TestStateStore_UnknownState(t *testing.T) {
	store := NewStateStore()

	_, ok := store.Consume("nonexistent")
	assert.False(t, ok)
}

func TestStateStore_StatesAreUnique(t *testing.T) {
	store := NewStateStore()

	first := store.Issue(StateData{Provider: entity.ProviderTypeGoogle})
	second := store.Issue(StateData{Provider: entity.ProviderTypeGoogle})

	assert.NotEqual(t, first, second)
}

func TestProvider_AuthorizationURLCarriesState(t *testing.T) {
	cfg := &config.OAuthProviderConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "https://example.com/callback",
	}

	providers := []service.OAuthProvider{
		NewGoogleProvider(cfg),
		NewGitHubProvider(cfg),
		NewFacebookProvider(cfg),
		NewTwitterProvider(cfg),
	}
	for _, provider := range providers {
		t.Run(string(provider.Provider()), func(t *testing.T) {
			authURL := provider.AuthorizationURL("abc123", NewPKCEVerifier())
			assert.Contains(t, authURL, "state=abc123")
			assert.Contains(t, authURL, "client_id=id")
		})
	}
}

func TestNewPKCEVerifier_UniquePerHandshake(t *testing.T) {
	assert.NotEqual(t, NewPKCEVerifier(), NewPKCEVerifier())
}

func TestTwitterProvider_AuthorizationURLDerivesChallengeFromVerifier(t *testing.T) {
	provider := NewTwitterProvider(&config.OAuthProviderConfig{
		ClientID:    "id",
		RedirectURI: "https://example.com/callback",
	})

	verifier := NewPKCEVerifier()
	authURL, err := url.Parse(provider.AuthorizationURL("abc123", verifier))
	require.NoError(t, err)

	query := authURL.Query()
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.Equal(t, pkceChallenge(verifier), query.Get("code_challenge"))

	otherURL, err := url.Parse(provider.AuthorizationURL("abc123", NewPKCEVerifier()))
	require.NoError(t, err)
	assert.NotEqual(t, query.Get("code_challenge"), otherURL.Query().Get("code_challenge"),
		"each handshake must carry its own challenge")
}
