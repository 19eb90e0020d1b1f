package service

import (
	"context"

	"gatekit/internal/domain/entity"
)

// OAuthProvider abstracts a single federated identity provider's redirect
// handshake. Each implementation normalizes the provider's payload into an
// entity.FederatedProfile before it reaches the account-linking resolver.
type OAuthProvider interface {
	// Provider returns the provider this adapter speaks for.
	Provider() entity.ProviderType

	// AuthorizationURL builds the provider's authorization redirect URL,
	// embedding the given anti-CSRF state parameter. Providers that require
	// PKCE derive the code challenge from the per-handshake verifier; the
	// rest ignore it.
	AuthorizationURL(state, pkceVerifier string) string

	// Exchange trades an authorization code for an access token. The
	// verifier must be the one the matching AuthorizationURL was built with.
	Exchange(ctx context.Context, code, pkceVerifier string) (string, error)

	// FetchProfile retrieves and normalizes the authenticated user's profile.
	FetchProfile(ctx context.Context, accessToken string) (*entity.FederatedProfile, error)
}
