package entity

import (
	"time"

	"github.com/google/uuid"
)

// FederatedIdentity represents a single linked provider credential.
// One row exists per linked provider; (Provider, ProviderUserID) is unique
// across all users, so a provider identity can belong to at most one account.
type FederatedIdentity struct {
	ID             uuid.UUID    // The unique ID for this identity record itself.
	UserID         uuid.UUID    // Links this identity to the User it belongs to.
	Provider       ProviderType // The federated provider, e.g. "github".
	ProviderUserID string       // The user's unique ID at the provider.
	AccessToken    string       // The provider's most recent access token.
	TokenSecret    string       // OAuth1 token secret (Twitter only), empty otherwise.
	CreatedAt      time.Time    // Timestamp of when this identity was linked.
}

// FederatedProfile is the normalized, provider-tagged result of a completed
// identity provider handshake. Each provider adapter maps its own payload
// shape into this union before it reaches the account-linking resolver.
type FederatedProfile struct {
	Provider       ProviderType
	ProviderUserID string
	Email          string // Empty for providers that supply no email (Twitter).
	Username       string // Provider-side handle; used to synthesize Twitter emails.
	DisplayName    string
	Gender         string
	Location       string
	Website        string
	PictureURL     string
	AccessToken    string
	TokenSecret    string
}

// SyntheticEmail returns the email used for account creation. Providers
// without email get a deterministic placeholder derived from the handle,
// matching the "{username}@twitter.com" convention.
func (p *FederatedProfile) SyntheticEmail() string {
	if p.Email != "" {
		return p.Email
	}

	return p.Username + "@" + string(p.Provider) + ".com"
}
