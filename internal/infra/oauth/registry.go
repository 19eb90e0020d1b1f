package oauth

import (
	"log/slog"

	"gatekit/config"
	"gatekit/internal/domain/entity"
	"gatekit/internal/domain/service"
)

// Registry holds the configured provider adapters keyed by provider type.
type Registry struct {
	providers map[entity.ProviderType]service.OAuthProvider
}

// NewRegistry builds the registry from configuration. Providers without
// credentials are simply absent; callers get a not-found on lookup.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	reg := &Registry{providers: make(map[entity.ProviderType]service.OAuthProvider)}
	if cfg.OAuth == nil {
		return reg
	}

	if pc := cfg.OAuth.Google; pc != nil && pc.ClientID != "" {
		reg.providers[entity.ProviderTypeGoogle] = NewGoogleProvider(pc)
	}
	if pc := cfg.OAuth.GitHub; pc != nil && pc.ClientID != "" {
		reg.providers[entity.ProviderTypeGitHub] = NewGitHubProvider(pc)
	}
	if pc := cfg.OAuth.Facebook; pc != nil && pc.ClientID != "" {
		reg.providers[entity.ProviderTypeFacebook] = NewFacebookProvider(pc)
	}
	if pc := cfg.OAuth.Twitter; pc != nil && pc.ClientID != "" {
		reg.providers[entity.ProviderTypeTwitter] = NewTwitterProvider(pc)
	}

	for p := range reg.providers {
		logger.Info("Federated identity provider configured", "provider", string(p))
	}

	return reg
}

// Lookup returns the adapter for a provider, or false when not configured.
func (r *Registry) Lookup(p entity.ProviderType) (service.OAuthProvider, bool) {
	provider, ok := r.providers[p]

	return provider, ok
}
