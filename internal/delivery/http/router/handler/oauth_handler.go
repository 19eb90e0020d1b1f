package handler

import (
	"log/slog"
	"net/http"

	"gatekit/internal/delivery/http/middleware"
	"gatekit/internal/delivery/http/response"
	"gatekit/internal/domain/entity"
	"gatekit/internal/infra/oauth"
	"gatekit/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OAuthHandler drives the federated identity provider handshakes: the
// redirect out to the provider, and the callback that lands in the
// account-linking resolver.
type OAuthHandler struct {
	uc         usecase.FederatedUsecase
	registry   *oauth.Registry
	stateStore *oauth.StateStore
	logger     *slog.Logger
}

// NewOAuthHandler is the constructor for OAuthHandler, injected by Fx.
func NewOAuthHandler(uc usecase.FederatedUsecase, registry *oauth.Registry, stateStore *oauth.StateStore, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		uc:         uc,
		registry:   registry,
		stateStore: stateStore,
		logger:     logger,
	}
}

func (h *OAuthHandler) provider(c echo.Context) (entity.ProviderType, error) {
	providerType, ok := entity.ParseProvider(c.Param("provider"))
	if !ok {
		return "", response.NotFound(c, "UNKNOWN_PROVIDER", "Unknown identity provider")
	}
	if _, configured := h.registry.Lookup(providerType); !configured {
		return "", response.NotFound(c, "PROVIDER_NOT_CONFIGURED", "Identity provider is not configured")
	}

	return providerType, nil
}

// Begin initiates a provider login handshake.
func (h *OAuthHandler) Begin(c echo.Context) error {
	providerType, err := h.provider(c)
	if err != nil {
		return err
	}
	provider, _ := h.registry.Lookup(providerType)

	verifier := oauth.NewPKCEVerifier()
	state := h.stateStore.Issue(oauth.StateData{
		Provider:     providerType,
		AttemptedURL: c.QueryParam("attemptedUrl"),
		PKCEVerifier: verifier,
	})
	authURL := provider.AuthorizationURL(state, verifier)

	if c.QueryParam("redirect") == "true" {
		return c.Redirect(http.StatusTemporaryRedirect, authURL)
	}

	return response.Success(c, http.StatusOK, map[string]string{"authorizationUrl": authURL}, "Authorization URL generated")
}

// Link initiates a provider handshake that attaches the identity to the
// authenticated account instead of logging in.
func (h *OAuthHandler) Link(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	providerType, err := h.provider(c)
	if err != nil {
		return err
	}
	provider, _ := h.registry.Lookup(providerType)

	verifier := oauth.NewPKCEVerifier()
	state := h.stateStore.Issue(oauth.StateData{
		Provider:     providerType,
		LinkUserID:   &userID,
		PKCEVerifier: verifier,
	})

	return response.Success(c, http.StatusOK, map[string]string{
		"authorizationUrl": provider.AuthorizationURL(state, verifier),
	}, "Authorization URL generated")
}

// Callback completes a provider handshake. The state parameter decides
// whether this resolves into a login or an identity link.
func (h *OAuthHandler) Callback(c echo.Context) error {
	providerType, err := h.provider(c)
	if err != nil {
		return err
	}
	provider, _ := h.registry.Lookup(providerType)

	if denied := c.QueryParam("error"); denied != "" {
		return response.BadRequest(c, "HANDSHAKE_DENIED", "The provider denied the authorization request")
	}

	stateData, ok := h.stateStore.Consume(c.QueryParam("state"))
	if !ok || stateData.Provider != providerType {
		return response.BadRequest(c, "INVALID_STATE", "Invalid or expired state parameter")
	}

	code := c.QueryParam("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Missing authorization code")
	}

	ctx := c.Request().Context()
	accessToken, err := provider.Exchange(ctx, code, stateData.PKCEVerifier)
	if err != nil {
		h.logger.Warn("Provider code exchange failed",
			slog.String("provider", string(providerType)),
			slog.Any("error", err),
		)

		return response.BadRequest(c, "HANDSHAKE_FAILED", "Failed to complete the provider handshake")
	}

	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		h.logger.Warn("Provider profile fetch failed",
			slog.String("provider", string(providerType)),
			slog.Any("error", err),
		)

		return response.BadRequest(c, "HANDSHAKE_FAILED", "Failed to fetch the provider profile")
	}

	output, err := h.uc.Resolve(ctx, &usecase.ResolveFederatedInput{
		Profile:      profile,
		LinkUserID:   stateData.LinkUserID,
		IP:           c.RealIP(),
		AttemptedURL: stateData.AttemptedURL,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if stateData.LinkUserID != nil {
		return response.Success(c, http.StatusOK, toUserView(output.User), "Identity linked successfully")
	}

	return response.Success(c, http.StatusOK, toLoginView(output), "Login successful")
}

// ListIdentities returns the providers linked to the authenticated account.
func (h *OAuthHandler) ListIdentities(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	identities, err := h.uc.ListIdentities(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toIdentityViews(identities), "Linked identities retrieved")
}

// Unlink detaches a provider from the authenticated account.
func (h *OAuthHandler) Unlink(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	providerType, parseOK := entity.ParseProvider(c.Param("provider"))
	if !parseOK {
		return response.NotFound(c, "UNKNOWN_PROVIDER", "Unknown identity provider")
	}

	if err := h.uc.Unlink(c.Request().Context(), userID, providerType); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Identity unlinked successfully")
}
