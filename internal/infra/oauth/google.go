package oauth

import (
	"context"
	"net/url"

	"gatekit/config"
	"gatekit/internal/domain/entity"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// googleProvider speaks the Google OAuth2 code flow.
type googleProvider struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewGoogleProvider is the constructor for googleProvider.
func NewGoogleProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return &googleProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

// Provider returns the provider this adapter speaks for.
func (p *googleProvider) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// AuthorizationURL constructs the Google authorization URL with the state parameter.
func (p *googleProvider) AuthorizationURL(state, _ string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURI)
	params.Set("scope", "openid email profile")
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for an access token.
func (p *googleProvider) Exchange(ctx context.Context, code, _ string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", p.redirectURI)

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := postForm(ctx, googleTokenURL, data, nil, &tokenResponse); err != nil {
		return "", err
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("google token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

// FetchProfile retrieves and normalizes the authenticated user's Google profile.
func (p *googleProvider) FetchProfile(ctx context.Context, accessToken string) (*entity.FederatedProfile, error) {
	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Gender        string `json:"gender"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
		Link          string `json:"link"`
	}
	if err := getJSON(ctx, googleUserInfoURL, accessToken, &googleUser); err != nil {
		return nil, err
	}
	if googleUser.ID == "" {
		return nil, errors.New("google profile missing id")
	}

	return &entity.FederatedProfile{
		Provider:       entity.ProviderTypeGoogle,
		ProviderUserID: googleUser.ID,
		Email:          googleUser.Email,
		DisplayName:    googleUser.Name,
		Gender:         googleUser.Gender,
		PictureURL:     googleUser.Picture,
		Website:        googleUser.Link,
		AccessToken:    accessToken,
	}, nil
}
