package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"

	"gatekit/config"
	"gatekit/internal/domain/entity"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

const (
	twitterAuthURL  = "https://twitter.com/i/oauth2/authorize"
	twitterTokenURL = "https://api.twitter.com/2/oauth2/token"
	twitterMeURL    = "https://api.twitter.com/2/users/me?user.fields=name,location,url,profile_image_url"
)

// twitterProvider speaks the X/Twitter OAuth2 user-context flow. The v2
// user endpoint never returns an email address, so callers fall back to a
// synthetic one derived from the username.
type twitterProvider struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewTwitterProvider is the constructor for twitterProvider.
func NewTwitterProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return &twitterProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

func (p *twitterProvider) Provider() entity.ProviderType {
	return entity.ProviderTypeTwitter
}

// Twitter requires PKCE on every authorization request. The verifier is
// issued per handshake and travels with the anti-CSRF state, so the
// callback may land on a different instance than the redirect.
func (p *twitterProvider) AuthorizationURL(state, pkceVerifier string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURI)
	params.Set("scope", "users.read tweet.read")
	params.Set("response_type", "code")
	params.Set("state", state)
	params.Set("code_challenge", pkceChallenge(pkceVerifier))
	params.Set("code_challenge_method", "S256")

	return twitterAuthURL + "?" + params.Encode()
}

// pkceChallenge derives the S256 code challenge from a verifier.
func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (p *twitterProvider) Exchange(ctx context.Context, code, pkceVerifier string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", p.redirectURI)
	data.Set("code_verifier", pkceVerifier)

	header := http.Header{}
	header.Set("Authorization", "Basic "+basicAuth(p.clientID, p.clientSecret))

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := postForm(ctx, twitterTokenURL, data, header, &tokenResponse); err != nil {
		return "", err
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("twitter token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

func (p *twitterProvider) FetchProfile(ctx context.Context, accessToken string) (*entity.FederatedProfile, error) {
	var twitterUser struct {
		Data struct {
			ID              string `json:"id"`
			Username        string `json:"username"`
			Name            string `json:"name"`
			Location        string `json:"location"`
			URL             string `json:"url"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}
	if err := getJSON(ctx, twitterMeURL, accessToken, &twitterUser); err != nil {
		return nil, err
	}
	if twitterUser.Data.ID == "" {
		return nil, errors.New("twitter profile missing id")
	}

	return &entity.FederatedProfile{
		Provider:       entity.ProviderTypeTwitter,
		ProviderUserID: twitterUser.Data.ID,
		Username:       twitterUser.Data.Username,
		DisplayName:    twitterUser.Data.Name,
		Location:       twitterUser.Data.Location,
		Website:        twitterUser.Data.URL,
		PictureURL:     twitterUser.Data.ProfileImageURL,
		AccessToken:    accessToken,
	}, nil
}
