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
	facebookAuthURL  = "https://www.facebook.com/v19.0/dialog/oauth"
	facebookTokenURL = "https://graph.facebook.com/v19.0/oauth/access_token"
	facebookMeURL    = "https://graph.facebook.com/v19.0/me"
)

type facebookProvider struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewFacebookProvider is the constructor for facebookProvider.
func NewFacebookProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return &facebookProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

func (p *facebookProvider) Provider() entity.ProviderType {
	return entity.ProviderTypeFacebook
}

func (p *facebookProvider) AuthorizationURL(state, _ string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURI)
	params.Set("scope", "email,public_profile")
	params.Set("response_type", "code")
	params.Set("state", state)

	return facebookAuthURL + "?" + params.Encode()
}

func (p *facebookProvider) Exchange(ctx context.Context, code, _ string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", p.redirectURI)

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := postForm(ctx, facebookTokenURL, data, nil, &tokenResponse); err != nil {
		return "", err
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("facebook token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

func (p *facebookProvider) FetchProfile(ctx context.Context, accessToken string) (*entity.FederatedProfile, error) {
	endpoint := facebookMeURL + "?fields=" + url.QueryEscape("id,name,email,gender,location{name},website")

	var facebookUser struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Gender   string `json:"gender"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Website string `json:"website"`
	}
	if err := getJSON(ctx, endpoint, accessToken, &facebookUser); err != nil {
		return nil, err
	}
	if facebookUser.ID == "" {
		return nil, errors.New("facebook profile missing id")
	}

	return &entity.FederatedProfile{
		Provider:       entity.ProviderTypeFacebook,
		ProviderUserID: facebookUser.ID,
		Email:          facebookUser.Email,
		DisplayName:    facebookUser.Name,
		Gender:         facebookUser.Gender,
		Location:       facebookUser.Location.Name,
		Website:        facebookUser.Website,
		PictureURL:     "https://graph.facebook.com/" + facebookUser.ID + "/picture?type=large",
		AccessToken:    accessToken,
	}, nil
}
