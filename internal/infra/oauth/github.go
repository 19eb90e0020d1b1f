package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"gatekit/config"
	"gatekit/internal/domain/entity"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
)

const (
	githubAuthURL  = "https://github.com/login/oauth/authorize"
	githubTokenURL = "https://github.com/login/oauth/access_token"
	githubUserURL  = "https://api.github.com/user"
)

type githubProvider struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

// NewGitHubProvider is the constructor for githubProvider.
func NewGitHubProvider(cfg *config.OAuthProviderConfig) service.OAuthProvider {
	return &githubProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

func (p *githubProvider) Provider() entity.ProviderType {
	return entity.ProviderTypeGitHub
}

func (p *githubProvider) AuthorizationURL(state, _ string) string {
	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", p.redirectURI)
	params.Set("scope", "read:user user:email")
	params.Set("state", state)

	return githubAuthURL + "?" + params.Encode()
}

func (p *githubProvider) Exchange(ctx context.Context, code, _ string) (string, error) {
	data := url.Values{}
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", p.redirectURI)

	// GitHub returns form-encoded unless asked for JSON explicitly.
	header := http.Header{}
	header.Set("Accept", "application/json")

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
	}
	if err := postForm(ctx, githubTokenURL, data, header, &tokenResponse); err != nil {
		return "", err
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("github token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

func (p *githubProvider) FetchProfile(ctx context.Context, accessToken string) (*entity.FederatedProfile, error) {
	var githubUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
		Location  string `json:"location"`
		Blog      string `json:"blog"`
	}
	if err := getJSON(ctx, githubUserURL, accessToken, &githubUser); err != nil {
		return nil, err
	}
	if githubUser.ID == 0 {
		return nil, errors.New("github profile missing id")
	}

	return &entity.FederatedProfile{
		Provider:       entity.ProviderTypeGitHub,
		ProviderUserID: strconv.FormatInt(githubUser.ID, 10),
		Email:          githubUser.Email,
		Username:       githubUser.Login,
		DisplayName:    githubUser.Name,
		Location:       githubUser.Location,
		Website:        githubUser.Blog,
		PictureURL:     githubUser.AvatarURL,
		AccessToken:    accessToken,
	}, nil
}
