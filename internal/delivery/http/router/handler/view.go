package handler

import (
	"time"

	"gatekit/internal/domain/entity"
	"gatekit/internal/usecase"
)

// UserView is the outward representation of an account. Credential material
// and enrollment secrets never leave the service.
type UserView struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	Location         string     `json:"location,omitempty"`
	Website          string     `json:"website,omitempty"`
	PictureURL       string     `json:"pictureUrl,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	HasPassword      bool       `json:"hasPassword"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	TwoFactorType    string     `json:"twoFactorType,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}

func toUserView(user *entity.User) *UserView {
	return &UserView{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Profile.Name,
		Gender:           user.Profile.Gender,
		Location:         user.Profile.Location,
		Website:          user.Profile.Website,
		PictureURL:       user.Profile.PictureURL,
		Phone:            user.Profile.Phone,
		HasPassword:      user.HasPassword(),
		TwoFactorEnabled: user.TwoFactor.Enabled,
		TwoFactorType:    string(user.TwoFactor.Type),
		CreatedAt:        user.CreatedAt,
		LastLoginAt:      user.LastLoginAt,
	}
}

// LoginView is the outward representation of a login outcome. Either the
// token pair is present, or the step-up fields are.
type LoginView struct {
	User              *UserView `json:"user"`
	AccessToken       string    `json:"accessToken,omitempty"`
	RefreshToken      string    `json:"refreshToken,omitempty"`
	TwoFactorRequired bool      `json:"twoFactorRequired"`
	TwoFactorType     string    `json:"twoFactorType,omitempty"`
	ChallengeToken    string    `json:"challengeToken,omitempty"`
}

func toLoginView(output *usecase.LoginOutput) *LoginView {
	return &LoginView{
		User:              toUserView(output.User),
		AccessToken:       output.AccessToken,
		RefreshToken:      output.RefreshToken,
		TwoFactorRequired: output.TwoFactorRequired,
		TwoFactorType:     string(output.TwoFactorType),
		ChallengeToken:    output.ChallengeToken,
	}
}

// IdentityView is the outward representation of a linked provider.
type IdentityView struct {
	Provider string    `json:"provider"`
	LinkedAt time.Time `json:"linkedAt"`
}

func toIdentityViews(identities []*entity.FederatedIdentity) []*IdentityView {
	views := make([]*IdentityView, 0, len(identities))
	for _, identity := range identities {
		views = append(views, &IdentityView{
			Provider: string(identity.Provider),
			LinkedAt: identity.CreatedAt,
		})
	}

	return views
}
