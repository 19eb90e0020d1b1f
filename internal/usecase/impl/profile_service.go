package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatekit/internal/delivery/context"
	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/errors"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Logger   *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		userRepo: params.UserRepo,
		logger:   params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile returns the account's own record.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user profile")
	}

	return user, nil
}

// UpdateProfile applies the provided fields. Nil pointers leave a field
// unchanged; empty strings clear it.
func (srv *profileService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	applyField(&user.Profile.Name, input.Name)
	applyField(&user.Profile.Gender, input.Gender)
	applyField(&user.Profile.Location, input.Location)
	applyField(&user.Profile.Website, input.Website)
	applyField(&user.Profile.PictureURL, input.PictureURL)
	applyField(&user.Profile.Phone, input.Phone)

	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("userID", user.ID))

	return user, nil
}

func applyField(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
