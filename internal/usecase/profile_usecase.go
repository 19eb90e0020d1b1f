package usecase

import (
	"context"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput carries the editable profile fields. Nil pointers leave
// the corresponding field unchanged; empty strings clear it.
type UpdateProfileInput struct {
	UserID     uuid.UUID
	Name       *string
	Gender     *string
	Location   *string
	Website    *string
	PictureURL *string
	Phone      *string
}

// ProfileUsecase exposes the account's own profile.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error)
}
