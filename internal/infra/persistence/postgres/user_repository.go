package postgres

import (
	"context"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).First(&userM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address. Emails are
// stored lowercase, so callers normalize before lookup.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).First(&userM, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailTaken.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid foreign key reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
// Saves are whole-record, last-writer-wins.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailTaken.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Delete removes a user along with their linked identities, sessions and
// login attempts. The user row itself is soft-deleted.
func (repo *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := repo.db.WithContext(ctx)

	if err := db.Where("user_id = ?", id).Delete(&model.FederatedIdentityModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user identities")
	}
	if err := db.Where("user_id = ?", id).Delete(&model.SessionModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user sessions")
	}
	if err := db.Delete(&model.UserModel{}, "id = ?", id).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user")
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Profile: entity.Profile{
			Name:       data.Name,
			Gender:     data.Gender,
			Location:   data.Location,
			Website:    data.Website,
			PictureURL: data.PictureURL,
			Phone:      data.Phone,
		},
		TwoFactor: entity.TwoFactor{
			Enabled:           data.TwoFactorEnabled,
			Type:              entity.TwoFactorType(data.TwoFactorType),
			TOTPSecret:        data.TOTPSecret,
			TOTPPeriod:        data.TOTPPeriod,
			PendingSMSHash:    data.PendingSMSHash,
			PendingSMSPhone:   data.PendingSMSPhone,
			PendingSMSExpires: data.PendingSMSExpires,
		},
		ResetToken:   data.ResetTokenHash,
		ResetExpires: data.ResetExpires,
		LastLoginAt:  data.LastLoginAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:                data.ID,
		Email:             data.Email,
		PasswordHash:      data.PasswordHash,
		Name:              data.Profile.Name,
		Gender:            data.Profile.Gender,
		Location:          data.Profile.Location,
		Website:           data.Profile.Website,
		PictureURL:        data.Profile.PictureURL,
		Phone:             data.Profile.Phone,
		TwoFactorEnabled:  data.TwoFactor.Enabled,
		TwoFactorType:     string(data.TwoFactor.Type),
		TOTPSecret:        data.TwoFactor.TOTPSecret,
		TOTPPeriod:        data.TwoFactor.TOTPPeriod,
		PendingSMSHash:    data.TwoFactor.PendingSMSHash,
		PendingSMSPhone:   data.TwoFactor.PendingSMSPhone,
		PendingSMSExpires: data.TwoFactor.PendingSMSExpires,
		ResetTokenHash:    data.ResetToken,
		ResetExpires:      data.ResetExpires,
		LastLoginAt:       data.LastLoginAt,
		CreatedAt:         data.CreatedAt,
	}
}
