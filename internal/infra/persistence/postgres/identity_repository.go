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

// identityRepository implements the domain.IdentityRepository interface using GORM.
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository is the constructor for identityRepository.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

// FindByProvider retrieves an identity by its globally unique (provider, provider user ID) pair.
func (repo *identityRepository) FindByProvider(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.FederatedIdentity, error) {
	var identityM model.FederatedIdentityModel
	err := repo.db.WithContext(ctx).
		First(&identityM, "provider = ? AND provider_user_id = ?", string(provider), providerUserID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.Wrap(err, "failed to find identity by provider")
	}

	return toIdentityDomain(&identityM), nil
}

// FindByUserIDAndProvider finds the identity a specific user has linked for a provider.
func (repo *identityRepository) FindByUserIDAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.FederatedIdentity, error) {
	var identityM model.FederatedIdentityModel
	err := repo.db.WithContext(ctx).
		First(&identityM, "user_id = ? AND provider = ?", userID, string(provider)).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.Wrap(err, "failed to find identity by user and provider")
	}

	return toIdentityDomain(&identityM), nil
}

// ListByUserID returns all identities linked to a user, oldest first.
func (repo *identityRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.FederatedIdentity, error) {
	var identityMs []*model.FederatedIdentityModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&identityMs).
		Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list identities by user")
	}

	identities := make([]*entity.FederatedIdentity, 0, len(identityMs))
	for _, identityM := range identityMs {
		identities = append(identities, toIdentityDomain(identityM))
	}

	return identities, nil
}

// Create persists a new linked identity.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.FederatedIdentity) error {
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrProviderAlreadyLinked.WrapMessage("provider identity already linked")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("identity references missing user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create identity")
	}

	identity.ID = identityM.ID
	identity.CreatedAt = identityM.CreatedAt

	return nil
}

// Update refreshes an existing identity record, typically with a new access token.
func (repo *identityRepository) Update(ctx context.Context, identity *entity.FederatedIdentity) error {
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Save(identityM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update identity")
	}

	return nil
}

// Delete unlinks an identity by its ID.
func (repo *identityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Delete(&model.FederatedIdentityModel{}, "id = ?", id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete identity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrIdentityNotFound
	}

	return nil
}

// toIdentityDomain converts a GORM FederatedIdentityModel to a domain entity.
func toIdentityDomain(data *model.FederatedIdentityModel) *entity.FederatedIdentity {
	if data == nil {
		return nil
	}

	return &entity.FederatedIdentity{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       entity.ProviderType(data.Provider),
		ProviderUserID: data.ProviderUserID,
		AccessToken:    data.AccessToken,
		TokenSecret:    data.TokenSecret,
		CreatedAt:      data.CreatedAt,
	}
}

// fromIdentityDomain converts a domain entity to a GORM FederatedIdentityModel.
func fromIdentityDomain(data *entity.FederatedIdentity) *model.FederatedIdentityModel {
	if data == nil {
		return nil
	}

	return &model.FederatedIdentityModel{
		ID:             data.ID,
		UserID:         data.UserID,
		Provider:       string(data.Provider),
		ProviderUserID: data.ProviderUserID,
		AccessToken:    data.AccessToken,
		TokenSecret:    data.TokenSecret,
		CreatedAt:      data.CreatedAt,
	}
}
