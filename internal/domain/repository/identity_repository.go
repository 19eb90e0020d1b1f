package repository

import (
	"context"
	"errors"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrIdentityNotFound is returned when a federated identity is not found.
var ErrIdentityNotFound = errors.New("federated identity not found")

// IdentityRepository defines the standard operations for federated identity persistence.
type IdentityRepository interface {
	// FindByProvider retrieves an identity by provider and provider-specific user ID.
	FindByProvider(ctx context.Context, provider entity.ProviderType, providerUserID string) (*entity.FederatedIdentity, error)

	// FindByUserIDAndProvider finds the identity a specific user has linked for a provider.
	FindByUserIDAndProvider(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.FederatedIdentity, error)

	// ListByUserID returns all identities linked to a user.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.FederatedIdentity, error)

	// Create persists a new linked identity.
	Create(ctx context.Context, identity *entity.FederatedIdentity) error

	// Update refreshes an existing identity record (e.g. new access token).
	Update(ctx context.Context, identity *entity.FederatedIdentity) error

	// Delete unlinks an identity by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
