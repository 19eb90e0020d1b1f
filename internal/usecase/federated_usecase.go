package usecase

import (
	"context"

	"gatekit/internal/domain/entity"

	"github.com/google/uuid"
)

// ResolveFederatedInput carries the normalized profile returned by a provider
// handshake plus the linking context extracted from the state parameter.
// LinkUserID is non-nil when an already-authenticated user initiated the
// handshake to attach a new provider to their account.
type ResolveFederatedInput struct {
	Profile      *entity.FederatedProfile
	LinkUserID   *uuid.UUID
	IP           string
	AttemptedURL string
}

// FederatedUsecase resolves completed identity provider handshakes into
// accounts: sign-in for known identities, linking for authenticated users,
// email-merge or fresh registration otherwise.
type FederatedUsecase interface {
	// Resolve applies the account-linking decision table and logs the user in.
	Resolve(ctx context.Context, input *ResolveFederatedInput) (*LoginOutput, error)

	// ListIdentities returns the providers linked to an account.
	ListIdentities(ctx context.Context, userID uuid.UUID) ([]*entity.FederatedIdentity, error)

	// Unlink detaches a provider from an account. The last credential cannot
	// be removed if the account has no password to fall back on.
	Unlink(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) error
}
