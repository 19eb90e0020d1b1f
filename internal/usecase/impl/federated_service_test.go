package impl

import (
	"context"
	"testing"
	"time"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/errors"
	mockRepo "gatekit/internal/mocks/repository"
	mockService "gatekit/internal/mocks/service"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type federatedServiceFixtures struct {
	service      usecase.FederatedUsecase
	txManager    *mockRepo.MockTransactionManager
	identityRepo *mockRepo.MockIdentityRepository
	hasher       *mockService.MockPasswordHasher
	tokenService *mockService.MockTokenService
}

func createTestFederatedService(t *testing.T) federatedServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	identityRepo := mockRepo.NewMockIdentityRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokenService := mockService.NewMockTokenService(t)
	smsSender := mockService.NewMockSMSSender(t)

	service := NewFederatedService(FederatedServiceParams{
		TxManager:    txManager,
		IdentityRepo: identityRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		SMSSender:    smsSender,
		Config:       newTestConfig(),
		Logger:       newDiscardLogger(),
	})

	return federatedServiceFixtures{
		service:      service,
		txManager:    txManager,
		identityRepo: identityRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

func githubProfile() *entity.FederatedProfile {
	return &entity.FederatedProfile{
		Provider:       entity.ProviderTypeGitHub,
		ProviderUserID: "8675309",
		Email:          "alice@example.com",
		Username:       "alice",
		DisplayName:    "Alice",
		AccessToken:    "gh-access",
	}
}

func (f *federatedServiceFixtures) expectTokenPair(userID uuid.UUID) {
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	f.tokenService.EXPECT().
		GenerateTokens(userID, mock.AnythingOfType("uuid.UUID"), true).
		Return("access-token", "refresh-token", nil)
}

func TestFederatedService_Resolve_ReturningLogin(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	profile := githubProfile()
	userID := uuid.New()
	identity := &entity.FederatedIdentity{
		ID:             uuid.New(),
		UserID:         userID,
		Provider:       entity.ProviderTypeGitHub,
		ProviderUserID: "8675309",
		AccessToken:    "gh-stale",
	}
	user := &entity.User{ID: userID, Email: "alice@example.com"}

	f.expectTokenPair(userID)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)
			factory.EXPECT().SessionRepo().Return(sessionRepo)

			identityRepo.EXPECT().FindByProvider(ctx, entity.ProviderTypeGitHub, "8675309").Return(identity, nil)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			identityRepo.EXPECT().Update(ctx, identity).Return(nil)
			sessionRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Session")).Return(nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{Profile: profile})

	require.NoError(t, err)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "access-token", output.AccessToken)
	assert.Equal(t, "gh-access", identity.AccessToken, "stored provider token should be refreshed")
}

func TestFederatedService_Resolve_EmailMerge(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	profile := githubProfile()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com", PasswordHash: "existing-hash"}

	f.expectTokenPair(userID)

	var attached *entity.FederatedIdentity
	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)
			factory.EXPECT().SessionRepo().Return(sessionRepo)

			identityRepo.EXPECT().
				FindByProvider(ctx, entity.ProviderTypeGitHub, "8675309").
				Return(nil, repository.ErrIdentityNotFound)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
			identityRepo.EXPECT().
				FindByUserIDAndProvider(ctx, userID, entity.ProviderTypeGitHub).
				Return(nil, repository.ErrIdentityNotFound)
			identityRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.FederatedIdentity")).
				Run(func(ctx context.Context, identity *entity.FederatedIdentity) {
					attached = identity
				}).
				Return(nil)
			sessionRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Session")).Return(nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{Profile: profile})

	require.NoError(t, err)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "Alice", user.Profile.Name, "empty profile fields should be backfilled")

	require.NotNil(t, attached)
	assert.Equal(t, userID, attached.UserID)
	assert.Equal(t, entity.ProviderTypeGitHub, attached.Provider)
}

func TestFederatedService_Resolve_RegistersNewAccount(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	profile := &entity.FederatedProfile{
		Provider:       entity.ProviderTypeTwitter,
		ProviderUserID: "555",
		Username:       "alice",
		DisplayName:    "Alice",
		AccessToken:    "tw-access",
	}

	var created *entity.User
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	f.tokenService.EXPECT().
		GenerateTokens(mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("uuid.UUID"), true).
		Return("access-token", "refresh-token", nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)
			factory.EXPECT().SessionRepo().Return(sessionRepo)

			identityRepo.EXPECT().
				FindByProvider(ctx, entity.ProviderTypeTwitter, "555").
				Return(nil, repository.ErrIdentityNotFound)
			userRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					created = user
				}).
				Return(nil)
			identityRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.FederatedIdentity")).Return(nil)
			sessionRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Session")).Return(nil)
			userRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.User")).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{Profile: profile})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice@twitter.com", created.Email, "providers without email get a synthetic address")
	assert.Equal(t, "Alice", created.Profile.Name)
	assert.Equal(t, "access-token", output.AccessToken)
}

func TestFederatedService_Resolve_LinkAttachesIdentity(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	profile := githubProfile()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com", PasswordHash: "hash"}

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			identityRepo.EXPECT().
				FindByProvider(ctx, entity.ProviderTypeGitHub, "8675309").
				Return(nil, repository.ErrIdentityNotFound)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			identityRepo.EXPECT().
				FindByUserIDAndProvider(ctx, userID, entity.ProviderTypeGitHub).
				Return(nil, repository.ErrIdentityNotFound)
			identityRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.FederatedIdentity")).Return(nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{
		Profile:    profile,
		LinkUserID: &userID,
	})

	require.NoError(t, err)
	assert.Equal(t, userID, output.User.ID)
	assert.Empty(t, output.AccessToken, "linking issues no new session")
}

func TestFederatedService_Resolve_LinkConflict(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	profile := githubProfile()
	linkUserID := uuid.New()
	otherOwner := &entity.FederatedIdentity{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Provider:       entity.ProviderTypeGitHub,
		ProviderUserID: "8675309",
	}

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			identityRepo.EXPECT().FindByProvider(ctx, entity.ProviderTypeGitHub, "8675309").Return(otherOwner, nil)

			return fn(factory)
		})

	_, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{
		Profile:    profile,
		LinkUserID: &linkUserID,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProviderAlreadyLinked))
}

func TestFederatedService_Resolve_LinkSecondIdentitySameProvider(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com", PasswordHash: "hash"}
	alreadyLinked := &entity.FederatedIdentity{
		ID:             uuid.New(),
		UserID:         userID,
		Provider:       entity.ProviderTypeGitHub,
		ProviderUserID: "8675309",
	}
	profile := githubProfile()
	profile.ProviderUserID = "999999"

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			identityRepo.EXPECT().
				FindByProvider(ctx, entity.ProviderTypeGitHub, "999999").
				Return(nil, repository.ErrIdentityNotFound)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			identityRepo.EXPECT().
				FindByUserIDAndProvider(ctx, userID, entity.ProviderTypeGitHub).
				Return(alreadyLinked, nil)

			return fn(factory)
		})

	_, err := f.service.Resolve(ctx, &usecase.ResolveFederatedInput{
		Profile:    profile,
		LinkUserID: &userID,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProviderAlreadyLinked),
		"an account holds at most one identity per provider")
}

func TestFederatedService_Unlink_LastCredentialGuard(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	userID := uuid.New()
	identity := &entity.FederatedIdentity{ID: uuid.New(), UserID: userID, Provider: entity.ProviderTypeGoogle}

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			identityRepo.EXPECT().FindByUserIDAndProvider(ctx, userID, entity.ProviderTypeGoogle).Return(identity, nil)
			userRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil) // passwordless
			identityRepo.EXPECT().ListByUserID(ctx, userID).Return([]*entity.FederatedIdentity{identity}, nil)

			return fn(factory)
		})

	err := f.service.Unlink(ctx, userID, entity.ProviderTypeGoogle)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden))
}

func TestFederatedService_Unlink_Success(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	userID := uuid.New()
	identity := &entity.FederatedIdentity{ID: uuid.New(), UserID: userID, Provider: entity.ProviderTypeGoogle}

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			identityRepo := mockRepo.NewMockIdentityRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().IdentityRepo().Return(identityRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			identityRepo.EXPECT().FindByUserIDAndProvider(ctx, userID, entity.ProviderTypeGoogle).Return(identity, nil)
			userRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID, PasswordHash: "hash"}, nil)
			identityRepo.EXPECT().Delete(ctx, identity.ID).Return(nil)

			return fn(factory)
		})

	err := f.service.Unlink(ctx, userID, entity.ProviderTypeGoogle)

	require.NoError(t, err)
}

func TestFederatedService_ListIdentities(t *testing.T) {
	f := createTestFederatedService(t)

	ctx := context.Background()
	userID := uuid.New()
	identities := []*entity.FederatedIdentity{
		{ID: uuid.New(), UserID: userID, Provider: entity.ProviderTypeGoogle},
		{ID: uuid.New(), UserID: userID, Provider: entity.ProviderTypeGitHub},
	}

	f.identityRepo.EXPECT().ListByUserID(ctx, userID).Return(identities, nil)

	got, err := f.service.ListIdentities(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
