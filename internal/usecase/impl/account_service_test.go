package impl

import (
	"context"
	"testing"
	"time"

	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
	mockRepo "gatekit/internal/mocks/repository"
	mockService "gatekit/internal/mocks/service"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service      usecase.AccountUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	sessionRepo  *mockRepo.MockSessionRepository
	attemptRepo  *mockRepo.MockLoginAttemptRepository
	hasher       *mockService.MockPasswordHasher
	tokenService *mockService.MockTokenService
	smsSender    *mockService.MockSMSSender
}

func createTestAccountService(t *testing.T) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	sessionRepo := mockRepo.NewMockSessionRepository(t)
	attemptRepo := mockRepo.NewMockLoginAttemptRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokenService := mockService.NewMockTokenService(t)
	smsSender := mockService.NewMockSMSSender(t)

	service := NewAccountService(AccountServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		AttemptRepo:  attemptRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		SMSSender:    smsSender,
		Config:       newTestConfig(),
		Logger:       newDiscardLogger(),
	})

	return accountServiceFixtures{
		service:      service,
		txManager:    txManager,
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		attemptRepo:  attemptRepo,
		hasher:       hasher,
		tokenService: tokenService,
		smsSender:    smsSender,
	}
}

// expectLoginAttempt wires the best-effort attempt recording that happens on
// every login. The background sweep may or may not have run by test end.
func (f *accountServiceFixtures) expectLoginAttempt() {
	f.attemptRepo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*entity.LoginAttempt")).Return(nil)
	f.attemptRepo.EXPECT().DeleteExpired(mock.Anything).Return(int64(0), nil).Maybe()
}

func TestAccountService_Register_Success(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.hasher.EXPECT().Hash("hunter2").Return("hashed-password", nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound)
			userRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "Alice@Example.com",
		Password: "hunter2",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", output.User.Email)
	assert.Equal(t, "hashed-password", output.User.PasswordHash)
	assert.Equal(t, "Alice", output.User.Profile.Name)
}

func TestAccountService_Register_EmailTaken(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.hasher.EXPECT().Hash("hunter2").Return("hashed-password", nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(&entity.User{Email: "alice@example.com"}, nil)

			return fn(factory)
		})

	_, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "hunter2",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailTaken))
}

func TestAccountService_Register_PasswordTooShort(t *testing.T) {
	f := createTestAccountService(t)

	_, err := f.service.Register(context.Background(), &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "abc",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAccountService_Login_Success(t *testing.T) {
	f := createTestAccountService(t)
	f.expectLoginAttempt()

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com", PasswordHash: "stored-hash"}

	f.hasher.EXPECT().Check("hunter2", "stored-hash").Return(true)
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)
	f.tokenService.EXPECT().
		GenerateTokens(userID, mock.AnythingOfType("uuid.UUID"), true).
		Return("access-token", "refresh-token", nil)

	var createdSession *entity.Session
	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			factory.EXPECT().SessionRepo().Return(sessionRepo)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)
			sessionRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Session")).
				Run(func(ctx context.Context, session *entity.Session) {
					createdSession = session
				}).
				Return(nil)

			return fn(factory)
		})

	output, err := f.service.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "hunter2",
		IP:       "203.0.113.7",
	})

	require.NoError(t, err)
	assert.False(t, output.TwoFactorRequired)
	assert.Equal(t, "access-token", output.AccessToken)
	assert.Equal(t, "refresh-token", output.RefreshToken)
	assert.NotNil(t, user.LastLoginAt)

	require.NotNil(t, createdSession)
	assert.True(t, createdSession.SecondFactorVerified)
	assert.Equal(t, hashToken("refresh-token"), createdSession.TokenHash)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	f := createTestAccountService(t)
	f.expectLoginAttempt()

	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "stored-hash"}

	f.hasher.EXPECT().Check("wrong", "stored-hash").Return(false)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)

			return fn(factory)
		})

	_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	f := createTestAccountService(t)
	f.expectLoginAttempt()

	ctx := context.Background()
	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByEmail(ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

			return fn(factory)
		})

	_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "nobody@example.com", Password: "hunter2"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_Login_TwoFactorStepUp(t *testing.T) {
	f := createTestAccountService(t)
	f.expectLoginAttempt()

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID:           userID,
		Email:        "alice@example.com",
		PasswordHash: "stored-hash",
		TwoFactor: entity.TwoFactor{
			Enabled:    true,
			Type:       entity.TwoFactorTypeTOTP,
			TOTPSecret: "JBSWY3DPEHPK3PXP",
		},
	}

	f.hasher.EXPECT().Check("hunter2", "stored-hash").Return(true)
	f.tokenService.EXPECT().
		GenerateChallengeToken(userID, mock.AnythingOfType("uuid.UUID")).
		Return("challenge-token", nil)

	var createdSession *entity.Session
	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			factory.EXPECT().SessionRepo().Return(sessionRepo)
			userRepo.EXPECT().FindByEmail(ctx, "alice@example.com").Return(user, nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)
			sessionRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Session")).
				Run(func(ctx context.Context, session *entity.Session) {
					createdSession = session
				}).
				Return(nil)

			return fn(factory)
		})

	output, err := f.service.Login(ctx, &usecase.LoginInput{
		Email:        "alice@example.com",
		Password:     "hunter2",
		AttemptedURL: "/account/profile",
	})

	require.NoError(t, err)
	assert.True(t, output.TwoFactorRequired)
	assert.Equal(t, entity.TwoFactorTypeTOTP, output.TwoFactorType)
	assert.Equal(t, "challenge-token", output.ChallengeToken)
	assert.Empty(t, output.AccessToken)
	assert.Empty(t, output.RefreshToken)

	require.NotNil(t, createdSession)
	assert.False(t, createdSession.SecondFactorVerified)
	assert.Empty(t, createdSession.TokenHash)
	assert.Equal(t, "/account/profile", createdSession.AttemptedURL)
}

func TestAccountService_Logout_DeletesSessionByTokenHash(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.sessionRepo.EXPECT().DeleteByTokenHash(ctx, hashToken("refresh-token")).Return(nil)

	err := f.service.Logout(ctx, "refresh-token")

	require.NoError(t, err)
}

func TestAccountService_Refresh_RotatesToken(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	session := &entity.Session{
		ID:                   sessionID,
		UserID:               userID,
		TokenHash:            hashToken("old-refresh"),
		SecondFactorVerified: true,
		ExpiresAt:            time.Now().Add(time.Hour),
	}

	f.tokenService.EXPECT().ValidateRefreshToken("old-refresh").Return(&service.Claims{
		UserID:    userID,
		SessionID: sessionID,
	}, nil)
	f.tokenService.EXPECT().GenerateTokens(userID, sessionID, true).Return("new-access", "new-refresh", nil)
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().SessionRepo().Return(sessionRepo)
			sessionRepo.EXPECT().FindByTokenHash(ctx, hashToken("old-refresh")).Return(session, nil)
			sessionRepo.EXPECT().Update(ctx, session).Return(nil)

			return fn(factory)
		})

	output, err := f.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "old-refresh"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", output.AccessToken)
	assert.Equal(t, "new-refresh", output.RefreshToken)
	assert.Equal(t, hashToken("new-refresh"), session.TokenHash)
}

func TestAccountService_Refresh_UnknownSession(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.tokenService.EXPECT().ValidateRefreshToken("stale-refresh").Return(&service.Claims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
	}, nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().SessionRepo().Return(sessionRepo)
			sessionRepo.EXPECT().FindByTokenHash(ctx, hashToken("stale-refresh")).Return(nil, repository.ErrSessionNotFound)

			return fn(factory)
		})

	_, err := f.service.Refresh(ctx, &usecase.RefreshInput{RefreshToken: "stale-refresh"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionInvalid))
}

func TestAccountService_ChangePassword_WrongCurrent(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, PasswordHash: "stored-hash"}

	f.hasher.EXPECT().Check("wrong", "stored-hash").Return(false)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

			return fn(factory)
		})

	err := f.service.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_ChangePassword_FederatedOnlyAccountSkipsCurrentCheck(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID} // no password hash yet

	f.hasher.EXPECT().Hash("new-password").Return("new-hash", nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	err := f.service.ChangePassword(ctx, &usecase.ChangePasswordInput{
		UserID:      userID,
		NewPassword: "new-password",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.PasswordHash)
}

func TestAccountService_DeleteAccount_Success(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().UserRepo().Return(userRepo)
			userRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)
			userRepo.EXPECT().Delete(ctx, userID).Return(nil)

			return fn(factory)
		})

	err := f.service.DeleteAccount(ctx, userID)

	require.NoError(t, err)
}
