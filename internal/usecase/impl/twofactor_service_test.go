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

type twoFactorServiceFixtures struct {
	service      usecase.TwoFactorUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockService.MockPasswordHasher
	tokenService *mockService.MockTokenService
	totpService  *mockService.MockTOTPService
	qrService    *mockService.MockQRCodeService
	smsSender    *mockService.MockSMSSender
}

func createTestTwoFactorService(t *testing.T) twoFactorServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokenService := mockService.NewMockTokenService(t)
	totpService := mockService.NewMockTOTPService(t)
	qrService := mockService.NewMockQRCodeService(t)
	smsSender := mockService.NewMockSMSSender(t)

	service := NewTwoFactorService(TwoFactorServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		TOTPService:  totpService,
		QRService:    qrService,
		SMSSender:    smsSender,
		Config:       newTestConfig(),
		Logger:       newDiscardLogger(),
	})

	return twoFactorServiceFixtures{
		service:      service,
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		totpService:  totpService,
		qrService:    qrService,
		smsSender:    smsSender,
	}
}

func TestTwoFactorService_SetupTOTP_GeneratesSecretOnce(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, Email: "alice@example.com"}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.totpService.EXPECT().GenerateSecret().Return("JBSWY3DPEHPK3PXP", nil)
	f.totpService.EXPECT().Period().Return(uint(30))
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)
	f.totpService.EXPECT().
		ProvisioningURI("JBSWY3DPEHPK3PXP", "alice@example.com").
		Return("otpauth://totp/alice@example.com?secret=JBSWY3DPEHPK3PXP", nil)
	f.qrService.EXPECT().
		GeneratePNG("otpauth://totp/alice@example.com?secret=JBSWY3DPEHPK3PXP").
		Return([]byte("png-bytes"), nil)

	output, err := f.service.SetupTOTP(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", output.Secret)
	assert.Equal(t, []byte("png-bytes"), output.QRCodePNG)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", user.TwoFactor.TOTPSecret)
	assert.Equal(t, uint(30), user.TwoFactor.TOTPPeriod)
}

func TestTwoFactorService_SetupTOTP_ReusesPendingSecret(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID:        userID,
		Email:     "alice@example.com",
		TwoFactor: entity.TwoFactor{TOTPSecret: "EXISTINGSECRET"},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.totpService.EXPECT().
		ProvisioningURI("EXISTINGSECRET", "alice@example.com").
		Return("otpauth://totp/x", nil)
	f.qrService.EXPECT().GeneratePNG("otpauth://totp/x").Return([]byte("png"), nil)

	output, err := f.service.SetupTOTP(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, "EXISTINGSECRET", output.Secret, "reloading the setup page must not rotate the secret")
}

func TestTwoFactorService_SetupTOTP_RejectedWhileEnabled(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID:    userID,
		Email: "alice@example.com",
		TwoFactor: entity.TwoFactor{
			Enabled:    true,
			Type:       entity.TwoFactorTypeTOTP,
			TOTPSecret: "ACTIVESECRET",
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	_, err := f.service.SetupTOTP(ctx, userID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorAlreadyEnabled))
	assert.Equal(t, "ACTIVESECRET", user.TwoFactor.TOTPSecret, "the secret the authenticator app holds must stay valid")
}

func TestTwoFactorService_SetupSMS_RejectedWhileEnabled(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			Enabled:    true,
			Type:       entity.TwoFactorTypeTOTP,
			TOTPSecret: "ACTIVESECRET",
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	err := f.service.SetupSMS(ctx, &usecase.SetupSMSInput{UserID: userID, Phone: "+886912345678"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorAlreadyEnabled))
}

func TestTwoFactorService_ConfirmTOTP_EnablesFactor(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, TwoFactor: entity.TwoFactor{TOTPSecret: "SECRET"}}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.totpService.EXPECT().Validate("123456", "SECRET").Return(true)
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.ConfirmTOTP(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "123456"})

	require.NoError(t, err)
	assert.True(t, user.TwoFactor.Enabled)
	assert.Equal(t, entity.TwoFactorTypeTOTP, user.TwoFactor.Type)
}

func TestTwoFactorService_ConfirmTOTP_ClearsAbandonedSMSEnrollment(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	expires := time.Now().Add(3 * time.Minute)
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			TOTPSecret:        "SECRET",
			PendingSMSHash:    "code-hash",
			PendingSMSPhone:   "+886912345678",
			PendingSMSExpires: &expires,
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.totpService.EXPECT().Validate("123456", "SECRET").Return(true)
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.ConfirmTOTP(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "123456"})

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorTypeTOTP, user.TwoFactor.Type)
	assert.Empty(t, user.TwoFactor.PendingSMSHash)
	assert.Empty(t, user.TwoFactor.PendingSMSPhone)
	assert.Nil(t, user.TwoFactor.PendingSMSExpires)
}

func TestTwoFactorService_ConfirmTOTP_WrongCode(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID, TwoFactor: entity.TwoFactor{TOTPSecret: "SECRET"}}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.totpService.EXPECT().Validate("000000", "SECRET").Return(false)

	err := f.service.ConfirmTOTP(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidTwoFactorCode))
	assert.False(t, user.TwoFactor.Enabled)
}

func TestTwoFactorService_ConfirmTOTP_NothingPending(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)

	err := f.service.ConfirmTOTP(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorNotPending))
}

func TestTwoFactorService_SetupSMS_SendsCode(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{ID: userID}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.hasher.EXPECT().Hash(mock.AnythingOfType("string")).Return("code-hash", nil)
	f.smsSender.EXPECT().Send(mock.Anything, "+886912345678", mock.AnythingOfType("string")).Return(nil).Maybe()
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.SetupSMS(ctx, &usecase.SetupSMSInput{UserID: userID, Phone: "+886912345678"})

	require.NoError(t, err)
	assert.Equal(t, "code-hash", user.TwoFactor.PendingSMSHash)
	assert.Equal(t, "+886912345678", user.TwoFactor.PendingSMSPhone)
	require.NotNil(t, user.TwoFactor.PendingSMSExpires)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), *user.TwoFactor.PendingSMSExpires, time.Minute)
}

func TestTwoFactorService_SetupSMS_PendingCodeForSamePhoneIsKept(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	expires := time.Now().Add(3 * time.Minute)
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			PendingSMSHash:    "code-hash",
			PendingSMSPhone:   "+886912345678",
			PendingSMSExpires: &expires,
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	err := f.service.SetupSMS(ctx, &usecase.SetupSMSInput{UserID: userID, Phone: "+886912345678"})

	require.NoError(t, err)
	assert.Equal(t, "code-hash", user.TwoFactor.PendingSMSHash, "valid pending code must not be replaced")
}

func TestTwoFactorService_ConfirmSMS_EnablesFactorAndStoresPhone(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	expires := time.Now().Add(3 * time.Minute)
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			PendingSMSHash:    "code-hash",
			PendingSMSPhone:   "+886912345678",
			PendingSMSExpires: &expires,
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.hasher.EXPECT().Check("123456", "code-hash").Return(true)
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.ConfirmSMS(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "123456"})

	require.NoError(t, err)
	assert.True(t, user.TwoFactor.Enabled)
	assert.Equal(t, entity.TwoFactorTypeSMS, user.TwoFactor.Type)
	assert.Equal(t, "+886912345678", user.Profile.Phone)
	assert.Empty(t, user.TwoFactor.PendingSMSHash)
	assert.Empty(t, user.TwoFactor.PendingSMSPhone)
}

func TestTwoFactorService_ConfirmSMS_ExpiredCode(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	expires := time.Now().Add(-time.Minute)
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			PendingSMSHash:    "code-hash",
			PendingSMSPhone:   "+886912345678",
			PendingSMSExpires: &expires,
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	err := f.service.ConfirmSMS(ctx, &usecase.ConfirmCodeInput{UserID: userID, Code: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorNotPending))
}

func TestTwoFactorService_Disable_ClearsEnrollment(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			Enabled:    true,
			Type:       entity.TwoFactorTypeTOTP,
			TOTPSecret: "SECRET",
		},
	}

	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.Disable(ctx, userID)

	require.NoError(t, err)
	assert.False(t, user.TwoFactor.Enabled)
	assert.Empty(t, user.TwoFactor.TOTPSecret)
}

func TestTwoFactorService_VerifyChallenge_TOTP(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	session := &entity.Session{
		ID:           sessionID,
		UserID:       userID,
		AttemptedURL: "/account/profile",
		ExpiresAt:    time.Now().Add(3 * time.Minute),
	}
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			Enabled:    true,
			Type:       entity.TwoFactorTypeTOTP,
			TOTPSecret: "SECRET",
		},
	}

	f.tokenService.EXPECT().ValidateChallengeToken("challenge-token").Return(&service.Claims{
		UserID:    userID,
		SessionID: sessionID,
	}, nil)
	f.totpService.EXPECT().Validate("123456", "SECRET").Return(true)
	f.tokenService.EXPECT().GenerateTokens(userID, sessionID, true).Return("access-token", "refresh-token", nil)
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().SessionRepo().Return(sessionRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			sessionRepo.EXPECT().FindByID(ctx, sessionID).Return(session, nil)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			sessionRepo.EXPECT().Update(ctx, session).Return(nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	output, err := f.service.VerifyChallenge(ctx, &usecase.VerifyChallengeInput{
		ChallengeToken: "challenge-token",
		Code:           "123456",
	})

	require.NoError(t, err)
	assert.Equal(t, "access-token", output.AccessToken)
	assert.Equal(t, "refresh-token", output.RefreshToken)
	assert.Equal(t, "/account/profile", output.AttemptedURL)
	assert.True(t, session.SecondFactorVerified)
	assert.Equal(t, hashToken("refresh-token"), session.TokenHash)
}

func TestTwoFactorService_VerifyChallenge_SMSConsumesCode(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	session := &entity.Session{ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(3 * time.Minute)}
	expires := time.Now().Add(3 * time.Minute)
	user := &entity.User{
		ID: userID,
		TwoFactor: entity.TwoFactor{
			Enabled:           true,
			Type:              entity.TwoFactorTypeSMS,
			PendingSMSHash:    "code-hash",
			PendingSMSExpires: &expires,
		},
	}

	f.tokenService.EXPECT().ValidateChallengeToken("challenge-token").Return(&service.Claims{
		UserID:    userID,
		SessionID: sessionID,
	}, nil)
	f.hasher.EXPECT().Check("654321", "code-hash").Return(true)
	f.tokenService.EXPECT().GenerateTokens(userID, sessionID, true).Return("access-token", "refresh-token", nil)
	f.tokenService.EXPECT().RefreshTokenDuration().Return(7 * 24 * time.Hour)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)
			userRepo := mockRepo.NewMockUserRepository(t)

			factory.EXPECT().SessionRepo().Return(sessionRepo)
			factory.EXPECT().UserRepo().Return(userRepo)

			sessionRepo.EXPECT().FindByID(ctx, sessionID).Return(session, nil)
			userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
			sessionRepo.EXPECT().Update(ctx, session).Return(nil)
			userRepo.EXPECT().Update(ctx, user).Return(nil)

			return fn(factory)
		})

	_, err := f.service.VerifyChallenge(ctx, &usecase.VerifyChallengeInput{
		ChallengeToken: "challenge-token",
		Code:           "654321",
	})

	require.NoError(t, err)
	assert.Empty(t, user.TwoFactor.PendingSMSHash, "consumed sms code must not be replayable")
}

func TestTwoFactorService_VerifyChallenge_AlreadyVerifiedSession(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	session := &entity.Session{
		ID:                   sessionID,
		UserID:               userID,
		SecondFactorVerified: true,
		ExpiresAt:            time.Now().Add(time.Hour),
	}

	f.tokenService.EXPECT().ValidateChallengeToken("challenge-token").Return(&service.Claims{
		UserID:    userID,
		SessionID: sessionID,
	}, nil)

	f.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			sessionRepo := mockRepo.NewMockSessionRepository(t)

			factory.EXPECT().SessionRepo().Return(sessionRepo)
			sessionRepo.EXPECT().FindByID(ctx, sessionID).Return(session, nil)

			return fn(factory)
		})

	_, err := f.service.VerifyChallenge(ctx, &usecase.VerifyChallengeInput{
		ChallengeToken: "challenge-token",
		Code:           "123456",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionInvalid))
}

func TestTwoFactorService_VerifyChallenge_BadToken(t *testing.T) {
	f := createTestTwoFactorService(t)

	f.tokenService.EXPECT().ValidateChallengeToken("garbage").Return(nil, errors.New("bad token"))

	_, err := f.service.VerifyChallenge(context.Background(), &usecase.VerifyChallengeInput{
		ChallengeToken: "garbage",
		Code:           "123456",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenExpiredOrInvalid))
}

func TestTwoFactorService_ResendChallenge_AlwaysGeneratesFreshCode(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	expires := time.Now().Add(3 * time.Minute)
	user := &entity.User{
		ID:      userID,
		Profile: entity.Profile{Phone: "+886912345678"},
		TwoFactor: entity.TwoFactor{
			Enabled:           true,
			Type:              entity.TwoFactorTypeSMS,
			PendingSMSHash:    "old-hash",
			PendingSMSExpires: &expires,
		},
	}

	f.tokenService.EXPECT().ValidateChallengeToken("challenge-token").Return(&service.Claims{UserID: userID}, nil)
	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)
	f.hasher.EXPECT().Hash(mock.AnythingOfType("string")).Return("new-hash", nil)
	f.smsSender.EXPECT().Send(mock.Anything, "+886912345678", mock.AnythingOfType("string")).Return(nil).Maybe()
	f.userRepo.EXPECT().Update(ctx, user).Return(nil)

	err := f.service.ResendChallenge(ctx, "challenge-token")

	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.TwoFactor.PendingSMSHash)
}

func TestTwoFactorService_ResendChallenge_NotSMSUser(t *testing.T) {
	f := createTestTwoFactorService(t)

	ctx := context.Background()
	userID := uuid.New()
	user := &entity.User{
		ID:        userID,
		TwoFactor: entity.TwoFactor{Enabled: true, Type: entity.TwoFactorTypeTOTP},
	}

	f.tokenService.EXPECT().ValidateChallengeToken("challenge-token").Return(&service.Claims{UserID: userID}, nil)
	f.userRepo.EXPECT().FindByID(ctx, userID).Return(user, nil)

	err := f.service.ResendChallenge(ctx, "challenge-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorNotPending))
}
