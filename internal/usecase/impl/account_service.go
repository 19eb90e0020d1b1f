package impl

import (
	"context"
	"log/slog"
	"time"

	"gatekit/config"
	deliverycontext "gatekit/internal/delivery/context"
	"gatekit/internal/domain/entity"
	domainerrors "gatekit/internal/domain/errors"
	"gatekit/internal/domain/repository"
	"gatekit/internal/domain/service"
	"gatekit/internal/errors"
	"gatekit/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager       repository.TransactionManager
	userRepo        repository.UserRepository
	sessionRepo     repository.SessionRepository
	attemptRepo     repository.LoginAttemptRepository
	hasher          service.PasswordHasher
	tokenService    service.TokenService
	issuer          *sessionIssuer
	loginAttemptTTL time.Duration
	logger          *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	AttemptRepo  repository.LoginAttemptRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	SMSSender    service.SMSSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		sessionRepo:  params.SessionRepo,
		attemptRepo:  params.AttemptRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		issuer: &sessionIssuer{
			tokenService: params.TokenService,
			hasher:       params.Hasher,
			smsSender:    params.SMSSender,
			smsCodeTTL:   params.Config.Auth.SMSCodeTTL,
			challengeTTL: params.Config.Auth.ChallengeTTL,
			logger:       params.Logger,
		},
		loginAttemptTTL: params.Config.Auth.LoginAttemptTTL,
		logger:          params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account with a local password credential.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password")
	}

	var registered *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, email)
		if err == nil {
			return domainerrors.ErrEmailTaken.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check existing email")
		}

		user := &entity.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: passwordHash,
			Profile:      entity.Profile{Name: input.Name},
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		registered = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registered.ID))

	return &usecase.RegisterOutput{User: registered}, nil
}

// Login authenticates a password credential. Unknown email and wrong password
// produce the same generic error, and every attempt is recorded regardless of
// outcome.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	srv.recordAttempt(ctx, email, input.IP)

	var output *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrInvalidCredentials
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user for login")
		}

		if !user.HasPassword() || !srv.hasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		output, err = srv.issuer.IssueLogin(ctx, repoFactory, user, input.AttemptedURL)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Login succeeded",
		slog.Any("userID", output.User.ID),
		slog.Bool("twoFactorRequired", output.TwoFactorRequired),
	)

	return output, nil
}

// recordAttempt inserts a login attempt row and opportunistically sweeps
// expired ones. Both are best-effort; failures never block the login itself.
func (srv *accountService) recordAttempt(ctx context.Context, email, ip string) {
	attempt := &entity.LoginAttempt{
		ID:        uuid.New(),
		Email:     email,
		IP:        ip,
		ExpiresAt: time.Now().Add(srv.loginAttemptTTL),
	}
	if err := srv.attemptRepo.Create(ctx, attempt); err != nil {
		srv.log(ctx).Warn("Failed to record login attempt", slog.Any("error", err))
	}

	go func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		removed, err := srv.attemptRepo.DeleteExpired(sweepCtx)
		if err != nil {
			srv.logger.Warn("Failed to sweep login attempts", slog.Any("error", err))

			return
		}
		if removed > 0 {
			srv.logger.Debug("Swept expired login attempts", slog.Int64("removed", removed))
		}
	}()
}

// Logout deletes the session identified by the presented refresh token.
// Unknown tokens succeed silently.
func (srv *accountService) Logout(ctx context.Context, refreshToken string) error {
	if err := srv.sessionRepo.DeleteByTokenHash(ctx, hashToken(refreshToken)); err != nil {
		return errors.Wrap(err, "failed to delete session on logout")
	}

	return nil
}

// Refresh rotates a refresh token: the presented token's session gets a new
// token pair and the old refresh token stops working.
func (srv *accountService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domainerrors.ErrTokenExpiredOrInvalid.WrapMessage("invalid refresh token")
	}

	var output *usecase.TokenPairOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByTokenHash(ctx, hashToken(input.RefreshToken))
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionInvalid
		}
		if err != nil {
			return errors.Wrap(err, "failed to find session for refresh")
		}
		if session.ID != claims.SessionID || session.UserID != claims.UserID {
			return domainerrors.ErrSessionInvalid
		}

		accessToken, refreshToken, err := srv.tokenService.GenerateTokens(session.UserID, session.ID, session.SecondFactorVerified)
		if err != nil {
			return errors.Wrap(err, "failed to generate rotated token pair")
		}

		session.TokenHash = hashToken(refreshToken)
		session.ExpiresAt = time.Now().Add(srv.tokenService.RefreshTokenDuration())
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		output = &usecase.TokenPairOutput{AccessToken: accessToken, RefreshToken: refreshToken}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ChangePassword sets a new password for an authenticated user. Accounts
// without a password yet (federated-only) skip the current-password check.
func (srv *accountService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user for password change")
		}

		if user.HasPassword() && !srv.hasher.Check(input.CurrentPassword, user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}
		user.PasswordHash = newHash

		// A fresh password ends any pending reset window.
		user.ClearResetToken()

		return userRepo.Update(ctx, user)
	})
}

// DeleteAccount removes the user along with all linked identities and sessions.
func (srv *accountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting account", slog.Any("userID", userID))

	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user for deletion")
		}

		return repoFactory.UserRepo().Delete(ctx, userID)
	})
}
