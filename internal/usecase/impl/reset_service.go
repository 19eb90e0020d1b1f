package impl

import (
	"context"
	"fmt"
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

// resetService implements the ResetUsecase interface as a sequential
// pipeline: generate token, persist its hash, send the link. The emailed
// token is the only clear-text copy; storage holds a bcrypt hash.
type resetService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	hasher        service.PasswordHasher
	mailSender    service.MailSender
	issuer        *sessionIssuer
	resetTokenTTL time.Duration
	baseURL       string
	logger        *slog.Logger
}

// ResetServiceParams holds dependencies for resetService, injected by Fx.
type ResetServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	MailSender   service.MailSender
	SMSSender    service.SMSSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewResetService is the constructor for resetService.
func NewResetService(params ResetServiceParams) usecase.ResetUsecase {
	baseURL := ""
	if params.Config.Mail != nil {
		baseURL = params.Config.Mail.BaseURL
	}

	return &resetService{
		txManager:  params.TxManager,
		userRepo:   params.UserRepo,
		hasher:     params.Hasher,
		mailSender: params.MailSender,
		issuer: &sessionIssuer{
			tokenService: params.TokenService,
			hasher:       params.Hasher,
			smsSender:    params.SMSSender,
			smsCodeTTL:   params.Config.Auth.SMSCodeTTL,
			challengeTTL: params.Config.Auth.ChallengeTTL,
			logger:       params.Logger,
		},
		resetTokenTTL: params.Config.Auth.ResetTokenTTL,
		baseURL:       baseURL,
		logger:        params.Logger,
	}
}

func (srv *resetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Forgot starts a reset: generate a token, persist its hash with an expiry,
// email the link. Unknown emails succeed without any visible difference so
// the endpoint cannot be used to probe for accounts.
func (srv *resetService) Forgot(ctx context.Context, input *usecase.ForgotPasswordInput) error {
	email := normalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Password reset requested for unknown email")

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to find user for password reset")
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	tokenHash, err := srv.hasher.Hash(token)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash reset token")
	}

	expires := time.Now().Add(srv.resetTokenTTL)
	user.ResetToken = tokenHash
	user.ResetExpires = &expires
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return err
	}

	srv.sendResetMail(user, token)
	srv.log(ctx).Info("Password reset token issued", slog.Any("userID", user.ID))

	return nil
}

// sendResetMail dispatches the reset link asynchronously. A send failure is
// logged but does not undo the already-persisted token.
func (srv *resetService) sendResetMail(user *entity.User, token string) {
	link := fmt.Sprintf("%s/auth/reset/%s/%s", srv.baseURL, user.ID, token)
	msg := &service.MailMessage{
		To:      user.Email,
		Subject: "Reset your password",
		Text:    fmt.Sprintf("Follow this link to reset your password: %s\nThe link expires in %s.", link, srv.resetTokenTTL),
		HTML:    fmt.Sprintf(`<p>Follow <a href="%s">this link</a> to reset your password.</p><p>The link expires in %s.</p>`, link, srv.resetTokenTTL),
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.mailSender.Send(sendCtx, msg); err != nil {
			srv.logger.Error("Failed to send password reset mail", slog.Any("error", err))
		}
	}()
}

// ValidateToken checks a reset link without consuming it.
func (srv *resetService) ValidateToken(ctx context.Context, userID uuid.UUID, token string) error {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrTokenExpiredOrInvalid
	}
	if err != nil {
		return errors.Wrap(err, "failed to find user for token validation")
	}

	return srv.checkToken(user, token)
}

// checkToken applies the expiry window and hash comparison. Every failure
// mode collapses into the same error so callers learn nothing extra.
func (srv *resetService) checkToken(user *entity.User, token string) error {
	if !user.InResetWindow(time.Now()) {
		return domainerrors.ErrTokenExpiredOrInvalid
	}
	if !srv.hasher.Check(token, user.ResetToken) {
		return domainerrors.ErrTokenExpiredOrInvalid
	}

	return nil
}

// Redeem consumes the token, sets the new password, revokes every previous
// session and logs the user in fresh.
func (srv *resetService) Redeem(ctx context.Context, input *usecase.ResetPasswordInput) (*usecase.LoginOutput, error) {
	if err := validatePassword(input.NewPassword); err != nil {
		return nil, err
	}

	var output *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrTokenExpiredOrInvalid
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user for password reset")
		}

		if err := srv.checkToken(user, input.Token); err != nil {
			return err
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}
		user.PasswordHash = newHash
		user.ClearResetToken()

		// Anything holding an old refresh token is logged out.
		if err := repoFactory.SessionRepo().DeleteByUserID(ctx, user.ID); err != nil {
			return err
		}

		output, err = srv.issuer.IssueLogin(ctx, repoFactory, user, "")

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset redemption failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, err
	}

	srv.sendConfirmationMail(output.User)
	srv.log(ctx).Info("Password reset completed", slog.Any("userID", output.User.ID))

	return output, nil
}

func (srv *resetService) sendConfirmationMail(user *entity.User) {
	msg := &service.MailMessage{
		To:      user.Email,
		Subject: "Your password was changed",
		Text:    "Your password was just changed. If this was not you, reset it immediately.",
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.mailSender.Send(sendCtx, msg); err != nil {
			srv.logger.Error("Failed to send password change confirmation mail", slog.Any("error", err))
		}
	}()
}
