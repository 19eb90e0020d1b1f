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

// twoFactorService implements the TwoFactorUsecase interface: enrollment of
// TOTP and SMS second factors, and the per-login step-up challenge.
type twoFactorService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	totpService  service.TOTPService
	qrService    service.QRCodeService
	smsSender    service.SMSSender
	smsCodeTTL   time.Duration
	logger       *slog.Logger
}

// TwoFactorServiceParams holds dependencies for twoFactorService, injected by Fx.
type TwoFactorServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TOTPService  service.TOTPService
	QRService    service.QRCodeService
	SMSSender    service.SMSSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewTwoFactorService is the constructor for twoFactorService.
func NewTwoFactorService(params TwoFactorServiceParams) usecase.TwoFactorUsecase {
	return &twoFactorService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		totpService:  params.TOTPService,
		qrService:    params.QRService,
		smsSender:    params.SMSSender,
		smsCodeTTL:   params.Config.Auth.SMSCodeTTL,
		logger:       params.Logger,
	}
}

func (srv *twoFactorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SetupTOTP generates the shared secret and provisioning material for an
// authenticator app. Until the enrollment is confirmed, repeat calls return
// the same secret so the user can reload the QR page safely. An enabled
// factor must be disabled first; overwriting the active secret with an
// unconfirmed one would lock the user out of every step-up login until
// they re-confirm.
func (srv *twoFactorService) SetupTOTP(ctx context.Context, userID uuid.UUID) (*usecase.SetupTOTPOutput, error) {
	user, err := srv.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.TwoFactor.Enabled {
		return nil, domainerrors.ErrTwoFactorAlreadyEnabled
	}

	secret := user.TwoFactor.TOTPSecret
	if secret == "" {
		secret, err = srv.totpService.GenerateSecret()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate totp secret")
		}

		user.TwoFactor.TOTPSecret = secret
		user.TwoFactor.TOTPPeriod = srv.totpService.Period()
		if err := srv.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	uri, err := srv.totpService.ProvisioningURI(secret, user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build provisioning uri")
	}
	png, err := srv.qrService.GeneratePNG(uri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render provisioning qr code")
	}

	return &usecase.SetupTOTPOutput{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCodePNG:       png,
	}, nil
}

// ConfirmTOTP verifies a code against the pending secret and enables TOTP.
func (srv *twoFactorService) ConfirmTOTP(ctx context.Context, input *usecase.ConfirmCodeInput) error {
	user, err := srv.findUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	if user.TwoFactor.TOTPSecret == "" {
		return domainerrors.ErrTwoFactorNotPending
	}
	if !srv.totpService.Validate(input.Code, user.TwoFactor.TOTPSecret) {
		return domainerrors.ErrInvalidTwoFactorCode
	}

	user.TwoFactor.Enabled = true
	user.TwoFactor.Type = entity.TwoFactorTypeTOTP
	user.TwoFactor.ClearPendingSMS()
	user.TwoFactor.PendingSMSPhone = ""
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return err
	}

	srv.log(ctx).Info("TOTP second factor enabled", slog.Any("userID", user.ID))

	return nil
}

// SetupSMS sends a verification code to the candidate phone number. A still
// valid pending code for the same number is not regenerated. Like TOTP,
// enrollment is only open while no factor is enabled.
func (srv *twoFactorService) SetupSMS(ctx context.Context, input *usecase.SetupSMSInput) error {
	user, err := srv.findUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	if user.TwoFactor.Enabled {
		return domainerrors.ErrTwoFactorAlreadyEnabled
	}

	now := time.Now()
	if user.TwoFactor.HasPendingSMSCode(now) && user.TwoFactor.PendingSMSPhone == input.Phone {
		return nil
	}

	if err := srv.sendCode(ctx, user, input.Phone, now); err != nil {
		return err
	}

	return srv.userRepo.Update(ctx, user)
}

// sendCode stores a fresh hashed code on the user and dispatches it to the
// given phone number.
func (srv *twoFactorService) sendCode(ctx context.Context, user *entity.User, phone string, now time.Time) error {
	code, err := generateSMSCode()
	if err != nil {
		return err
	}
	codeHash, err := srv.hasher.Hash(code)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash sms code")
	}

	expires := now.Add(srv.smsCodeTTL)
	user.TwoFactor.PendingSMSHash = codeHash
	user.TwoFactor.PendingSMSPhone = phone
	user.TwoFactor.PendingSMSExpires = &expires

	body := fmt.Sprintf("Your verification code is %s", code)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.smsSender.Send(sendCtx, phone, body); err != nil {
			srv.logger.Error("Failed to send verification sms", slog.Any("error", err))
		}
	}()

	return nil
}

// ConfirmSMS verifies the received code and enables SMS as the second factor.
// The confirmed phone number becomes the account's phone.
func (srv *twoFactorService) ConfirmSMS(ctx context.Context, input *usecase.ConfirmCodeInput) error {
	user, err := srv.findUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	if !user.TwoFactor.HasPendingSMSCode(time.Now()) {
		return domainerrors.ErrTwoFactorNotPending
	}
	if !srv.hasher.Check(input.Code, user.TwoFactor.PendingSMSHash) {
		return domainerrors.ErrInvalidTwoFactorCode
	}

	user.TwoFactor.Enabled = true
	user.TwoFactor.Type = entity.TwoFactorTypeSMS
	user.Profile.Phone = user.TwoFactor.PendingSMSPhone
	user.TwoFactor.ClearPendingSMS()
	user.TwoFactor.PendingSMSPhone = ""
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return err
	}

	srv.log(ctx).Info("SMS second factor enabled", slog.Any("userID", user.ID))

	return nil
}

// Disable turns the second factor off immediately. Opt-out requires no
// re-verification; all enrollment material is discarded.
func (srv *twoFactorService) Disable(ctx context.Context, userID uuid.UUID) error {
	user, err := srv.findUser(ctx, userID)
	if err != nil {
		return err
	}

	user.TwoFactor.Disable()
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return err
	}

	srv.log(ctx).Info("Second factor disabled", slog.Any("userID", userID))

	return nil
}

// VerifyChallenge completes a pending login step-up: the code is verified
// against the enrolled factor, the session is marked verified and the token
// pair withheld at login is finally issued.
func (srv *twoFactorService) VerifyChallenge(ctx context.Context, input *usecase.VerifyChallengeInput) (*usecase.VerifyChallengeOutput, error) {
	claims, err := srv.tokenService.ValidateChallengeToken(input.ChallengeToken)
	if err != nil {
		return nil, domainerrors.ErrTokenExpiredOrInvalid.WrapMessage("invalid challenge token")
	}

	var output *usecase.VerifyChallengeOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, claims.SessionID)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domainerrors.ErrSessionInvalid
		}
		if err != nil {
			return errors.Wrap(err, "failed to find step-up session")
		}
		if session.SecondFactorVerified || session.UserID != claims.UserID {
			return domainerrors.ErrSessionInvalid
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user for step-up")
		}

		if err := srv.verifyFactor(user, input.Code); err != nil {
			return err
		}

		accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user.ID, session.ID, true)
		if err != nil {
			return errors.Wrap(err, "failed to generate token pair after step-up")
		}

		session.SecondFactorVerified = true
		session.TokenHash = hashToken(refreshToken)
		session.ExpiresAt = time.Now().Add(srv.tokenService.RefreshTokenDuration())
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}
		if err := repoFactory.UserRepo().Update(ctx, user); err != nil {
			return err
		}

		output = &usecase.VerifyChallengeOutput{
			User:         user,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			AttemptedURL: session.AttemptedURL,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Step-up verification failed", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Step-up verification succeeded", slog.Any("userID", output.User.ID))

	return output, nil
}

// verifyFactor checks a step-up code against whichever factor is enrolled.
// A consumed SMS code is cleared so it cannot be replayed.
func (srv *twoFactorService) verifyFactor(user *entity.User, code string) error {
	switch user.TwoFactor.Type {
	case entity.TwoFactorTypeTOTP:
		if !srv.totpService.Validate(code, user.TwoFactor.TOTPSecret) {
			return domainerrors.ErrInvalidTwoFactorCode
		}
	case entity.TwoFactorTypeSMS:
		if !user.TwoFactor.HasPendingSMSCode(time.Now()) {
			return domainerrors.ErrInvalidTwoFactorCode
		}
		if !srv.hasher.Check(code, user.TwoFactor.PendingSMSHash) {
			return domainerrors.ErrInvalidTwoFactorCode
		}
		user.TwoFactor.ClearPendingSMS()
	default:
		return domainerrors.ErrTwoFactorNotPending
	}

	return nil
}

// ResendChallenge sends a fresh SMS code for a pending step-up. A new code
// always replaces the previous one.
func (srv *twoFactorService) ResendChallenge(ctx context.Context, challengeToken string) error {
	claims, err := srv.tokenService.ValidateChallengeToken(challengeToken)
	if err != nil {
		return domainerrors.ErrTokenExpiredOrInvalid.WrapMessage("invalid challenge token")
	}

	user, err := srv.findUser(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if !user.TwoFactor.Enabled || user.TwoFactor.Type != entity.TwoFactorTypeSMS {
		return domainerrors.ErrTwoFactorNotPending
	}

	if err := srv.sendCode(ctx, user, user.Profile.Phone, time.Now()); err != nil {
		return err
	}

	return srv.userRepo.Update(ctx, user)
}

func (srv *twoFactorService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}
