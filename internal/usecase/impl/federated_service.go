package impl

import (
	"context"
	"log/slog"

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

// federatedService implements the FederatedUsecase interface. Its core is the
// account-linking resolver: every completed provider handshake lands in
// Resolve, which decides between returning login, explicit linking, silent
// email merge and fresh registration.
type federatedService struct {
	txManager    repository.TransactionManager
	identityRepo repository.IdentityRepository
	issuer       *sessionIssuer
	logger       *slog.Logger
}

// FederatedServiceParams holds dependencies for federatedService, injected by Fx.
type FederatedServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	IdentityRepo repository.IdentityRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	SMSSender    service.SMSSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewFederatedService is the constructor for federatedService.
func NewFederatedService(params FederatedServiceParams) usecase.FederatedUsecase {
	return &federatedService{
		txManager:    params.TxManager,
		identityRepo: params.IdentityRepo,
		issuer: &sessionIssuer{
			tokenService: params.TokenService,
			hasher:       params.Hasher,
			smsSender:    params.SMSSender,
			smsCodeTTL:   params.Config.Auth.SMSCodeTTL,
			challengeTTL: params.Config.Auth.ChallengeTTL,
			logger:       params.Logger,
		},
		logger: params.Logger,
	}
}

func (srv *federatedService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Resolve applies the account-linking decision table to a completed handshake:
//  1. An authenticated user linking a new provider: conflict if the identity
//     already belongs to someone else, otherwise attach.
//  2. A known identity: returning login.
//  3. An unknown identity whose provider-asserted email matches an existing
//     account: silent merge, the identity is attached to that account.
//  4. Otherwise: a brand-new account is registered from the profile.
func (srv *federatedService) Resolve(ctx context.Context, input *usecase.ResolveFederatedInput) (*usecase.LoginOutput, error) {
	profile := input.Profile
	srv.log(ctx).Info("Resolving federated handshake",
		slog.String("provider", string(profile.Provider)),
		slog.String("providerUserID", profile.ProviderUserID),
		slog.Bool("link", input.LinkUserID != nil),
	)

	var output *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		existing, err := identityRepo.FindByProvider(ctx, profile.Provider, profile.ProviderUserID)
		if err != nil && !errors.Is(err, repository.ErrIdentityNotFound) {
			return errors.Wrap(err, "failed to look up federated identity")
		}

		if input.LinkUserID != nil {
			output, err = srv.resolveLink(ctx, repoFactory, profile, existing, *input.LinkUserID)

			return err
		}

		if existing != nil {
			output, err = srv.resolveReturning(ctx, repoFactory, profile, existing, input.AttemptedURL)

			return err
		}

		if profile.Provider.SuppliesEmail() && profile.Email != "" {
			user, err := repoFactory.UserRepo().FindByEmail(ctx, normalizeEmail(profile.Email))
			if err == nil {
				output, err = srv.resolveMerge(ctx, repoFactory, profile, user, input.AttemptedURL)

				return err
			}
			if !errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(err, "failed to look up account by provider email")
			}
		}

		output, err = srv.resolveRegister(ctx, repoFactory, profile, input.AttemptedURL)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Federated resolve failed",
			slog.String("provider", string(profile.Provider)),
			slog.Any("error", err),
		)

		return nil, err
	}

	return output, nil
}

// resolveLink attaches the identity to an already-authenticated account.
// No new session is issued; the user is already logged in.
func (srv *federatedService) resolveLink(ctx context.Context, repoFactory repository.RepositoryFactory, profile *entity.FederatedProfile, existing *entity.FederatedIdentity, linkUserID uuid.UUID) (*usecase.LoginOutput, error) {
	if existing != nil && existing.UserID != linkUserID {
		return nil, domainerrors.ErrProviderAlreadyLinked
	}

	user, err := repoFactory.UserRepo().FindByID(ctx, linkUserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find linking user")
	}

	if existing != nil {
		existing.AccessToken = profile.AccessToken
		existing.TokenSecret = profile.TokenSecret
		if err := repoFactory.IdentityRepo().Update(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		if err := srv.ensureProviderFree(ctx, repoFactory, user.ID, profile.Provider); err != nil {
			return nil, err
		}
		if err := srv.attachIdentity(ctx, repoFactory, profile, user.ID); err != nil {
			return nil, err
		}
	}

	user.BackfillProfile(profile)
	if err := repoFactory.UserRepo().Update(ctx, user); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Linked federated identity",
		slog.Any("userID", user.ID),
		slog.String("provider", string(profile.Provider)),
	)

	return &usecase.LoginOutput{User: user}, nil
}

// resolveReturning logs in the owner of a known identity, refreshing the
// stored provider tokens along the way.
func (srv *federatedService) resolveReturning(ctx context.Context, repoFactory repository.RepositoryFactory, profile *entity.FederatedProfile, existing *entity.FederatedIdentity, attemptedURL string) (*usecase.LoginOutput, error) {
	user, err := repoFactory.UserRepo().FindByID(ctx, existing.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find identity owner")
	}

	existing.AccessToken = profile.AccessToken
	existing.TokenSecret = profile.TokenSecret
	if err := repoFactory.IdentityRepo().Update(ctx, existing); err != nil {
		return nil, err
	}

	return srv.issuer.IssueLogin(ctx, repoFactory, user, attemptedURL)
}

// resolveMerge silently attaches a new identity to the existing account that
// owns the provider-asserted email, then logs that account in.
func (srv *federatedService) resolveMerge(ctx context.Context, repoFactory repository.RepositoryFactory, profile *entity.FederatedProfile, user *entity.User, attemptedURL string) (*usecase.LoginOutput, error) {
	if err := srv.ensureProviderFree(ctx, repoFactory, user.ID, profile.Provider); err != nil {
		return nil, err
	}
	if err := srv.attachIdentity(ctx, repoFactory, profile, user.ID); err != nil {
		return nil, err
	}

	user.BackfillProfile(profile)

	srv.log(ctx).Info("Merged federated identity into existing account",
		slog.Any("userID", user.ID),
		slog.String("provider", string(profile.Provider)),
	)

	return srv.issuer.IssueLogin(ctx, repoFactory, user, attemptedURL)
}

// resolveRegister creates a brand-new account from the federated profile.
// Providers without email get a synthetic address derived from the handle.
func (srv *federatedService) resolveRegister(ctx context.Context, repoFactory repository.RepositoryFactory, profile *entity.FederatedProfile, attemptedURL string) (*usecase.LoginOutput, error) {
	user := &entity.User{
		ID:    uuid.New(),
		Email: normalizeEmail(profile.SyntheticEmail()),
	}
	user.BackfillProfile(profile)

	if err := repoFactory.UserRepo().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := srv.attachIdentity(ctx, repoFactory, profile, user.ID); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Registered account from federated profile",
		slog.Any("userID", user.ID),
		slog.String("provider", string(profile.Provider)),
	)

	return srv.issuer.IssueLogin(ctx, repoFactory, user, attemptedURL)
}

// ensureProviderFree rejects attaching a second identity of the same provider
// to one account. Each account holds at most one identity per provider;
// Unlink relies on that to address identities by (user, provider).
func (srv *federatedService) ensureProviderFree(ctx context.Context, repoFactory repository.RepositoryFactory, userID uuid.UUID, provider entity.ProviderType) error {
	_, err := repoFactory.IdentityRepo().FindByUserIDAndProvider(ctx, userID, provider)
	if err == nil {
		return domainerrors.ErrProviderAlreadyLinked.WrapMessage("the account already has an identity for this provider")
	}
	if !errors.Is(err, repository.ErrIdentityNotFound) {
		return errors.Wrap(err, "failed to check for an existing provider link")
	}

	return nil
}

func (srv *federatedService) attachIdentity(ctx context.Context, repoFactory repository.RepositoryFactory, profile *entity.FederatedProfile, userID uuid.UUID) error {
	identity := &entity.FederatedIdentity{
		ID:             uuid.New(),
		UserID:         userID,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
		AccessToken:    profile.AccessToken,
		TokenSecret:    profile.TokenSecret,
	}

	return repoFactory.IdentityRepo().Create(ctx, identity)
}

// ListIdentities returns the providers linked to an account.
func (srv *federatedService) ListIdentities(ctx context.Context, userID uuid.UUID) ([]*entity.FederatedIdentity, error) {
	identities, err := srv.identityRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list linked identities")
	}

	return identities, nil
}

// Unlink detaches a provider from an account. The account must retain at
// least one way to log in, so the last identity of a passwordless account
// cannot be removed.
func (srv *federatedService) Unlink(ctx context.Context, userID uuid.UUID, provider entity.ProviderType) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		identity, err := identityRepo.FindByUserIDAndProvider(ctx, userID, provider)
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return domainerrors.ErrIdentityNotLinked
		}
		if err != nil {
			return errors.Wrap(err, "failed to find identity to unlink")
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user for unlink")
		}

		if !user.HasPassword() {
			identities, err := identityRepo.ListByUserID(ctx, userID)
			if err != nil {
				return errors.Wrap(err, "failed to count linked identities")
			}
			if len(identities) <= 1 {
				return domainerrors.ErrForbidden.WrapMessage("cannot remove the account's last login credential")
			}
		}

		return identityRepo.Delete(ctx, identity.ID)
	})
}
