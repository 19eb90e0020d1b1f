package main

import (
	"context"
	"log/slog"
	"os"

	"gatekit/config"
	"gatekit/internal/delivery"
	"gatekit/internal/delivery/http"
	"gatekit/internal/delivery/http/middleware"
	"gatekit/internal/delivery/http/router/handler"
	"gatekit/internal/infra/auth"
	logs "gatekit/internal/infra/log"
	"gatekit/internal/infra/notify"
	"gatekit/internal/infra/oauth"
	"gatekit/internal/infra/otp"
	"gatekit/internal/infra/persistence/postgres"
	"gatekit/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewIdentityRepository,
			postgres.NewSessionRepository,
			postgres.NewLoginAttemptRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			otp.NewTOTPService,
			otp.NewQRCodeService,
			notify.NewBrevoMailer,
			notify.NewTwilioSMS,
			oauth.NewRegistry,
			oauth.NewStateStore,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccountService,
			impl.NewFederatedService,
			impl.NewResetService,
			impl.NewTwoFactorService,
			impl.NewProfileService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAccountHandler,
			handler.NewOAuthHandler,
			handler.NewResetHandler,
			handler.NewTwoFactorHandler,
			handler.NewProfileHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
