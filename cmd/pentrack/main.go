package main

import (
	"context"
	"log/slog"
	"os"

	"pentrack/config"
	"pentrack/internal/delivery"
	"pentrack/internal/delivery/http"
	"pentrack/internal/delivery/http/middleware"
	"pentrack/internal/delivery/http/router/handler"
	"pentrack/internal/delivery/sweeper"
	"pentrack/internal/domain/service"
	"pentrack/internal/infra/auth"
	"pentrack/internal/infra/auth/google"
	"pentrack/internal/infra/auth/statestore"
	logs "pentrack/internal/infra/log"
	"pentrack/internal/infra/mail"
	"pentrack/internal/infra/persistence/postgres"
	"pentrack/internal/usecase/impl"

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
			postgres.NewSessionRepository,
			postgres.NewCodeRepository,
			postgres.NewProviderLinkRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewSHA256Hasher,
			auth.NewJWTService,
			newCodeGenerator,
			google.NewOAuthProvider,
			statestore.NewMemoryStore,
			mail.NewSMTPMailer,
		),
	)
}

// newCodeGenerator builds the numeric code generator from configuration.
func newCodeGenerator(cfg *config.Config) service.CodeGenerator {
	return auth.NewNumericGenerator(cfg.Auth.CodeLength)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewSessionService,
			impl.NewOAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAccessMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
			middleware.NewLoggerMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewOTPHandler,
			handler.NewOAuthHandler,
			handler.NewAuthHandler,
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
			fx.Annotate(
				sweeper.NewSweeper,
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
