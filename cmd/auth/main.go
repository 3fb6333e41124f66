package main

import (
	"auth-fabric/config"
	_ "auth-fabric/docs"
	"auth-fabric/internal/handler"
	"auth-fabric/internal/logging"
	"auth-fabric/internal/migrations"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/security"
	"auth-fabric/internal/service"
	"context"

	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title auth-fabric: auth service
// @version 1.0
// @description Регистрация, выдача и ротация токенов, пользователи и вебхуки

// @host localhost:8000

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("ошибка загрузки конфигурации", zap.Error(err))
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("ошибка настройки логгера", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	codec, err := security.NewCodec([]byte(cfg.JWT.SecretKey), cfg.JWT.Algorithm)
	if err != nil {
		logger.Fatal("некорректные настройки JWT", zap.Error(err))
	}

	var (
		users    ports.UserRepository
		refresh  ports.RefreshTokenStore
		webhooks ports.WebhookRepository
	)

	switch cfg.Storage.Mode {
	case "memory":
		logger.Warn("данные хранятся в памяти и пропадут при перезапуске")
		users = repository.NewMemoryUserRepository()
		refresh = repository.NewMemoryRefreshTokenRepository()
		webhooks = repository.NewMemoryWebhookRepository()
	default:
		db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
		if err != nil {
			logger.Fatal("не удалось подключиться к БД", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("ошибка при закрытии БД", zap.Error(err))
			}
		}()

		if cfg.DatabaseConfig.Migrate {
			if err := db.Migrate(ctx, migrations.Auth, migrations.AuthDir); err != nil {
				logger.Fatal("ошибка миграций", zap.Error(err))
			}
		}

		users = repository.NewUserRepository(db)
		refresh = repository.NewRefreshTokenRepository(db)
		webhooks = repository.NewWebhookRepository(db)
	}

	tokenService := service.NewTokenService(codec, refresh, users, cfg.JWT)
	webhookService := service.NewWebhookService(webhooks, cfg.Webhook.TimeoutDuration())
	defer webhookService.Wait()

	var google ports.GoogleProvider
	if cfg.Google.ClientID != "" {
		google = service.NewGoogleOAuthProvider(cfg.Google)
	} else {
		logger.Info("GOOGLE_CLIENT_ID не задан, вход через Google отключён")
	}

	authService := service.NewAuthenticationService(users, tokenService, webhookService, google)
	userService := service.NewUserService(users, tokenService, webhookService)

	// auth сервис принимает любой свой access токен, aud не проверяется
	authenticator := security.NewServiceAuthenticator(security.NewValidator(codec), "")

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.Recoverer)
	router.Use(logging.Middleware(logger))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	handler.SetupAuthRoutes(router,
		handler.NewAuthenticationHandler(authService, cfg.Google.FrontendURL),
		handler.NewUserHandler(userService),
		handler.NewWebhookHandler(webhookService),
		authenticator,
	)

	config.RunServer(ctx, srv)
}
