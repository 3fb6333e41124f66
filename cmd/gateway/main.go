package main

import (
	"auth-fabric/config"
	"auth-fabric/internal/gateway"
	"auth-fabric/internal/logging"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

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

	registry, err := gateway.NewRegistry(cfg.Gateway.Services)
	if err != nil {
		logger.Fatal("некорректная таблица сервисов", zap.Error(err))
	}

	proxies, err := util.ParseTrustedProxies(cfg.Gateway.TrustedProxies)
	if err != nil {
		logger.Fatal("некорректный список trusted_proxies", zap.Error(err))
	}

	var limiter gateway.Limiter
	switch cfg.Gateway.RateLimit.Backend {
	case "redis":
		redisClient, err := config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("ошибка при закрытии Redis", zap.Error(err))
			}
		}()
		limiter = gateway.NewRedisLimiter(redisClient.Client, "ratelimit")
	default:
		limiter = gateway.NewMemoryLimiter()
	}

	logger.Info("таблица сервисов шлюза",
		zap.Strings("services", registry.Names()),
		zap.String("rate_limit_backend", cfg.Gateway.RateLimit.Backend),
	)

	gw := gateway.New(registry, security.NewValidator(codec), limiter, cfg.Gateway.RateLimit, cfg.Gateway.Timeout()).
		WithTrustedProxies(proxies)

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.Recoverer)
	router.Use(logging.Middleware(logger))
	gw.Register(router)

	config.RunServer(ctx, srv)
}
