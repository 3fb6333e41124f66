package main

import (
	"auth-fabric/config"
	"auth-fabric/internal/handler"
	"auth-fabric/internal/logging"
	"auth-fabric/internal/migrations"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/security"
	"auth-fabric/internal/service"
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultServiceName = "pdf-service"

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

	name := cfg.Service.Name
	if name == "" {
		name = defaultServiceName
	}

	codec, err := security.NewCodec([]byte(cfg.JWT.SecretKey), cfg.JWT.Algorithm)
	if err != nil {
		logger.Fatal("некорректные настройки JWT", zap.Error(err))
	}

	var (
		documents ports.DocumentRepository
		audit     ports.AuditRepository
		cache     ports.CacheRepository
		storage   ports.S3Storage
	)

	switch cfg.Storage.Mode {
	case "memory":
		logger.Warn("данные хранятся в памяти и пропадут при перезапуске")
		memory := repository.NewMemoryDocumentRepository()
		documents, audit = memory, memory
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
			if err := db.Migrate(ctx, migrations.PDF, migrations.PDFDir); err != nil {
				logger.Fatal("ошибка миграций", zap.Error(err))
			}
		}

		documents = repository.NewDocumentRepository(db)
		audit = repository.NewAuditRepository(db)
	}

	ttl := time.Duration(cfg.TTL.S3AndRedis) * time.Second

	if cfg.RedisConfig.Addr != "" {
		redisClient, err := config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("ошибка при закрытии Redis", zap.Error(err))
			}
		}()
		cache = repository.NewCacheRepository(redisClient.Client, ttl)
	}

	if cfg.S3Config.Enabled {
		s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
		if err != nil {
			logger.Fatal("ошибка настройки S3", zap.Error(err))
		}
		storage = s3Service
	}

	documentService := service.NewDocumentService(documents, audit, cache, storage, ttl)
	authenticator := security.NewServiceAuthenticator(security.NewValidator(codec), name)

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.Recoverer)
	router.Use(logging.Middleware(logger))

	handler.SetupDocumentRoutes(router, handler.NewDocumentHandler(documentService, 10*time.Second), authenticator)

	config.RunServer(ctx, srv)
}
