package downstream

import (
	"auth-fabric/config"
	"auth-fabric/internal/logging"
	"auth-fabric/internal/security"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run : общий main для gin сервисов. Имя берётся из SERVICE_NAME, иначе defaultName.
func Run(defaultName string) {
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

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	name := cfg.Service.Name
	if name == "" {
		name = defaultName
	}

	codec, err := security.NewCodec([]byte(cfg.JWT.SecretKey), cfg.JWT.Algorithm)
	if err != nil {
		logger.Fatal("некорректные настройки JWT", zap.Error(err))
	}

	server := NewServer(security.NewServiceAuthenticator(security.NewValidator(codec), name), logger.Named(name))

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	config.RunServer(ctx, srv)
}
