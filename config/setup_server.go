package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAlgorithm       = "HS256"
	DefaultIssuer          = "auth-service"
	DefaultAccessTTLMinute = 60
	DefaultRefreshTTLDays  = 30
)

// DefaultAudience : сервисы, для которых выдаётся access токен при логине
var DefaultAudience = []string{"pdf-service", "flashcard-service", "chat-service"}

// DefaultServices : таблица сервисов шлюза, URL можно переопределить через <NAME>_SERVICE_URL
func DefaultServices() map[string]ServiceConfig {
	services := map[string]ServiceConfig{
		"auth": {
			URL:          "http://auth-service:8000",
			PublicRoutes: []string{"/token", "/register", "/login/google", "/auth/google", "/token/refresh", "/logout"},
			SkipAudience: true,
		},
		"pdf":       {URL: "http://pdf-service:8001"},
		"flashcard": {URL: "http://flashcard-service:8002"},
		"chat":      {URL: "http://chat-service:8003"},
	}
	for name, svc := range services {
		setString(&svc.URL, strings.ToUpper(name)+"_SERVICE_URL")
		services[name] = svc
	}
	return services
}

type AppConfig struct {
	DatabaseConfig DatabaseConfig    `yaml:"databaseConfig"`
	RedisConfig    RedisConfig       `yaml:"redisConfig"`
	Storage        StorageConfig     `yaml:"storage"`
	ServerAddr     string            `yaml:"serverAddr"`
	S3Config       S3Config          `yaml:"s3Config"`
	JWT            JWTConfig         `yaml:"jwt"`
	Google         GoogleConfig      `yaml:"google"`
	Gateway        GatewayConfig     `yaml:"gateway"`
	Service        ServiceAuthConfig `yaml:"service"`
	Webhook        WebhookConfig     `yaml:"webhook"`
	Logging        LoggingConfig     `yaml:"logging"`
	TTL            TTL               `yaml:"TTL"`
}

// LoadConfig : читает yaml, поверх накладывает переменные окружения и значения по умолчанию.
// Если файла нет, конфиг собирается только из окружения.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyEnv() {
	setString(&c.JWT.SecretKey, "JWT_SECRET_KEY")
	setString(&c.JWT.Algorithm, "JWT_ALGORITHM")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	setInt(&c.JWT.AccessTokenTTLMinutes, "ACCESS_TOKEN_EXPIRE_MINUTES")
	setInt(&c.JWT.RefreshTokenTTLDays, "REFRESH_TOKEN_EXPIRE_DAYS")
	setString(&c.DatabaseConfig.DSN, "DATABASE_URL")
	setString(&c.RedisConfig.Addr, "REDIS_ADDR")
	setString(&c.ServerAddr, "SERVER_ADDR")
	setString(&c.Storage.Mode, "STORAGE_MODE")
	setString(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&c.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&c.Google.FrontendURL, "FRONTEND_URL")
	setString(&c.Service.Name, "SERVICE_NAME")
	if v := os.Getenv("TRUSTED_PROXIES"); strings.TrimSpace(v) != "" {
		c.Gateway.TrustedProxies = strings.Split(v, ",")
	}
}

// ApplyDefaults : заполняет незаданные поля
func (c *AppConfig) ApplyDefaults() {
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = DefaultAlgorithm
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = DefaultIssuer
	}
	if c.JWT.AccessTokenTTLMinutes <= 0 {
		c.JWT.AccessTokenTTLMinutes = DefaultAccessTTLMinute
	}
	if c.JWT.RefreshTokenTTLDays <= 0 {
		c.JWT.RefreshTokenTTLDays = DefaultRefreshTTLDays
	}
	if len(c.JWT.Audience) == 0 {
		c.JWT.Audience = append([]string(nil), DefaultAudience...)
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.Storage.Mode == "" {
		c.Storage.Mode = "postgres"
	}
	if len(c.Gateway.Services) == 0 {
		c.Gateway.Services = DefaultServices()
	}
	if c.Gateway.RateLimit.Backend == "" {
		c.Gateway.RateLimit.Backend = "memory"
	}
	if c.Gateway.RateLimit.RequestsPerWindow <= 0 {
		c.Gateway.RateLimit.RequestsPerWindow = 60
	}
	if c.Gateway.RateLimit.AuthPublicLimit <= 0 {
		c.Gateway.RateLimit.AuthPublicLimit = 5
	}
	if c.Gateway.RateLimit.Window == "" {
		c.Gateway.RateLimit.Window = "1m"
	}
	if c.Gateway.ProxyTimeout == "" {
		c.Gateway.ProxyTimeout = "30s"
	}
	if c.Webhook.Timeout == "" {
		c.Webhook.Timeout = "5s"
	}
	if c.TTL.S3AndRedis <= 0 {
		c.TTL.S3AndRedis = 300
	}
	if c.Google.FrontendURL == "" {
		c.Google.FrontendURL = "http://localhost:3000"
	}
}

// Validate : проверяет обязательные поля
func (c *AppConfig) Validate() error {
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("не задан jwt.secret_key (JWT_SECRET_KEY)")
	}
	switch c.Storage.Mode {
	case "postgres", "memory":
	default:
		return fmt.Errorf("неизвестный storage.mode: %s", c.Storage.Mode)
	}
	for _, d := range []string{c.Gateway.RateLimit.Window, c.Gateway.ProxyTimeout, c.Webhook.Timeout} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("некорректная длительность %q: %w", d, err)
		}
	}
	return nil
}

func (j JWTConfig) AccessTTL() time.Duration {
	return time.Duration(j.AccessTokenTTLMinutes) * time.Minute
}

func (j JWTConfig) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

// mustDuration : длительности уже проверены в Validate
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (g GatewayConfig) Timeout() time.Duration {
	return mustDuration(g.ProxyTimeout)
}

func (r RateLimitConfig) WindowDuration() time.Duration {
	return mustDuration(r.Window)
}

func (w WebhookConfig) TimeoutDuration() time.Duration {
	return mustDuration(w.Timeout)
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, env string) {
	v, ok := os.LookupEnv(env)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		*dst = n
	}
}
