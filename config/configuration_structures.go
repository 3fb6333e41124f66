package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// Migrate : прогонять goose миграции при старте
	Migrate bool `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig : postgres или memory (для локальной разработки и тестов)
type StorageConfig struct {
	Mode string `yaml:"mode"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
	Enabled  bool   `yaml:"enabled"`
}

type JWTConfig struct {
	SecretKey             string   `yaml:"secret_key"`
	Algorithm             string   `yaml:"algorithm"`
	AccessTokenTTLMinutes int      `yaml:"access_token_ttl_minutes"`
	RefreshTokenTTLDays   int      `yaml:"refresh_token_ttl_days"`
	Issuer                string   `yaml:"issuer"`
	Audience              []string `yaml:"audience"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	FrontendURL  string `yaml:"frontend_url"`
}

type ServiceConfig struct {
	URL          string   `yaml:"url"`
	PublicRoutes []string `yaml:"public_routes"`
	// SkipAudience : шлюз не проверяет aud (auth сервис принимает любые свои access токены)
	SkipAudience bool `yaml:"skip_audience"`
}

type RateLimitConfig struct {
	// Backend : redis или memory
	Backend           string `yaml:"backend"`
	RequestsPerWindow int    `yaml:"requests_per_window"`
	AuthPublicLimit   int    `yaml:"auth_public_limit"`
	Window            string `yaml:"window"`
}

type GatewayConfig struct {
	Services     map[string]ServiceConfig `yaml:"services"`
	RateLimit    RateLimitConfig          `yaml:"rate_limit"`
	ProxyTimeout string                   `yaml:"proxy_timeout"`

	// TrustedProxies : CIDR балансировщиков перед шлюзом. Пусто: X-Forwarded-For не читается.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// ServiceAuthConfig : настройки downstream сервиса (pdf, flashcard, chat)
type ServiceAuthConfig struct {
	Name string `yaml:"name"`
}

type WebhookConfig struct {
	Timeout string `yaml:"timeout"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

type TTL struct {
	S3AndRedis int `yaml:"s3_and_redis"`
}
