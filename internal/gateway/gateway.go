// Package gateway : единая точка входа. Маршрутизирует /{service}/{path} по таблице
// сервисов, проверяет токен для непубличных маршрутов и ограничивает частоту запросов.
package gateway

import (
	"auth-fabric/config"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Gateway struct {
	registry  *Registry
	validator *security.Validator
	limiter   Limiter
	limits    config.RateLimitConfig
	window    time.Duration
	proxy     *Proxy
	proxies   *util.TrustedProxies
	started   time.Time
}

func New(registry *Registry, validator *security.Validator, limiter Limiter, limits config.RateLimitConfig, timeout time.Duration) *Gateway {
	return &Gateway{
		registry:  registry,
		validator: validator,
		limiter:   limiter,
		limits:    limits,
		window:    limits.WindowDuration(),
		proxy:     NewProxy(timeout),
		started:   time.Now(),
	}
}

// WithTrustedProxies : X-Forwarded-For учитывается только от этих адресов
func (g *Gateway) WithTrustedProxies(proxies *util.TrustedProxies) *Gateway {
	g.proxies = proxies
	return g
}

// Register : маршруты шлюза
func (g *Gateway) Register(r chi.Router) {
	r.Get("/", g.Root)
	r.Get("/about", g.About)
	r.Get("/health", g.Health)
	r.Get("/health/detailed", g.DetailedHealth)
	r.HandleFunc("/{service}", g.Dispatch)
	r.HandleFunc("/{service}/*", g.Dispatch)
}

// Dispatch : проверки по порядку: сервис, rate limit, токен, проксирование
func (g *Gateway) Dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service")
	service, ok := g.registry.Lookup(name)
	if !ok {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	path := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	public := service.IsPublic(path)

	clientIP := g.proxies.ClientIP(r)
	if !g.rateLimit(w, r, clientIP, public && service.Name == "auth") {
		return
	}

	if !public {
		token, err := security.BearerToken(r.Header.Get("Authorization"))
		if err == nil {
			_, err = g.validator.ValidateForService(token, service.Audience())
		}
		if err != nil {
			zap.L().Info("[Gateway] запрос отклонён",
				zap.String("service", service.Name), zap.String("path", path), zap.Error(err))
			security.WriteAuthError(w, err)
			return
		}
	}

	g.proxy.Forward(w, r, service, path, clientIP)
}

// Root : информация о шлюзе
func (g *Gateway) Root(w http.ResponseWriter, _ *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "API Gateway",
		"services":    g.registry.Names(),
		"version":     envOr("API_VERSION", "1.0.0"),
		"environment": envOr("ENVIRONMENT", "development"),
	})
}

func (g *Gateway) About(w http.ResponseWriter, _ *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"name":               "Authentication System API Gateway",
		"description":        "API Gateway for the centralized authentication system",
		"version":            envOr("API_VERSION", "1.0.0"),
		"services_available": len(g.registry.Names()),
	})
}

func (g *Gateway) Health(w http.ResponseWriter, _ *http.Request) {
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"services": g.registry.Names(),
	})
}

// DetailedHealth : адреса сервисов и время работы шлюза
func (g *Gateway) DetailedHealth(w http.ResponseWriter, _ *http.Request) {
	services := make(map[string]any, len(g.registry.Names()))
	for _, name := range g.registry.Names() {
		service, _ := g.registry.Lookup(name)
		services[name] = map[string]string{"status": "up", "url": service.URL.String()}
	}

	util.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"services": services,
		"uptime":   time.Since(g.started).Round(time.Second).String(),
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
