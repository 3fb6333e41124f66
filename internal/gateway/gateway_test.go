package gateway

import (
	"auth-fabric/config"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gateway-test-secret"

type echo struct {
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Query  string      `json:"query"`
	Body   string      `json:"body"`
	Header http.Header `json:"header"`
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Backend", "yes")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(echo{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

type gatewayFixture struct {
	router *chi.Mux
	codec  *security.Codec
	now    time.Time
}

func newGatewayFixture(t *testing.T, services map[string]config.ServiceConfig, limits config.RateLimitConfig, proxies ...string) *gatewayFixture {
	t.Helper()

	codec, err := security.NewCodec([]byte(testSecret), "HS256")
	require.NoError(t, err)

	now := time.Now()
	registry, err := NewRegistry(services)
	require.NoError(t, err)

	if limits.Window == "" {
		limits.Window = "1m"
	}
	trusted, err := util.ParseTrustedProxies(proxies)
	require.NoError(t, err)
	gw := New(registry, security.NewValidator(codec), NewMemoryLimiter(), limits, 2*time.Second).WithTrustedProxies(trusted)

	router := chi.NewRouter()
	gw.Register(router)
	return &gatewayFixture{router: router, codec: codec, now: now}
}

func (f *gatewayFixture) token(t *testing.T, tokenType string, audience ...string) string {
	t.Helper()
	token, err := f.codec.Encode(&security.Claims{
		Roles:     []string{"user"},
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(f.now),
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func (f *gatewayFixture) do(method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	return f.doFrom("192.0.2.10:5555", "", method, target, token, body)
}

func (f *gatewayFixture) doFrom(remote, forwarded, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func defaultLimits() config.RateLimitConfig {
	return config.RateLimitConfig{RequestsPerWindow: 100, AuthPublicLimit: 100, Window: "1m"}
}

func TestGateway_ProxiesAuthorizedRequest(t *testing.T) {
	backend := newBackend(t)
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"pdf": {URL: backend.URL},
	}, defaultLimits())

	rec := f.do(http.MethodPost, "/pdf/documents/1?full=true", f.token(t, security.TokenTypeAccess, "pdf-service"), strings.NewReader(`{"title":"x"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Backend"))

	var got echo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/documents/1", got.Path)
	assert.Equal(t, "full=true", got.Query)
	assert.Equal(t, `{"title":"x"}`, got.Body)
	assert.True(t, strings.HasPrefix(got.Header.Get("Authorization"), "Bearer "))
	assert.Equal(t, "192.0.2.10", got.Header.Get("X-Forwarded-For"))
}

func TestGateway_AuthDecisions(t *testing.T) {
	backend := newBackend(t)
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"auth": {URL: backend.URL, PublicRoutes: []string{"/token", "/register"}, SkipAudience: true},
		"pdf":  {URL: backend.URL},
		"chat": {URL: backend.URL},
	}, defaultLimits())

	tests := []struct {
		name   string
		target string
		token  string
		want   int
	}{
		{name: "публичный маршрут без токена", target: "/auth/token", want: http.StatusCreated},
		{name: "публичный префикс", target: "/auth/token/refresh", want: http.StatusCreated},
		{name: "нет токена", target: "/pdf/documents", want: http.StatusUnauthorized},
		{name: "чужой aud", target: "/pdf/documents", token: f.token(t, security.TokenTypeAccess, "chat-service"), want: http.StatusUnauthorized},
		{name: "refresh вместо access", target: "/pdf/documents", token: f.token(t, security.TokenTypeRefresh, "pdf-service"), want: http.StatusUnauthorized},
		{name: "мусор", target: "/pdf/documents", token: "garbage", want: http.StatusUnauthorized},
		{name: "непубличный маршрут auth", target: "/auth/users/me", want: http.StatusUnauthorized},
		{name: "auth не проверяет aud", target: "/auth/users/me", token: f.token(t, security.TokenTypeAccess, "pdf-service"), want: http.StatusCreated},
		{name: "auth требует access", target: "/auth/users/me", token: f.token(t, security.TokenTypeRefresh), want: http.StatusUnauthorized},
		{name: "свой aud", target: "/chat/rooms", token: f.token(t, security.TokenTypeAccess, "chat-service"), want: http.StatusCreated},
		{name: "неизвестный сервис", target: "/billing/x", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestGateway_ServiceUnavailable(t *testing.T) {
	backend := newBackend(t)
	url := backend.URL
	backend.Close()

	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"pdf": {URL: url},
	}, defaultLimits())

	rec := f.do(http.MethodGet, "/pdf/documents", f.token(t, security.TokenTypeAccess, "pdf-service"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGateway_RateLimit(t *testing.T) {
	backend := newBackend(t)
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"auth": {URL: backend.URL, PublicRoutes: []string{"/token"}},
		"pdf":  {URL: backend.URL},
	}, config.RateLimitConfig{RequestsPerWindow: 3, AuthPublicLimit: 2, Window: "1m"})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/auth/token", "", nil).Code)
	}
	rec := f.do(http.MethodPost, "/auth/token", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	token := f.token(t, security.TokenTypeAccess, "pdf-service")
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, f.do(http.MethodGet, "/pdf/documents", token, nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/pdf/documents", token, nil).Code)
}

// Подмена X-Forwarded-For клиентом не даёт новых окон лимита
func TestGateway_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	backend := newBackend(t)
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"auth": {URL: backend.URL, PublicRoutes: []string{"/token"}},
	}, config.RateLimitConfig{RequestsPerWindow: 100, AuthPublicLimit: 5, Window: "1m"})

	passed := 0
	for i := 0; i < 50; i++ {
		rec := f.doFrom("192.0.2.10:5555", fmt.Sprintf("198.51.100.%d", i), http.MethodPost, "/auth/token", "", nil)
		if rec.Code != http.StatusTooManyRequests {
			passed++
		}
	}
	assert.Equal(t, 5, passed)
}

// За доверенным прокси клиенты различаются по X-Forwarded-For
func TestGateway_RateLimitBehindTrustedProxy(t *testing.T) {
	backend := newBackend(t)
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"auth": {URL: backend.URL, PublicRoutes: []string{"/token"}},
	}, config.RateLimitConfig{RequestsPerWindow: 100, AuthPublicLimit: 1, Window: "1m"}, "10.0.0.0/8")

	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      int
	}{
		{name: "первый клиент", remote: "10.0.0.2:1000", forwarded: "198.51.100.1", want: http.StatusCreated},
		{name: "второй клиент через тот же прокси", remote: "10.0.0.2:1000", forwarded: "198.51.100.2", want: http.StatusCreated},
		{name: "первый клиент снова", remote: "10.0.0.2:1000", forwarded: "198.51.100.1", want: http.StatusTooManyRequests},
		{name: "подделка слева от настоящего адреса", remote: "10.0.0.2:1000", forwarded: "203.0.113.99, 198.51.100.2", want: http.StatusTooManyRequests},
		{name: "недоверенный источник с заголовком", remote: "192.0.2.50:1000", forwarded: "198.51.100.3", want: http.StatusCreated},
		{name: "недоверенный источник, другой заголовок", remote: "192.0.2.50:1000", forwarded: "198.51.100.4", want: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.doFrom(tt.remote, tt.forwarded, http.MethodPost, "/auth/token", "", nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGateway_InfoRoutes(t *testing.T) {
	f := newGatewayFixture(t, map[string]config.ServiceConfig{
		"pdf":  {URL: "http://pdf-service:8001"},
		"chat": {URL: "http://chat-service:8003"},
	}, defaultLimits())

	rec := f.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status   string   `json:"status"`
		Services []string `json:"services"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, []string{"chat", "pdf"}, health.Services)

	rec = f.do(http.MethodGet, "/health/detailed", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://pdf-service:8001")

	rec = f.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "API Gateway")

	rec = f.do(http.MethodGet, "/about", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"services_available":2`)
}

func TestNewRegistry_InvalidURL(t *testing.T) {
	_, err := NewRegistry(map[string]config.ServiceConfig{"pdf": {URL: "pdf-service"}})
	assert.Error(t, err)
}

func TestService_IsPublic(t *testing.T) {
	s := &Service{Name: "auth", PublicRoutes: []string{"/token", "/login/google"}}

	assert.True(t, s.IsPublic("/token"))
	assert.True(t, s.IsPublic("/token/refresh"))
	assert.True(t, s.IsPublic("/login/google"))
	assert.False(t, s.IsPublic("/users/me"))
	assert.Equal(t, "auth-service", s.Audience())

	s.SkipAudience = true
	assert.Empty(t, s.Audience())
}
