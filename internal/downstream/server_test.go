package downstream

import (
	"auth-fabric/internal/security"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, name string) (*Server, *security.Codec) {
	t.Helper()
	codec, err := security.NewCodec([]byte("downstream-secret"), "HS256")
	require.NoError(t, err)

	authenticator := security.NewServiceAuthenticator(security.NewValidator(codec), name)
	return NewServer(authenticator, zap.NewNop()), codec
}

func issue(t *testing.T, codec *security.Codec, roles, permissions []string, audience ...string) string {
	t.Helper()
	now := time.Now()
	token, err := codec.Encode(&security.Claims{
		Email:       "user@example.com",
		Roles:       roles,
		Permissions: permissions,
		TokenType:   security.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return token
}

func get(s *Server, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, "chat-service")

	rec := get(s, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chat-service")
}

func TestServer_Me(t *testing.T) {
	s, codec := newTestServer(t, "flashcard-service")

	rec := get(s, "/me", issue(t, codec, []string{"user"}, []string{"read:own"}, "flashcard-service"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Header().Get("X-User-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "user@example.com", body["email"])
	assert.Equal(t, "flashcard-service", body["service"])
}

func TestServer_AccessDecisions(t *testing.T) {
	s, codec := newTestServer(t, "chat-service")

	reader := issue(t, codec, []string{"user"}, []string{"read:own"}, "chat-service")
	noPerms := issue(t, codec, []string{"user"}, nil, "chat-service")
	admin := issue(t, codec, []string{"admin"}, nil, "chat-service")
	foreign := issue(t, codec, []string{"admin"}, []string{"read:own"}, "pdf-service")

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{name: "нет токена", path: "/me", want: http.StatusUnauthorized},
		{name: "чужой aud", path: "/me", token: foreign, want: http.StatusUnauthorized},
		{name: "есть разрешение", path: "/items", token: reader, want: http.StatusOK},
		{name: "нет разрешения", path: "/items", token: noPerms, want: http.StatusForbidden},
		{name: "admin", path: "/admin/stats", token: admin, want: http.StatusOK},
		{name: "не admin", path: "/admin/stats", token: reader, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(s, tt.path, tt.token).Code)
		})
	}
}
