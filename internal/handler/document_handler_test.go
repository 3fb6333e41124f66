package handler_test

import (
	"auth-fabric/internal/handler"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/security"
	"auth-fabric/internal/service"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newDocumentApp(t *testing.T, storage *MockS3Storage) (*authApp, func(userID string, roles ...string) string) {
	t.Helper()

	codec, err := security.NewCodec([]byte(testSecret), "HS256")
	require.NoError(t, err)

	documents := repository.NewMemoryDocumentRepository()
	var svc *service.DocumentService
	if storage != nil {
		svc = service.NewDocumentService(documents, documents, nil, storage, time.Minute)
	} else {
		svc = service.NewDocumentService(documents, documents, nil, nil, time.Minute)
	}

	router := chi.NewRouter()
	handler.SetupDocumentRoutes(router,
		handler.NewDocumentHandler(svc, 5*time.Second),
		security.NewServiceAuthenticator(security.NewValidator(codec), "pdf-service"),
	)

	issue := func(userID string, roles ...string) string {
		now := time.Now()
		token, err := codec.Encode(&security.Claims{
			Roles:       roles,
			Permissions: []string{"read:own"},
			TokenType:   security.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID,
				Audience:  jwt.ClaimStrings{"pdf-service", "chat-service"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		require.NoError(t, err)
		return token
	}

	return &authApp{router: router, codec: codec}, issue
}

type documentBody struct {
	Document struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		UserID      string  `json:"user_id"`
		StoragePath *string `json:"storage_path"`
	} `json:"document"`
	UploadURL   string `json:"upload_url"`
	DownloadURL string `json:"download_url"`
}

// 1. Владелец создаёт, читает, меняет и удаляет документ; чужой получает 403
func TestDocumentHandler_Ownership(t *testing.T) {
	app, issue := newDocumentApp(t, nil)
	alice := issue("alice", "user")
	bob := issue("bob", "user")
	admin := issue("root", "admin")

	rec := app.doJSON(t, http.MethodPost, "/documents", alice, `{"title":"Договор","content":"текст"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[documentBody](t, rec)
	assert.Equal(t, "alice", created.Document.UserID)
	assert.Empty(t, created.UploadURL)
	id := created.Document.ID

	rec = app.do(t, http.MethodGet, "/documents/"+id, alice, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/documents/"+id, bob, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/documents/"+id, admin, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.doJSON(t, http.MethodPut, "/documents/"+id, bob, `{"title":"взлом"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.doJSON(t, http.MethodPut, "/documents/"+id, alice, `{"title":"Договор v2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Договор v2")

	rec = app.do(t, http.MethodGet, "/documents/"+id+"/audit", alice, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	audit := decode[struct {
		Entries []struct {
			Action string `json:"action"`
		} `json:"entries"`
	}](t, rec)
	actions := make([]string, 0, len(audit.Entries))
	for _, e := range audit.Entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, "created")
	assert.Contains(t, actions, "updated")

	rec = app.do(t, http.MethodDelete, "/documents/"+id, bob, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodDelete, "/documents/"+id, alice, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/documents/"+id, alice, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// 2. Список: свои документы, администратору все; /admin/documents только admin
func TestDocumentHandler_Lists(t *testing.T) {
	app, issue := newDocumentApp(t, nil)
	alice := issue("alice", "user")
	bob := issue("bob", "user")
	admin := issue("root", "admin")

	for _, token := range []string{alice, alice, bob} {
		rec := app.doJSON(t, http.MethodPost, "/documents", token, `{"title":"doc"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	tests := []struct {
		name   string
		target string
		token  string
		want   int
		docs   int
	}{
		{name: "свои документы", target: "/documents", token: alice, want: http.StatusOK, docs: 2},
		{name: "администратор видит все", target: "/documents", token: admin, want: http.StatusOK, docs: 3},
		{name: "admin маршрут", target: "/admin/documents", token: admin, want: http.StatusOK, docs: 3},
		{name: "admin маршрут без роли", target: "/admin/documents", token: bob, want: http.StatusForbidden},
		{name: "лимит", target: "/documents?limit=1", token: admin, want: http.StatusOK, docs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, tt.target, tt.token, nil, "")
			require.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				return
			}
			body := decode[struct {
				Documents []map[string]any `json:"documents"`
			}](t, rec)
			assert.Len(t, body.Documents, tt.docs)
		})
	}
}

// 3. Доступ к pdf сервису: нужен access токен с aud pdf-service
func TestDocumentHandler_Authentication(t *testing.T) {
	app, issue := newDocumentApp(t, nil)

	foreign, err := app.codec.Encode(&security.Claims{
		TokenType: security.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Audience:  jwt.ClaimStrings{"chat-service"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "нет токена", want: http.StatusUnauthorized},
		{name: "мусор", token: "garbage", want: http.StatusUnauthorized},
		{name: "чужой aud", token: foreign, want: http.StatusUnauthorized},
		{name: "свой aud", token: issue("alice", "user"), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, "/documents", tt.token, nil, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := app.do(t, http.MethodGet, "/health", "", nil, "")
	assert.JSONEq(t, `{"status":"healthy","service":"pdf-service"}`, rec.Body.String())

	rec = app.doJSON(t, http.MethodPost, "/documents", issue("alice", "user"), `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// 4. Вложение: pre-signed PUT при создании, GET при чтении, удаление объекта
func TestDocumentHandler_Attachment(t *testing.T) {
	storage := new(MockS3Storage)
	storage.On("GeneratePresignedPutURL", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "documents/alice/") && strings.HasSuffix(key, ".pdf")
	}), time.Minute).Return("https://s3.local/put", nil)
	storage.On("GeneratePresignedGetURL", mock.Anything, mock.AnythingOfType("string"), time.Minute).Return("https://s3.local/get", nil)
	storage.On("DeleteObject", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	app, issue := newDocumentApp(t, storage)
	alice := issue("alice", "user")

	rec := app.doJSON(t, http.MethodPost, "/documents", alice, `{"title":"Скан","file_name":"scan.pdf"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[documentBody](t, rec)
	assert.Equal(t, "https://s3.local/put", created.UploadURL)
	require.NotNil(t, created.Document.StoragePath)

	rec = app.do(t, http.MethodGet, "/documents/"+created.Document.ID, alice, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://s3.local/get", decode[documentBody](t, rec).DownloadURL)

	rec = app.do(t, http.MethodDelete, "/documents/"+created.Document.ID, alice, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	storage.AssertCalled(t, "DeleteObject", mock.Anything, *created.Document.StoragePath)
}
