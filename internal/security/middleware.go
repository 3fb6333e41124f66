package security

import (
	"context"
	"errors"
	"net/http"

	"auth-fabric/internal/util"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// WithClaims : кладёт claims в контекст запроса
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, ErrMissingToken
	}
	return claims, nil
}

// JWTMiddleware : проверяет Authorization и кладёт claims в контекст
func JWTMiddleware(authenticator *ServiceAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticator.AuthenticateRequest(r.Header.Get("Authorization"))
			if err != nil {
				zap.L().Debug("запрос не аутентифицирован",
					zap.String("service", authenticator.ServiceName()),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				WriteAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles : пропускает, если есть хотя бы одна роль. Ставится после JWTMiddleware.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return requireClaims(func(c *Claims) error { return RequireAnyRole(c, roles...) })
}

// RequirePermissions : пропускает, если есть хотя бы одно разрешение
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return requireClaims(func(c *Claims) error { return RequireAnyPermission(c, permissions...) })
}

func requireClaims(check func(*Claims) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetClaimsFromContext(r.Context())
			if err != nil {
				WriteAuthError(w, err)
				return
			}
			if err := check(claims); err != nil {
				WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteAuthError : 401 или 403 в зависимости от класса ошибки, иначе 500
func WriteAuthError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", "Bearer")
		util.HandleError(w, publicMessage(err), status)
	case http.StatusForbidden:
		util.HandleError(w, publicMessage(err), status)
	default:
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// publicMessage : текст базовой ошибки без внутренних подробностей
func publicMessage(err error) string {
	for _, target := range append(append([]error{}, unauthenticated...), unauthorized...) {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
