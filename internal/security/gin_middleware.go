package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ginClaimsKey    = "claims"
	headerKeyUserID = "X-User-ID"
)

// GinJWTAuth : то же, что JWTMiddleware, для сервисов на gin
func GinJWTAuth(authenticator *ServiceAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticator.AuthenticateRequest(c.GetHeader("Authorization"))
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		c.Set(ginClaimsKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Header(headerKeyUserID, claims.Subject)
		c.Next()
	}
}

// GinRequirePermissions : пропускает, если есть хотя бы одно из разрешений
func GinRequirePermissions(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := RequireAnyPermission(GinClaims(c), permissions...); err != nil {
			abortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

// GinRequireRoles : пропускает, если есть хотя бы одна из ролей
func GinRequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := RequireAnyRole(GinClaims(c), roles...); err != nil {
			abortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

// GinClaims : claims из gin контекста, nil если GinJWTAuth не применялся
func GinClaims(c *gin.Context) *Claims {
	v, ok := c.Get(ginClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

func abortWithAuthError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": publicMessage(err),
		"code":    status,
	})
}
