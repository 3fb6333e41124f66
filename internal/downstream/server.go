// Package downstream : сервисы за шлюзом на gin (flashcard, chat). Доверяют тем же
// access токенам, что и pdf сервис; проверка aud идёт по имени сервиса.
package downstream

import (
	"auth-fabric/internal/security"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router        *gin.Engine
	authenticator *security.ServiceAuthenticator
	started       time.Time
}

func NewServer(authenticator *security.ServiceAuthenticator, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLog(logger))

	s := &Server{
		router:        router,
		authenticator: authenticator,
		started:       time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler : для http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth())

	api := s.router.Group("/")
	api.Use(security.GinJWTAuth(s.authenticator))
	{
		api.GET("/me", s.handleMe())
		api.GET("/items", security.GinRequirePermissions("read:own"), s.handleItems())
		api.GET("/admin/stats", security.GinRequireRoles(security.RoleAdmin), s.handleStats())
	}
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": s.authenticator.ServiceName()})
	}
}

// handleMe : данные пользователя из токена
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := security.GinClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":          claims.UserID(),
			"email":       claims.Email,
			"name":        claims.Name,
			"roles":       claims.Roles,
			"permissions": claims.Permissions,
			"metadata":    claims.Metadata,
			"service":     s.authenticator.ServiceName(),
		})
	}
}

func (s *Server) handleItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := security.GinClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"owner": claims.UserID(),
			"items": []gin.H{},
		})
	}
}

func (s *Server) handleStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": s.authenticator.ServiceName(),
			"uptime":  time.Since(s.started).Round(time.Second).String(),
		})
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http запрос",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", c.ClientIP()),
		)
	}
}
