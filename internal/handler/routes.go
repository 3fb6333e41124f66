package handler

import (
	"auth-fabric/internal/security"

	"github.com/go-chi/chi/v5"
)

// SetupAuthRoutes : маршруты auth сервиса. Публичные пути совпадают с public_routes шлюза.
// authenticator auth сервиса создаётся без aud, принимается любой свой access токен.
func SetupAuthRoutes(r chi.Router, auth *AuthenticationHandler, users *UserHandler, webhooks *WebhookHandler, authenticator *security.ServiceAuthenticator) {
	r.Get("/health", Health("auth-service"))

	r.Post("/register", auth.Register)
	r.Post("/token", auth.Token)
	r.Post("/token/refresh", auth.RefreshToken)
	r.Post("/logout", auth.Logout)
	r.Get("/login/google", auth.GoogleLogin)
	r.Get("/auth/google", auth.GoogleCallback)

	r.Group(func(r chi.Router) {
		r.Use(security.JWTMiddleware(authenticator))

		r.Get("/users/me", users.GetMe)
		r.Put("/users/me", users.UpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(security.RequireRoles(security.RoleAdmin))

			r.Get("/users", users.ListUsers)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", users.GetUser)
				r.Put("/roles", users.UpdateRoles)
				r.Put("/activate", users.Activate)
				r.Put("/deactivate", users.Deactivate)
			})

			r.Route("/webhooks", func(r chi.Router) {
				r.Post("/", webhooks.CreateWebhook)
				r.Get("/", webhooks.ListWebhooks)
				r.Get("/{id}", webhooks.GetWebhook)
				r.Delete("/{id}", webhooks.DeleteWebhook)
			})
		})
	})
}

// SetupDocumentRoutes : все маршруты pdf сервиса, кроме /health, требуют токен с aud pdf-service
func SetupDocumentRoutes(r chi.Router, documents *DocumentHandler, authenticator *security.ServiceAuthenticator) {
	r.Get("/health", Health(authenticator.ServiceName()))

	r.Group(func(r chi.Router) {
		r.Use(security.JWTMiddleware(authenticator))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documents.CreateDocument)
			r.Get("/", documents.ListDocuments)
			r.Get("/{id}", documents.GetDocument)
			r.Put("/{id}", documents.UpdateDocument)
			r.Delete("/{id}", documents.DeleteDocument)
			r.Get("/{id}/audit", documents.AuditTrail)
		})

		r.Get("/admin/documents", documents.ListAllDocuments)
	})
}
