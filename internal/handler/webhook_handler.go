package handler

import (
	"auth-fabric/internal/model/requestresponse"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// WebhookHandler : управление вебхуками, только для администратора
type WebhookHandler struct {
	ports.WebhookService
}

func NewWebhookHandler(webhookService ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService}
}

// CreateWebhook godoc
// @Summary Регистрация вебхука
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateWebhookRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.CreateWebhookResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный url или события"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Router /webhooks [post]
// @Security BearerAuth
func (h *WebhookHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateWebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	webhook, err := h.WebhookService.CreateWebhook(r.Context(), claims.UserID(), req.URL, req.Events, req.Secret)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.CreateWebhookResponse{
		ID:     webhook.UUID,
		URL:    webhook.URL,
		Events: webhook.Events,
		Secret: webhook.Secret,
	})
}

// ListWebhooks godoc
// @Summary Список вебхуков
// @Tags Webhooks
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} model.Webhook
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Router /webhooks [get]
// @Security BearerAuth
func (h *WebhookHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.WebhookService.ListWebhooks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, webhooks)
}

// GetWebhook godoc
// @Summary Вебхук по id
// @Tags Webhooks
// @Produce json
// @Param id path string true "UUID вебхука"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.Webhook
// @Failure 404 {object} requestresponse.ErrorResponse "Вебхук не найден"
// @Router /webhooks/{id} [get]
// @Security BearerAuth
func (h *WebhookHandler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := h.WebhookService.GetWebhook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, webhook)
}

// DeleteWebhook godoc
// @Summary Удаление вебхука
// @Tags Webhooks
// @Param id path string true "UUID вебхука"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204
// @Failure 404 {object} requestresponse.ErrorResponse "Вебхук не найден"
// @Router /webhooks/{id} [delete]
// @Security BearerAuth
func (h *WebhookHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.WebhookService.DeleteWebhook(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
