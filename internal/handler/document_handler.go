package handler

import (
	"auth-fabric/internal/model/requestresponse"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/util"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type DocumentHandler struct {
	ports.DocumentService
	timeout time.Duration
}

func NewDocumentHandler(documentService ports.DocumentService, timeout time.Duration) *DocumentHandler {
	return &DocumentHandler{documentService, timeout}
}

// CreateDocument godoc
// @Summary Создание документа
// @Description Если передан file_name и включён S3, в ответе будет pre-signed URL для загрузки файла
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateDocumentRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.CreateDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Не указан заголовок"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents [post]
// @Security BearerAuth
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		util.HandleError(w, "title обязателен", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.DocumentService.CreateDocument(ctx, claims, req.Title, req.Content, req.FileName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.CreateDocumentResponse{
		Document:  result.Document,
		UploadURL: result.PutURL,
	})
}

// ListDocuments godoc
// @Summary Список документов
// @Description Свои документы, администратору все
// @Tags Documents
// @Produce json
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(50) minimum(1) maximum(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Router /documents [get]
// @Security BearerAuth
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}
	offset, limit := pagination(r)

	documents, err := h.DocumentService.ListDocuments(r.Context(), claims, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ListDocumentsResponse{Documents: documents})
}

// ListAllDocuments godoc
// @Summary Все документы
// @Tags Admin
// @Produce json
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(50) minimum(1) maximum(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Нужна роль admin"
// @Router /admin/documents [get]
// @Security BearerAuth
func (h *DocumentHandler) ListAllDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}
	offset, limit := pagination(r)

	documents, err := h.DocumentService.ListAllDocuments(r.Context(), claims, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ListDocumentsResponse{Documents: documents})
}

// GetDocument godoc
// @Summary Получение документа
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.GetDocumentResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Документ принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Router /documents/{id} [get]
// @Security BearerAuth
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	result, err := h.DocumentService.GetDocument(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetDocumentResponse{
		Document:    result.Document,
		DownloadURL: result.GetURL,
	})
}

// UpdateDocument godoc
// @Summary Изменение документа
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "UUID документа"
// @Param body body requestresponse.UpdateDocumentRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.Document
// @Failure 403 {object} requestresponse.ErrorResponse "Документ принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Router /documents/{id} [put]
// @Security BearerAuth
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.DocumentService.UpdateDocument(r.Context(), claims, chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, document)
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Tags Documents
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204
// @Failure 403 {object} requestresponse.ErrorResponse "Документ принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Router /documents/{id} [delete]
// @Security BearerAuth
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.DocumentService.DeleteDocument(ctx, claims, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuditTrail godoc
// @Summary Журнал действий над документом
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AuditTrailResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Документ принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Router /documents/{id}/audit [get]
// @Security BearerAuth
func (h *DocumentHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	entries, err := h.DocumentService.AuditTrail(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.AuditTrailResponse{Entries: entries})
}
