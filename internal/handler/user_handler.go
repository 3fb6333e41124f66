package handler

import (
	"auth-fabric/internal/model/requestresponse"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// GetMe godoc
// @Summary Текущий пользователь
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /users/me [get]
// @Security BearerAuth
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Обновление профиля
// @Description Меняет full_name и/или email текущего пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdateProfileRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Router /users/me [put]
// @Security BearerAuth
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), claims.UserID(), req.FullName, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Только для администратора
// @Tags Users
// @Produce json
// @Param offset query int false "Смещение" default(0)
// @Param limit query int false "Количество" default(50) minimum(1) maximum(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {array} model.User
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Router /users [get]
// @Security BearerAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)

	users, err := h.UserService.ListUsers(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, users)
}

// GetUser godoc
// @Summary Пользователь по id
// @Tags Users
// @Produce json
// @Param id path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /users/{id} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}

// UpdateRoles godoc
// @Summary Изменение ролей и разрешений
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "UUID пользователя"
// @Param body body requestresponse.UpdateRolesRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/roles [put]
// @Security BearerAuth
func (h *UserHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdateRolesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateRoles(r.Context(), chi.URLParam(r, "id"), req.Roles, req.Permissions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}

// Activate godoc
// @Summary Активация пользователя
// @Tags Users
// @Produce json
// @Param id path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/activate [put]
// @Security BearerAuth
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}

// Deactivate godoc
// @Summary Деактивация пользователя
// @Description Отзывает все refresh токены пользователя. Себя деактивировать нельзя.
// @Tags Users
// @Produce json
// @Param id path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} model.User
// @Failure 400 {object} requestresponse.ErrorResponse "Попытка деактивировать себя"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/deactivate [put]
// @Security BearerAuth
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrError(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Deactivate(r.Context(), claims.UserID(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, user)
}
