package handler

import (
	"auth-fabric/internal/model/requestresponse"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/util"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const oauthStateCookie = "oauth_state"

type AuthenticationHandler struct {
	ports.AuthenticationService
	frontendURL string
}

// NewAuthenticationHandler : frontendURL нужен для редиректа после входа через Google
func NewAuthenticationHandler(authenticationService ports.AuthenticationService, frontendURL string) *AuthenticationHandler {
	return &AuthenticationHandler{
		AuthenticationService: authenticationService,
		frontendURL:           strings.TrimRight(frontendURL, "/"),
	}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью user и разрешением read:own
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} model.User
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные или email уже зарегистрирован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		util.HandleError(w, "full_name обязателен", http.StatusBadRequest)
		return
	}

	user, err := h.AuthenticationService.Register(r.Context(), req.Email, req.Password, strings.TrimSpace(req.FullName))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, user)
}

// Token godoc
// @Summary Вход по email и паролю
// @Description Выдаёт access и refresh токены. Принимает form (username, password) или JSON с теми же полями.
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Пароль"
// @Success 200 {object} model.TokensPair
// @Failure 400 {object} requestresponse.ErrorResponse "Не переданы username или password"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный email или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /token [post]
func (h *AuthenticationHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			util.HandleError(w, "некорректная форма", http.StatusBadRequest)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if req.Username == "" || req.Password == "" {
		util.HandleError(w, "username и password обязательны", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Username, req.Password, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken godoc
// @Summary Обновление пары токенов
// @Description Отзывает переданный refresh токен и выдаёт новую пару
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} model.TokensPair
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Токен отозван, истёк или некорректен"
// @Router /token/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		util.HandleError(w, "refresh_token обязателен", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Refresh(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает refresh токен. Неизвестный или уже отозванный токен не ошибка.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LogoutRequest false "Тело запроса"
// @Success 200 {object} requestresponse.StatusResponse
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LogoutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.RefreshToken) == "" {
		util.WriteJSON(w, http.StatusOK, requestresponse.StatusResponse{Status: "success", Message: "No token provided"})
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.StatusResponse{Status: "success", Message: "Logout successful"})
}

// GoogleLogin godoc
// @Summary Вход через Google
// @Description Редирект на страницу согласия Google
// @Tags Authentication
// @Success 307
// @Failure 501 {object} requestresponse.ErrorResponse "Вход через Google не настроен"
// @Router /login/google [get]
func (h *AuthenticationHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := util.GenerateRandomToken(32)
	if err != nil {
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	redirect, err := h.AuthenticationService.GoogleAuthURL(state)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// GoogleCallback godoc
// @Summary Callback Google OAuth
// @Description Создаёт или находит пользователя и редиректит на фронтенд с токенами
// @Tags Authentication
// @Param code query string true "Код авторизации"
// @Param state query string true "State из GoogleLogin"
// @Success 307
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный state или code"
// @Failure 401 {object} requestresponse.ErrorResponse "Учётная запись отключена"
// @Router /auth/google [get]
func (h *AuthenticationHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		util.HandleError(w, "некорректный state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		util.HandleError(w, "не передан code", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.LoginWithGoogle(r.Context(), code, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	values := url.Values{}
	values.Set("access_token", tokens.AccessToken)
	values.Set("refresh_token", tokens.RefreshToken)
	http.Redirect(w, r, h.frontendURL+"/auth/callback?"+values.Encode(), http.StatusTemporaryRedirect)
}

// Health godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} requestresponse.HealthResponse
// @Router /health [get]
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, requestresponse.HealthResponse{Status: "healthy", Service: service})
	}
}
