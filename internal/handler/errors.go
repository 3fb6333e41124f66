package handler

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/security"
	"auth-fabric/internal/service"
	"auth-fabric/internal/util"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// writeServiceError : переводит ошибку сервиса в HTTP ответ
func writeServiceError(w http.ResponseWriter, err error) {
	if security.Classify(err) != security.ClassNone {
		security.WriteAuthError(w, err)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		util.HandleError(w, service.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidWebhook),
		errors.Is(err, service.ErrCannotDeactivate):
		util.HandleError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrWebhookNotFound):
		util.HandleError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrGoogleDisabled):
		util.HandleError(w, err.Error(), http.StatusNotImplemented)
	default:
		zap.L().Error("необработанная ошибка сервиса", zap.Error(err))
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// decodeJSON : при ошибке сам пишет 400
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// claimsOrError : claims кладёт security.JWTMiddleware
func claimsOrError(w http.ResponseWriter, r *http.Request) (*security.Claims, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		security.WriteAuthError(w, err)
		return nil, false
	}
	return claims, true
}

func clientInfo(r *http.Request) model.ClientInfo {
	return model.ClientInfo{
		UserAgent: r.UserAgent(),
		IpAddress: util.ClientIP(r),
	}
}

// pagination : offset и limit из query, некорректные значения игнорируются
func pagination(r *http.Request) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}
