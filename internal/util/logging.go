package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// LogError : логирует ошибку и возвращает её обёрнутой в message
func LogError(message string, err error) error {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Error(message, zap.Error(err))
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		zap.L().Warn("ошибка записи ответа", zap.Error(err))
	}
}

// WriteJSON : пишет ответ в JSON
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("ошибка записи ответа", zap.Error(err))
	}
}
