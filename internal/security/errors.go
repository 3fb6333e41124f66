package security

import (
	"errors"
	"net/http"
)

// Ошибки аутентификации (401)
var (
	ErrMissingToken     = errors.New("токен не передан")
	ErrMalformedToken   = errors.New("некорректный токен")
	ErrSignature        = errors.New("неверная подпись токена")
	ErrMissingExpiry    = errors.New("в токене нет exp")
	ErrExpiredToken     = errors.New("срок действия токена истёк")
	ErrAudienceMismatch = errors.New("токен выдан не для этого сервиса")
	ErrWrongTokenKind   = errors.New("неверный тип токена")
	ErrRevokedToken     = errors.New("токен отозван")
	ErrUnknownUser      = errors.New("пользователь не найден или деактивирован")
	ErrDuplicateToken   = errors.New("токен уже существует")
)

// Ошибки авторизации (403)
var (
	ErrInsufficientRole       = errors.New("недостаточно прав: нет нужной роли")
	ErrInsufficientPermission = errors.New("недостаточно прав: нет нужного разрешения")
	ErrOwnership              = errors.New("доступ запрещён: ресурс принадлежит другому пользователю")
)

type Class int

const (
	ClassNone Class = iota
	ClassUnauthenticated
	ClassUnauthorized
)

var unauthenticated = []error{
	ErrMissingToken,
	ErrMalformedToken,
	ErrSignature,
	ErrMissingExpiry,
	ErrExpiredToken,
	ErrAudienceMismatch,
	ErrWrongTokenKind,
	ErrRevokedToken,
	ErrUnknownUser,
	ErrDuplicateToken,
}

var unauthorized = []error{
	ErrInsufficientRole,
	ErrInsufficientPermission,
	ErrOwnership,
}

// Classify : относит ошибку к одному из классов, обёртки учитываются
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	for _, target := range unauthenticated {
		if errors.Is(err, target) {
			return ClassUnauthenticated
		}
	}
	for _, target := range unauthorized {
		if errors.Is(err, target) {
			return ClassUnauthorized
		}
	}
	return ClassNone
}

// HTTPStatus : 401 / 403 для ошибок безопасности, 0 для остальных
func HTTPStatus(err error) int {
	switch Classify(err) {
	case ClassUnauthenticated:
		return http.StatusUnauthorized
	case ClassUnauthorized:
		return http.StatusForbidden
	default:
		return 0
	}
}
