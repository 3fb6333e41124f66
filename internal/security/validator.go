package security

import (
	"fmt"
	"strings"
	"time"
)

// ValidateOptions : что дополнительно проверять после подписи и срока
type ValidateOptions struct {
	// Audience : если задан, должен входить в aud
	Audience string
	// RequireAccess : отклонять refresh токены. Тег token_type необязателен,
	// токен без тега считается access.
	RequireAccess bool
}

// Validator : общий для шлюза и сервисов способ проверить токен.
// Хранилище refresh токенов не используется, access токен живёт до exp.
type Validator struct {
	codec *Codec
	now   func() time.Time
}

func NewValidator(codec *Codec) *Validator {
	return &Validator{codec: codec, now: time.Now}
}

// WithClock : валидатор с подменённым временем
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{codec: v.codec, now: now}
}

// Validate : проверки по порядку: подпись, наличие exp, срок, aud, тип
func (v *Validator) Validate(token string, opts ValidateOptions) (*Claims, error) {
	claims, err := v.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil {
		return nil, ErrMissingExpiry
	}

	// exp == now уже просрочен
	if !v.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}

	if opts.Audience != "" && !claims.HasAudience(opts.Audience) {
		return nil, fmt.Errorf("%w: ожидался %s", ErrAudienceMismatch, opts.Audience)
	}

	if opts.RequireAccess && claims.IsRefresh() {
		return nil, ErrWrongTokenKind
	}

	return claims, nil
}

// ValidateForService : проверка на шлюзе перед проксированием в serviceName
func (v *Validator) ValidateForService(token, serviceName string) (*Claims, error) {
	return v.Validate(token, ValidateOptions{Audience: serviceName, RequireAccess: true})
}

// ServiceAuthenticator : проверка токенов внутри конкретного сервиса
type ServiceAuthenticator struct {
	validator   *Validator
	serviceName string
}

func NewServiceAuthenticator(validator *Validator, serviceName string) *ServiceAuthenticator {
	return &ServiceAuthenticator{validator: validator, serviceName: serviceName}
}

func (a *ServiceAuthenticator) ServiceName() string {
	return a.serviceName
}

// AuthenticateRequest : разбирает заголовок Authorization: Bearer <token>.
// Для того же токена решение совпадает с ValidateForService на шлюзе.
func (a *ServiceAuthenticator) AuthenticateRequest(bearerHeader string) (*Claims, error) {
	token, err := BearerToken(bearerHeader)
	if err != nil {
		return nil, err
	}
	return a.validator.ValidateForService(token, a.serviceName)
}

// BearerToken : достаёт токен из заголовка Authorization
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, "Bearer") {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: ожидается схема Bearer", ErrMalformedToken)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
