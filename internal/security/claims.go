package security

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims : полезная нагрузка токенов auth-сервиса.
// sub, iat, exp, jti, iss и aud лежат в jwt.RegisteredClaims;
// aud при декодировании принимает и строку, и массив.
type Claims struct {
	Email       string         `json:"email,omitempty"`
	Name        string         `json:"name,omitempty"`
	Roles       []string       `json:"roles,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	TokenType   string         `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// UserID : идентификатор пользователя (sub)
func (c *Claims) UserID() string {
	return c.Subject
}

// HasAudience : входит ли service в aud
func (c *Claims) HasAudience(service string) bool {
	return slices.Contains(c.Audience, service)
}

// IsAccess : всё, что не помечено как refresh
func (c *Claims) IsAccess() bool {
	return c.TokenType != TokenTypeRefresh
}

func (c *Claims) IsRefresh() bool {
	return c.TokenType == TokenTypeRefresh
}
