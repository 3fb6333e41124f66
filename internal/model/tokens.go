package model

import "time"

// RefreshToken : запись о выданном refresh токене.
// Активна, пока RevokedAt == nil и ExpiresAt в будущем. Физически не удаляется.
type RefreshToken struct {
	UUID      string     `db:"uuid" json:"id"`
	Token     string     `db:"-" json:"-"`
	TokenHash string     `db:"token_hash" json:"-"`
	UserUUID  string     `db:"user_uuid" json:"user_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	UserAgent string     `db:"user_agent" json:"user_agent,omitempty"`
	IpAddress string     `db:"ip_address" json:"ip_address,omitempty"`
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// ClientInfo : откуда пришёл запрос на выдачу токенов
type ClientInfo struct {
	UserAgent string
	IpAddress string
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (JWT, для получения новой пары)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`

	// example: bearer
	TokenType string `json:"token_type"`

	// Время жизни access токена в секундах
	// example: 3600
	ExpiresIn int `json:"expires_in"`
}
