package ports

import (
	"auth-fabric/internal/model"
	"context"
)

// RefreshTokenStore : единственное разделяемое изменяемое состояние токенов.
// RevokeAndInsert выполняется атомарно: из двух одновременных ротаций одного токена
// успешна ровно одна.
type RefreshTokenStore interface {
	Insert(ctx context.Context, record *model.RefreshToken) error
	FindActive(ctx context.Context, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAndInsert(ctx context.Context, oldToken string, record *model.RefreshToken) error
	RevokeAllForUser(ctx context.Context, userUUID string) (int64, error)
}

type TokenIssuer interface {
	IssuePair(ctx context.Context, user *model.User, loginMethod string, client model.ClientInfo) (*model.TokensPair, error)
	Rotate(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, *model.User, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userUUID string) error
}
