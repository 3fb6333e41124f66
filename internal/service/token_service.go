package service

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenService : выдача, ротация и отзыв токенов
type TokenService struct {
	codec      *security.Codec
	store      ports.RefreshTokenStore
	users      ports.UserRepository
	cfg        config.JWTConfig
	now        func() time.Time
	newTokenID func() string
}

func NewTokenService(codec *security.Codec, store ports.RefreshTokenStore, users ports.UserRepository, cfg config.JWTConfig) *TokenService {
	return &TokenService{
		codec:      codec,
		store:      store,
		users:      users,
		cfg:        cfg,
		now:        time.Now,
		newTokenID: uuid.NewString,
	}
}

// WithClock : подмена времени для тестов
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// IssueAccessToken : access токен для audience. В metadata только сведения о входе
// (last_login, login_method), профиль пользователя в токен не копируется.
func (s *TokenService) IssueAccessToken(user *model.User, audience []string, metadata map[string]any) (string, error) {
	now := s.now()

	claims := &security.Claims{
		Email:       user.Email,
		Name:        user.FullName,
		Roles:       append([]string(nil), user.Roles...),
		Permissions: append([]string(nil), user.Permissions...),
		Metadata:    maps.Clone(metadata),
		TokenType:   security.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			Issuer:    s.cfg.Issuer,
			ID:        s.newTokenID(),
			Audience:  append(jwt.ClaimStrings(nil), audience...),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL())),
		},
	}

	token, err := s.codec.Encode(claims)
	if err != nil {
		return "", util.LogError("[TokenService] ошибка подписи access токена", err)
	}
	return token, nil
}

// newRefresh : refresh токен без ролей и aud вместе с записью для хранилища
func (s *TokenService) newRefresh(user *model.User, client model.ClientInfo) (string, *model.RefreshToken, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.RefreshTTL())
	jti := s.newTokenID()

	claims := &security.Claims{
		TokenType: security.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			Issuer:    s.cfg.Issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := s.codec.Encode(claims)
	if err != nil {
		return "", nil, util.LogError("[TokenService] ошибка подписи refresh токена", err)
	}

	return token, &model.RefreshToken{
		UUID:      jti,
		Token:     token,
		UserUUID:  user.UUID,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		UserAgent: client.UserAgent,
		IpAddress: client.IpAddress,
	}, nil
}

// IssueRefreshToken : выдаёт и сохраняет refresh токен, при дубликате повторяет один раз с новым jti
func (s *TokenService) IssueRefreshToken(ctx context.Context, user *model.User, client model.ClientInfo) (string, *model.RefreshToken, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, record, err := s.newRefresh(user, client)
		if err != nil {
			return "", nil, err
		}

		err = s.store.Insert(ctx, record)
		if err == nil {
			return token, record, nil
		}
		if !errors.Is(err, security.ErrDuplicateToken) {
			return "", nil, fmt.Errorf("[TokenService] не удалось сохранить refresh токен: %w", err)
		}
		zap.L().Warn("[TokenService] дубликат refresh токена, повтор", zap.String("user", user.UUID))
		lastErr = err
	}
	return "", nil, lastErr
}

// IssuePair : access + refresh после успешного входа
func (s *TokenService) IssuePair(ctx context.Context, user *model.User, loginMethod string, client model.ClientInfo) (*model.TokensPair, error) {
	refreshToken, _, err := s.IssueRefreshToken(ctx, user, client)
	if err != nil {
		return nil, err
	}

	now := s.now()
	accessToken, err := s.IssueAccessToken(user, s.cfg.Audience, loginMetadata(loginMethod, &now))
	if err != nil {
		return nil, err
	}

	return s.pair(accessToken, refreshToken), nil
}

// Rotate : обменивает refresh токен на новую пару. Старый токен отзывается,
// из конкурентных ротаций одного токена успешна ровно одна.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, *model.User, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if !claims.IsRefresh() {
		return nil, nil, security.ErrWrongTokenKind
	}

	record, err := s.store.FindActive(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			if revokeErr := s.store.Revoke(ctx, refreshToken); revokeErr != nil {
				zap.L().Warn("[TokenService] не удалось отозвать истёкший токен", zap.Error(revokeErr))
			}
		}
		return nil, nil, err
	}

	user, err := s.users.FindByUUID(ctx, record.UserUUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, security.ErrUnknownUser
		}
		return nil, nil, fmt.Errorf("[TokenService] не удалось загрузить пользователя: %w", err)
	}
	if !user.IsActive {
		return nil, nil, security.ErrUnknownUser
	}

	var newRefresh string
	for attempt := 0; attempt < 2; attempt++ {
		token, newRecord, err := s.newRefresh(user, client)
		if err != nil {
			return nil, nil, err
		}

		err = s.store.RevokeAndInsert(ctx, refreshToken, newRecord)
		if err == nil {
			newRefresh = token
			break
		}
		if !errors.Is(err, security.ErrDuplicateToken) || attempt == 1 {
			return nil, nil, err
		}
	}

	// ротация не вход: last_login берётся из профиля
	accessToken, err := s.IssueAccessToken(user, s.cfg.Audience, loginMetadata(model.LoginMethodRefresh, user.LastLogin))
	if err != nil {
		return nil, nil, err
	}

	return s.pair(accessToken, newRefresh), user, nil
}

// Revoke : logout, неизвестный или уже отозванный токен не ошибка
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	return s.store.Revoke(ctx, refreshToken)
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userUUID string) error {
	n, err := s.store.RevokeAllForUser(ctx, userUUID)
	if err != nil {
		return err
	}
	zap.L().Info("[TokenService] отозваны refresh токены пользователя", zap.String("user", userUUID), zap.Int64("count", n))
	return nil
}

// loginMetadata : last_login равен null, если пользователь ещё не входил
func loginMetadata(method string, lastLogin *time.Time) map[string]any {
	var last any
	if lastLogin != nil {
		last = lastLogin.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"last_login":   last,
		"login_method": method,
	}
}

func (s *TokenService) pair(access, refresh string) *model.TokensPair {
	return &model.TokensPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.cfg.AccessTTL().Seconds()),
	}
}
