package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type RefreshTokenRepository struct {
	*config.Database
	now func() time.Time
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{Database: database, now: time.Now}
}

const insertRefreshTokenQuery = `
	INSERT INTO refresh_tokens (uuid, token_hash, user_uuid, created_at, expires_at, user_agent, ip_address)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Insert : сохраняет refresh токен.
// Возвращает security.ErrDuplicateToken, если такой токен уже есть
func (r *RefreshTokenRepository) Insert(ctx context.Context, record *model.RefreshToken) error {
	if err := r.insert(ctx, r.DB, record); err != nil {
		return err
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *RefreshTokenRepository) insert(ctx context.Context, exec execer, record *model.RefreshToken) error {
	record.TokenHash = hashToken(record.Token)

	_, err := exec.ExecContext(ctx, insertRefreshTokenQuery,
		record.UUID,
		record.TokenHash,
		record.UserUUID,
		record.CreatedAt,
		record.ExpiresAt,
		record.UserAgent,
		record.IpAddress,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return security.ErrDuplicateToken
		}
		return util.LogError("[RefreshTokenRepo] ошибка вставки данных в БД", err)
	}
	return nil
}

// FindActive : ищет активную запись.
// Нет записи или отозвана: security.ErrRevokedToken, истекла: security.ErrExpiredToken
func (r *RefreshTokenRepository) FindActive(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `
		SELECT uuid, token_hash, user_uuid, created_at, expires_at, revoked_at, user_agent, ip_address
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	record := &model.RefreshToken{}
	err := r.DB.GetContext(ctx, record, query, hashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, security.ErrRevokedToken
		}
		return nil, util.LogError("[RefreshTokenRepo] ошибка при выполнении запроса", err)
	}
	record.Token = token

	if record.RevokedAt != nil {
		return nil, security.ErrRevokedToken
	}
	if !r.now().Before(record.ExpiresAt) {
		return record, security.ErrExpiredToken
	}

	return record, nil
}

// Revoke : отзывает токен, повторный вызов ничего не делает
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`

	if _, err := r.DB.ExecContext(ctx, query, hashToken(token), r.now()); err != nil {
		return util.LogError("[RefreshTokenRepo] не удалось отозвать токен", err)
	}
	return nil
}

// RevokeAndInsert : в одной транзакции отзывает старый токен и сохраняет новый.
// Условный UPDATE сериализует конкурентные ротации: вторая получит 0 строк и security.ErrRevokedToken
func (r *RefreshTokenRepository) RevokeAndInsert(ctx context.Context, oldToken string, record *model.RefreshToken) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return util.LogError("[RefreshTokenRepo] не удалось начать транзакцию", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`,
		hashToken(oldToken), r.now(),
	)
	if err != nil {
		return util.LogError("[RefreshTokenRepo] не удалось отозвать токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[RefreshTokenRepo] не удалось проверить, обновлен ли токен", err)
	}
	if rowsAffected == 0 {
		return security.ErrRevokedToken
	}

	if err = r.insert(ctx, tx, record); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return util.LogError("[RefreshTokenRepo] не удалось закоммитить транзакцию", err)
	}
	return nil
}

// RevokeAllForUser : отзывает все активные токены пользователя
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userUUID string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_uuid = $1 AND revoked_at IS NULL`

	result, err := r.DB.ExecContext(ctx, query, userUUID, r.now())
	if err != nil {
		return 0, util.LogError("[RefreshTokenRepo] не удалось отозвать токены пользователя", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("[RefreshTokenRepo] не удалось получить число строк: %w", err)
	}
	return n, nil
}
