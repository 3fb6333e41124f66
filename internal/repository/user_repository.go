package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

const userColumns = `uuid, email, full_name, password_hash, google_id, is_active, roles, permissions, metadata, last_login, created_at, updated_at`

// CreateUser : сохраняет нового пользователя, ErrAlreadyExists при занятом email или google_id
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, full_name, password_hash, google_id, is_active, roles, permissions, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + userColumns

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.GoogleID,
		user.IsActive,
		user.Roles,
		user.Permissions,
		user.Metadata,
	).StructScan(createdUser)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("[UserRepo] %w: %s", ErrAlreadyExists, user.Email)
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user model.User
	if err := r.DB.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	return r.findOne(ctx, "uuid = $1", uuid)
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

// FindByGoogleID : ищет пользователя, входившего через Google
func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, "google_id = $1", googleID)
}

// UpdateUser : обновляет изменяемые поля
func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2, full_name = $3, google_id = $4, is_active = $5,
		    roles = $6, permissions = $7, metadata = $8, updated_at = NOW()
		WHERE uuid = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		user.UUID,
		user.Email,
		user.FullName,
		user.GoogleID,
		user.IsActive,
		user.Roles,
		user.Permissions,
		user.Metadata,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("[UserRepo] %w: %s", ErrAlreadyExists, user.Email)
		}
		return util.LogError("[UserRepo] не удалось обновить пользователя", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin : время последнего входа
func (r *UserRepository) UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE uuid = $1`, uuid, at)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить last_login", err)
	}
	return nil
}

// ListUsers : список пользователей с offset пагинацией
func (r *UserRepository) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, uuid ASC OFFSET $1 LIMIT $2`

	users := []*model.User{}
	if err := r.DB.SelectContext(ctx, &users, query, offset, limit); err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}
	return users, nil
}
