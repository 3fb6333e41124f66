package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/util"
	"context"
	"database/sql"
	"errors"
)

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

const documentColumns = `uuid, title, content, owner_uuid, storage_path, mime_type, created_at, updated_at`

// Create : сохраняем новый документ
func (r *DocumentRepository) Create(ctx context.Context, document *model.Document) error {
	query := `
		INSERT INTO documents (uuid, title, content, owner_uuid, storage_path, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowxContext(ctx, query,
		document.UUID,
		document.Title,
		document.Content,
		document.OwnerUUID,
		document.StoragePath,
		document.MimeType,
	).Scan(&document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось сохранить документ", err)
	}
	return nil
}

// GetByUUID : документ без проверки доступа, её делает сервис
func (r *DocumentRepository) GetByUUID(ctx context.Context, uuid string) (*model.Document, error) {
	var document model.Document
	err := r.DB.GetContext(ctx, &document, `SELECT `+documentColumns+` FROM documents WHERE uuid = $1`, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[DocumentRepo] не удалось получить документ", err)
	}
	return &document, nil
}

// ListByOwner : документы пользователя, новые первыми
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerUUID string, offset, limit int) ([]*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_uuid = $1 ORDER BY created_at DESC, uuid OFFSET $2 LIMIT $3`

	documents := []*model.Document{}
	if err := r.DB.SelectContext(ctx, &documents, query, ownerUUID, offset, limit); err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить список документов", err)
	}
	return documents, nil
}

// ListAll : все документы (для администратора)
func (r *DocumentRepository) ListAll(ctx context.Context, offset, limit int) ([]*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, uuid OFFSET $1 LIMIT $2`

	documents := []*model.Document{}
	if err := r.DB.SelectContext(ctx, &documents, query, offset, limit); err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить список документов", err)
	}
	return documents, nil
}

// Update : title и content
func (r *DocumentRepository) Update(ctx context.Context, document *model.Document) error {
	query := `
		UPDATE documents SET title = $2, content = $3, updated_at = NOW()
		WHERE uuid = $1
		RETURNING updated_at
	`
	err := r.DB.QueryRowxContext(ctx, query, document.UUID, document.Title, document.Content).Scan(&document.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return util.LogError("[DocumentRepo] не удалось обновить документ", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, uuid string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE uuid = $1`, uuid)
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось удалить документ", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
