package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/util"
	"context"
)

// AuditRepository : журнал действий над документами.
// Записи остаются и после удаления документа.
type AuditRepository struct {
	*config.Database
}

func NewAuditRepository(database *config.Database) *AuditRepository {
	return &AuditRepository{database}
}

func (r *AuditRepository) Add(ctx context.Context, entry *model.AuditEntry) error {
	query := `
		INSERT INTO document_audit (uuid, document_uuid, action, user_uuid, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.DB.QueryRowxContext(ctx, query,
		entry.UUID,
		entry.DocumentUUID,
		entry.Action,
		entry.UserUUID,
		entry.Details,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return util.LogError("[AuditRepo] не удалось сохранить запись журнала", err)
	}
	return nil
}

func (r *AuditRepository) ListByDocument(ctx context.Context, documentUUID string) ([]*model.AuditEntry, error) {
	query := `
		SELECT uuid, document_uuid, action, user_uuid, details, created_at
		FROM document_audit
		WHERE document_uuid = $1
		ORDER BY created_at ASC
	`
	entries := []*model.AuditEntry{}
	if err := r.DB.SelectContext(ctx, &entries, query, documentUUID); err != nil {
		return nil, util.LogError("[AuditRepo] не удалось получить журнал", err)
	}
	return entries, nil
}
