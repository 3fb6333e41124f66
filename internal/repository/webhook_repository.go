package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/util"
	"context"
	"database/sql"
	"errors"
	"time"
)

type WebhookRepository struct {
	*config.Database
}

func NewWebhookRepository(database *config.Database) *WebhookRepository {
	return &WebhookRepository{database}
}

const webhookColumns = `uuid, url, events, secret, is_active, created_by, created_at, last_triggered, trigger_count`

// Create : сохраняет вебхук
func (r *WebhookRepository) Create(ctx context.Context, webhook *model.Webhook) error {
	query := `
		INSERT INTO webhooks (uuid, url, events, secret, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.DB.QueryRowxContext(ctx, query,
		webhook.UUID,
		webhook.URL,
		webhook.Events,
		webhook.Secret,
		webhook.IsActive,
		webhook.CreatedBy,
	).Scan(&webhook.CreatedAt)
	if err != nil {
		return util.LogError("[WebhookRepo] ошибка вставки данных в БД", err)
	}
	return nil
}

func (r *WebhookRepository) FindByUUID(ctx context.Context, uuid string) (*model.Webhook, error) {
	var webhook model.Webhook
	err := r.DB.GetContext(ctx, &webhook, `SELECT `+webhookColumns+` FROM webhooks WHERE uuid = $1`, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[WebhookRepo] не удалось найти вебхук", err)
	}
	return &webhook, nil
}

func (r *WebhookRepository) List(ctx context.Context) ([]*model.Webhook, error) {
	webhooks := []*model.Webhook{}
	if err := r.DB.SelectContext(ctx, &webhooks, `SELECT `+webhookColumns+` FROM webhooks ORDER BY created_at`); err != nil {
		return nil, util.LogError("[WebhookRepo] не удалось получить список вебхуков", err)
	}
	return webhooks, nil
}

func (r *WebhookRepository) Delete(ctx context.Context, uuid string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM webhooks WHERE uuid = $1`, uuid)
	if err != nil {
		return util.LogError("[WebhookRepo] не удалось удалить вебхук", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveForEvent : активные вебхуки, подписанные на event
func (r *WebhookRepository) ListActiveForEvent(ctx context.Context, event string) ([]*model.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE is_active = TRUE AND $1 = ANY(events)`

	webhooks := []*model.Webhook{}
	if err := r.DB.SelectContext(ctx, &webhooks, query, event); err != nil {
		return nil, util.LogError("[WebhookRepo] не удалось получить вебхуки события", err)
	}
	return webhooks, nil
}

// MarkTriggered : статистика срабатываний
func (r *WebhookRepository) MarkTriggered(ctx context.Context, uuid string, at time.Time) error {
	query := `UPDATE webhooks SET last_triggered = $2, trigger_count = trigger_count + 1 WHERE uuid = $1`
	if _, err := r.DB.ExecContext(ctx, query, uuid, at); err != nil {
		return util.LogError("[WebhookRepo] не удалось обновить статистику", err)
	}
	return nil
}
