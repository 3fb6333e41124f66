package ports

import (
	"auth-fabric/internal/model"
	"context"
	"time"
)

type WebhookRepository interface {
	Create(ctx context.Context, webhook *model.Webhook) error
	FindByUUID(ctx context.Context, uuid string) (*model.Webhook, error)
	List(ctx context.Context) ([]*model.Webhook, error)
	Delete(ctx context.Context, uuid string) error
	ListActiveForEvent(ctx context.Context, event string) ([]*model.Webhook, error)
	MarkTriggered(ctx context.Context, uuid string, at time.Time) error
}

// EventNotifier : рассылка событий пользователей
type EventNotifier interface {
	Notify(ctx context.Context, event string, user *model.User, data map[string]any)
}

type WebhookService interface {
	CreateWebhook(ctx context.Context, createdBy, rawURL string, events []string, secret string) (*model.Webhook, error)
	ListWebhooks(ctx context.Context) ([]*model.Webhook, error)
	GetWebhook(ctx context.Context, uuid string) (*model.Webhook, error)
	DeleteWebhook(ctx context.Context, uuid string) error
}
