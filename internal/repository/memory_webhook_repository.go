package repository

import (
	"auth-fabric/internal/model"
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
)

type MemoryWebhookRepository struct {
	mu       sync.Mutex
	webhooks map[string]*model.Webhook
}

func NewMemoryWebhookRepository() *MemoryWebhookRepository {
	return &MemoryWebhookRepository{webhooks: make(map[string]*model.Webhook)}
}

func cloneWebhook(w *model.Webhook) *model.Webhook {
	c := *w
	c.Events = append(pq.StringArray(nil), w.Events...)
	if w.LastTriggered != nil {
		t := *w.LastTriggered
		c.LastTriggered = &t
	}
	return &c
}

func (r *MemoryWebhookRepository) Create(_ context.Context, webhook *model.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.webhooks[webhook.UUID]; ok {
		return ErrAlreadyExists
	}
	webhook.CreatedAt = time.Now().UTC()
	r.webhooks[webhook.UUID] = cloneWebhook(webhook)
	return nil
}

func (r *MemoryWebhookRepository) FindByUUID(_ context.Context, uuid string) (*model.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.webhooks[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneWebhook(w), nil
}

func (r *MemoryWebhookRepository) List(_ context.Context) ([]*model.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sortedLocked(func(*model.Webhook) bool { return true }), nil
}

func (r *MemoryWebhookRepository) Delete(_ context.Context, uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.webhooks[uuid]; !ok {
		return ErrNotFound
	}
	delete(r.webhooks, uuid)
	return nil
}

func (r *MemoryWebhookRepository) ListActiveForEvent(_ context.Context, event string) ([]*model.Webhook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sortedLocked(func(w *model.Webhook) bool {
		return w.IsActive && slices.Contains(w.Events, event)
	}), nil
}

func (r *MemoryWebhookRepository) MarkTriggered(_ context.Context, uuid string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.webhooks[uuid]; ok {
		w.LastTriggered = &at
		w.TriggerCount++
	}
	return nil
}

func (r *MemoryWebhookRepository) sortedLocked(keep func(*model.Webhook) bool) []*model.Webhook {
	out := []*model.Webhook{}
	for _, w := range r.webhooks {
		if keep(w) {
			out = append(out, cloneWebhook(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
