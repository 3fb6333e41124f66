package service

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/util"
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookEvent     = "X-Webhook-Event"
)

var (
	ErrWebhookNotFound = errors.New("вебхук не найден")
	ErrInvalidWebhook  = errors.New("некорректный вебхук")
)

// WebhookService : управление вебхуками и рассылка событий
type WebhookService struct {
	repository ports.WebhookRepository
	client     *http.Client
	now        func() time.Time
	wg         sync.WaitGroup
}

func NewWebhookService(repository ports.WebhookRepository, timeout time.Duration) *WebhookService {
	return &WebhookService{
		repository: repository,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// CreateWebhook : регистрирует вебхук, секрет генерируется, если не передан
func (s *WebhookService) CreateWebhook(ctx context.Context, createdBy, rawURL string, events []string, secret string) (*model.Webhook, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: url должен быть http(s)", ErrInvalidWebhook)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: не указаны события", ErrInvalidWebhook)
	}
	for _, event := range events {
		if !slices.Contains(model.KnownEvents, event) {
			return nil, fmt.Errorf("%w: неизвестное событие %s", ErrInvalidWebhook, event)
		}
	}

	if secret == "" {
		if secret, err = util.GenerateRandomToken(64); err != nil {
			return nil, err
		}
	}

	webhook := &model.Webhook{
		UUID:      uuid.NewString(),
		URL:       rawURL,
		Events:    pq.StringArray(events),
		Secret:    secret,
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if err := s.repository.Create(ctx, webhook); err != nil {
		return nil, util.LogError("[WebhookService] не удалось сохранить вебхук", err)
	}
	return webhook, nil
}

func (s *WebhookService) ListWebhooks(ctx context.Context) ([]*model.Webhook, error) {
	return s.repository.List(ctx)
}

func (s *WebhookService) GetWebhook(ctx context.Context, uuid string) (*model.Webhook, error) {
	webhook, err := s.repository.FindByUUID(ctx, uuid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWebhookNotFound
	}
	return webhook, err
}

func (s *WebhookService) DeleteWebhook(ctx context.Context, uuid string) error {
	err := s.repository.Delete(ctx, uuid)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWebhookNotFound
	}
	return err
}

// Notify : асинхронно отправляет событие всем подписанным вебхукам.
// Ошибки доставки только логируются.
func (s *WebhookService) Notify(ctx context.Context, event string, user *model.User, data map[string]any) {
	webhooks, err := s.repository.ListActiveForEvent(ctx, event)
	if err != nil {
		zap.L().Error("[WebhookService] не удалось получить вебхуки", zap.String("event", event), zap.Error(err))
		return
	}
	if len(webhooks) == 0 {
		return
	}

	payload := model.WebhookPayload{
		Event:     event,
		Timestamp: s.now().UTC(),
		User: model.WebhookUser{
			ID:       user.UUID,
			Email:    user.Email,
			FullName: user.FullName,
			Roles:    append([]string{}, user.Roles...),
		},
		Data: data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("[WebhookService] ошибка сериализации события", zap.Error(err))
		return
	}

	for _, webhook := range webhooks {
		s.wg.Add(1)
		go func(webhook *model.Webhook) {
			defer s.wg.Done()
			// запрос не должен зависеть от отмены исходного HTTP запроса
			if err := s.deliver(context.Background(), webhook, event, body); err != nil {
				zap.L().Warn("[WebhookService] ошибка доставки вебхука",
					zap.String("webhook", webhook.UUID), zap.String("event", event), zap.Error(err))
			}
		}(webhook)
	}
}

// Wait : ждёт завершения отправок (для остановки сервиса и тестов)
func (s *WebhookService) Wait() {
	s.wg.Wait()
}

func (s *WebhookService) deliver(ctx context.Context, webhook *model.Webhook, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderWebhookSignature, Sign(webhook.Secret, body))
	req.Header.Set(HeaderWebhookEvent, event)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("вебхук ответил %d", resp.StatusCode)
	}

	return s.repository.MarkTriggered(ctx, webhook.UUID, s.now().UTC())
}

// Sign : hex(HMAC-SHA256(secret, body))
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
