package repository

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/util"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const documentKeyPrefix = "pdf:document:"

// CacheRepository : кэш чтения документов pdf сервиса. Запись живёт ttl,
// при изменении или удалении документа сервис сбрасывает её.
type CacheRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCacheRepository(client redis.Cmdable, ttl time.Duration) *CacheRepository {
	return &CacheRepository{client: client, ttl: ttl}
}

func (r *CacheRepository) SetDocument(ctx context.Context, document *model.Document) error {
	payload, err := json.Marshal(document)
	if err != nil {
		return util.LogError("[CacheRepo] ошибка сериализации документа", err)
	}

	if err := r.client.SetArgs(ctx, documentKeyPrefix+document.UUID, payload, redis.SetArgs{TTL: r.ttl}).Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка записи документа в Redis", err)
	}
	return nil
}

// GetDocument : промах кэша это nil, nil. Битая запись удаляется и тоже считается промахом.
func (r *CacheRepository) GetDocument(ctx context.Context, uuid string) (*model.Document, error) {
	key := documentKeyPrefix + uuid

	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, util.LogError("[CacheRepo] ошибка чтения документа из Redis", err)
	}

	document := new(model.Document)
	if err := json.Unmarshal(payload, document); err != nil {
		zap.L().Warn("[CacheRepo] битая запись в кэше, удаляем", zap.String("key", key), zap.Error(err))
		r.client.Del(ctx, key)
		return nil, nil
	}
	return document, nil
}

func (r *CacheRepository) DeleteDocument(ctx context.Context, uuid string) error {
	if err := r.client.Del(ctx, documentKeyPrefix+uuid).Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка сброса документа в Redis", err)
	}
	return nil
}
