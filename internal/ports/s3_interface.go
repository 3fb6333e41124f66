package ports

import (
	"context"
	"time"
)

// S3Storage : хранилище вложений документов. Сервис только подписывает ссылки,
// сами файлы клиент грузит и скачивает напрямую.
type S3Storage interface {
	GeneratePresignedPutURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
	GeneratePresignedGetURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
