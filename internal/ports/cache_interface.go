package ports

import (
	"auth-fabric/internal/model"
	"context"
)

// CacheRepository : кэш чтения документов. GetDocument возвращает nil, nil при промахе.
type CacheRepository interface {
	GetDocument(ctx context.Context, documentUUID string) (*model.Document, error)
	SetDocument(ctx context.Context, document *model.Document) error
	DeleteDocument(ctx context.Context, documentUUID string) error
}
