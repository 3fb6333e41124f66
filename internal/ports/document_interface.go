package ports

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/security"
	"context"
)

// DocumentRepository : SQL слой
type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	GetByUUID(ctx context.Context, uuid string) (*model.Document, error)
	ListByOwner(ctx context.Context, ownerUUID string, offset, limit int) ([]*model.Document, error)
	ListAll(ctx context.Context, offset, limit int) ([]*model.Document, error)
	Update(ctx context.Context, document *model.Document) error
	Delete(ctx context.Context, uuid string) error
}

type AuditRepository interface {
	Add(ctx context.Context, entry *model.AuditEntry) error
	ListByDocument(ctx context.Context, documentUUID string) ([]*model.AuditEntry, error)
}

type DocumentService interface {
	CreateDocument(ctx context.Context, claims *security.Claims, title, content, fileName string) (*model.CreateDocumentResult, error)
	GetDocument(ctx context.Context, claims *security.Claims, uuid string) (*model.GetDocumentResult, error)
	ListDocuments(ctx context.Context, claims *security.Claims, offset, limit int) ([]*model.Document, error)
	ListAllDocuments(ctx context.Context, claims *security.Claims, offset, limit int) ([]*model.Document, error)
	UpdateDocument(ctx context.Context, claims *security.Claims, uuid string, title, content *string) (*model.Document, error)
	DeleteDocument(ctx context.Context, claims *security.Claims, uuid string) error
	AuditTrail(ctx context.Context, claims *security.Claims, uuid string) ([]*model.AuditEntry, error)
}
