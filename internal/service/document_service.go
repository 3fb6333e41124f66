package service

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"auth-fabric/internal/security"
	"auth-fabric/internal/util"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrDocumentNotFound = errors.New("документ не найден")

// DocumentService : документы pdf сервиса. Доступ к чужим документам есть только у admin.
// cache и storage необязательны.
type DocumentService struct {
	documents ports.DocumentRepository
	audit     ports.AuditRepository
	cache     ports.CacheRepository
	storage   ports.S3Storage
	ttl       time.Duration
}

func NewDocumentService(
	documents ports.DocumentRepository,
	audit ports.AuditRepository,
	cache ports.CacheRepository,
	storage ports.S3Storage,
	ttl time.Duration,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		audit:     audit,
		cache:     cache,
		storage:   storage,
		ttl:       ttl,
	}
}

// CreateDocument : при fileName != "" и настроенном S3 возвращает pre-signed PUT URL для вложения
func (s *DocumentService) CreateDocument(ctx context.Context, claims *security.Claims, title, content, fileName string) (*model.CreateDocumentResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: пустой заголовок", ErrInvalidInput)
	}

	document := &model.Document{
		UUID:      uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Content:   content,
		OwnerUUID: claims.UserID(),
	}

	var putURL string
	if fileName != "" && s.storage != nil {
		key := fmt.Sprintf("documents/%s/%s%s", document.OwnerUUID, document.UUID, path.Ext(fileName))
		document.StoragePath = &key
		document.MimeType = mime.TypeByExtension(path.Ext(fileName))

		url, err := s.storage.GeneratePresignedPutURL(ctx, key, s.ttl)
		if err != nil {
			return nil, util.LogError("[DocumentService] не удалось сгенерировать pre-signed PUT URL", err)
		}
		putURL = url
	}

	if err := s.documents.Create(ctx, document); err != nil {
		return nil, util.LogError("[DocumentService] не удалось сохранить документ в БД", err)
	}

	s.record(ctx, document.UUID, claims, model.AuditCreated, document.Title)
	zap.L().Info("[DocumentService] документ создан", zap.String("document", document.UUID), zap.String("owner", document.OwnerUUID))

	return &model.CreateDocumentResult{Document: document, PutURL: putURL}, nil
}

// GetDocument : сначала кэш Redis, затем БД
func (s *DocumentService) GetDocument(ctx context.Context, claims *security.Claims, uuid string) (*model.GetDocumentResult, error) {
	document, err := s.load(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := security.RequireOwnership(document.OwnerUUID, claims); err != nil {
		return nil, err
	}

	var getURL string
	if document.StoragePath != nil && s.storage != nil {
		getURL, err = s.storage.GeneratePresignedGetURL(ctx, *document.StoragePath, s.ttl)
		if err != nil {
			return nil, util.LogError("[DocumentService] не удалось сгенерировать pre-signed GET URL", err)
		}
	}

	s.record(ctx, document.UUID, claims, model.AuditViewed, "")
	return &model.GetDocumentResult{Document: document, GetURL: getURL}, nil
}

// ListDocuments : свои документы, администратору все
func (s *DocumentService) ListDocuments(ctx context.Context, claims *security.Claims, offset, limit int) ([]*model.Document, error) {
	offset, limit = clampPage(offset, limit)
	if security.HasAnyRole(claims, []string{security.RoleAdmin}) {
		return s.documents.ListAll(ctx, offset, limit)
	}
	return s.documents.ListByOwner(ctx, claims.UserID(), offset, limit)
}

func (s *DocumentService) ListAllDocuments(ctx context.Context, claims *security.Claims, offset, limit int) ([]*model.Document, error) {
	if err := security.RequireAnyRole(claims, security.RoleAdmin); err != nil {
		return nil, err
	}
	offset, limit = clampPage(offset, limit)
	return s.documents.ListAll(ctx, offset, limit)
}

func (s *DocumentService) UpdateDocument(ctx context.Context, claims *security.Claims, uuid string, title, content *string) (*model.Document, error) {
	document, err := s.load(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := security.RequireOwnership(document.OwnerUUID, claims); err != nil {
		return nil, err
	}

	var changed []string
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, fmt.Errorf("%w: пустой заголовок", ErrInvalidInput)
		}
		document.Title = strings.TrimSpace(*title)
		changed = append(changed, "title")
	}
	if content != nil {
		document.Content = *content
		changed = append(changed, "content")
	}

	if err := s.documents.Update(ctx, document); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, util.LogError("[DocumentService] не удалось обновить документ", err)
	}
	s.invalidate(ctx, uuid)

	s.record(ctx, uuid, claims, model.AuditUpdated, strings.Join(changed, ","))
	return document, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, claims *security.Claims, uuid string) error {
	document, err := s.load(ctx, uuid)
	if err != nil {
		return err
	}
	if err := security.RequireOwnership(document.OwnerUUID, claims); err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, uuid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return util.LogError("[DocumentService] не удалось удалить документ", err)
	}
	s.invalidate(ctx, uuid)

	if document.StoragePath != nil && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, *document.StoragePath); err != nil {
			zap.L().Warn("[DocumentService] не удалось удалить вложение", zap.String("document", uuid), zap.Error(err))
		}
	}

	s.record(ctx, uuid, claims, model.AuditDeleted, document.Title)
	return nil
}

// AuditTrail : журнал действий над документом, доступен владельцу и admin
func (s *DocumentService) AuditTrail(ctx context.Context, claims *security.Claims, uuid string) ([]*model.AuditEntry, error) {
	document, err := s.load(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := security.RequireOwnership(document.OwnerUUID, claims); err != nil {
		return nil, err
	}
	return s.audit.ListByDocument(ctx, uuid)
}

func (s *DocumentService) load(ctx context.Context, uuid string) (*model.Document, error) {
	if s.cache != nil {
		document, err := s.cache.GetDocument(ctx, uuid)
		if err != nil {
			zap.L().Warn("[DocumentService] ошибка чтения кэша", zap.Error(err))
		}
		if document != nil {
			return document, nil
		}
	}

	document, err := s.documents.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, util.LogError("[DocumentService] не удалось получить документ", err)
	}

	if s.cache != nil {
		if err := s.cache.SetDocument(ctx, document); err != nil {
			zap.L().Warn("[DocumentService] ошибка кэширования документа", zap.Error(err))
		}
	}
	return document, nil
}

func (s *DocumentService) invalidate(ctx context.Context, uuid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteDocument(ctx, uuid); err != nil {
		zap.L().Warn("[DocumentService] не удалось сбросить кэш", zap.String("document", uuid), zap.Error(err))
	}
}

// record : ошибка журнала не отменяет операцию
func (s *DocumentService) record(ctx context.Context, documentUUID string, claims *security.Claims, action, details string) {
	entry := &model.AuditEntry{
		UUID:         uuid.NewString(),
		DocumentUUID: documentUUID,
		Action:       action,
		UserUUID:     claims.UserID(),
		Details:      details,
	}
	if err := s.audit.Add(ctx, entry); err != nil {
		zap.L().Warn("[DocumentService] не удалось записать журнал", zap.String("document", documentUUID), zap.Error(err))
	}
}
