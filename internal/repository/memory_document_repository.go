package repository

import (
	"auth-fabric/internal/model"
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryDocumentRepository : документы и журнал в памяти (storage.mode: memory)
type MemoryDocumentRepository struct {
	mu        sync.RWMutex
	documents map[string]*model.Document
	audit     []*model.AuditEntry
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{documents: make(map[string]*model.Document)}
}

func (r *MemoryDocumentRepository) Create(_ context.Context, document *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.documents[document.UUID]; ok {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	document.CreatedAt = now
	document.UpdatedAt = now
	stored := *document
	r.documents[document.UUID] = &stored
	return nil
}

func (r *MemoryDocumentRepository) GetByUUID(_ context.Context, uuid string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.documents[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r *MemoryDocumentRepository) list(keep func(*model.Document) bool, offset, limit int) []*model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Document{}
	for _, d := range r.documents {
		if keep(d) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, offset, limit)
}

func (r *MemoryDocumentRepository) ListByOwner(_ context.Context, ownerUUID string, offset, limit int) ([]*model.Document, error) {
	return r.list(func(d *model.Document) bool { return d.OwnerUUID == ownerUUID }, offset, limit), nil
}

func (r *MemoryDocumentRepository) ListAll(_ context.Context, offset, limit int) ([]*model.Document, error) {
	return r.list(func(*model.Document) bool { return true }, offset, limit), nil
}

func (r *MemoryDocumentRepository) Update(_ context.Context, document *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.documents[document.UUID]
	if !ok {
		return ErrNotFound
	}
	d.Title = document.Title
	d.Content = document.Content
	d.UpdatedAt = time.Now().UTC()
	document.UpdatedAt = d.UpdatedAt
	return nil
}

func (r *MemoryDocumentRepository) Delete(_ context.Context, uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.documents[uuid]; !ok {
		return ErrNotFound
	}
	delete(r.documents, uuid)
	return nil
}

// Add : реализует ports.AuditRepository
func (r *MemoryDocumentRepository) Add(_ context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.CreatedAt = time.Now().UTC()
	c := *entry
	r.audit = append(r.audit, &c)
	return nil
}

func (r *MemoryDocumentRepository) ListByDocument(_ context.Context, documentUUID string) ([]*model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.AuditEntry{}
	for _, e := range r.audit {
		if e.DocumentUUID == documentUUID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}
