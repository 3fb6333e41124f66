package model

import "time"

const (
	AuditCreated = "created"
	AuditViewed  = "viewed"
	AuditUpdated = "updated"
	AuditDeleted = "deleted"
)

type Document struct {
	UUID        string    `db:"uuid" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	OwnerUUID   string    `db:"owner_uuid" json:"user_id"`
	StoragePath *string   `db:"storage_path" json:"storage_path,omitempty"`
	MimeType    string    `db:"mime_type" json:"mime_type,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AuditEntry : запись журнала действий над документом
type AuditEntry struct {
	UUID         string    `db:"uuid" json:"id"`
	DocumentUUID string    `db:"document_uuid" json:"document_id"`
	Action       string    `db:"action" json:"action"`
	UserUUID     string    `db:"user_uuid" json:"user_id"`
	Details      string    `db:"details" json:"details,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type GetDocumentResult struct {
	Document *Document
	GetURL   string // если есть вложение, содержит pre-signed URL
}

type CreateDocumentResult struct {
	Document *Document
	PutURL   string // pre-signed URL для загрузки вложения
}
