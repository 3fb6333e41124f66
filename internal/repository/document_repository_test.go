package repository

import (
	"auth-fabric/internal/model"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := NewDocumentRepository(database)
	now := time.Now()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+documents\b.*RETURNING\s+created_at,\s*updated_at`).
		WithArgs("d1", "Title", "Body", "u1", nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	doc := &model.Document{UUID: "d1", Title: "Title", Content: "Body", OwnerUUID: "u1"}
	require.NoError(t, repo.Create(context.Background(), doc))
	assert.Equal(t, now, doc.CreatedAt)

	mock.ExpectQuery(`(?s)FROM\s+documents\s+WHERE\s+uuid\s*=\s*\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUUID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_UpdateMissing(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := NewDocumentRepository(database)

	mock.ExpectQuery(`(?s)UPDATE\s+documents\s+SET\s+title`).WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.Update(context.Background(), &model.Document{UUID: "d1"}), ErrNotFound)
}

func TestAuditRepository(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := NewAuditRepository(database)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+document_audit`).
		WithArgs("a1", "d1", model.AuditViewed, "u1", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`(?s)FROM\s+document_audit\s+WHERE\s+document_uuid\s*=\s*\$1`).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "document_uuid", "action", "user_uuid", "details", "created_at"}).
			AddRow("a1", "d1", model.AuditViewed, "u1", "", now))

	require.NoError(t, repo.Add(context.Background(), &model.AuditEntry{UUID: "a1", DocumentUUID: "d1", Action: model.AuditViewed, UserUUID: "u1"}))

	entries, err := repo.ListByDocument(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditViewed, entries[0].Action)
}

func TestMemoryDocumentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()

	require.NoError(t, repo.Create(ctx, &model.Document{UUID: "d1", Title: "a", OwnerUUID: "u1"}))
	require.NoError(t, repo.Create(ctx, &model.Document{UUID: "d2", Title: "b", OwnerUUID: "u2"}))

	own, err := repo.ListByOwner(ctx, "u1", 0, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)

	all, err := repo.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Update(ctx, &model.Document{UUID: "d1", Title: "new"}))
	d1, err := repo.GetByUUID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "new", d1.Title)

	require.NoError(t, repo.Add(ctx, &model.AuditEntry{UUID: "a1", DocumentUUID: "d1", Action: model.AuditCreated}))
	require.NoError(t, repo.Delete(ctx, "d1"))
	assert.ErrorIs(t, repo.Delete(ctx, "d1"), ErrNotFound)

	// журнал переживает удаление
	entries, err := repo.ListByDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
