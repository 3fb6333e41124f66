package repository

import (
	"auth-fabric/config"
	"auth-fabric/internal/model"
	"auth-fabric/internal/security"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDatabase(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &config.Database{DB: sqlx.NewDb(db, "postgres")}, mock
}

func newTestRefreshRepo(t *testing.T, now time.Time) (*RefreshTokenRepository, sqlmock.Sqlmock) {
	database, mock := newMockDatabase(t)
	repo := NewRefreshTokenRepository(database)
	repo.now = func() time.Time { return now }
	return repo, mock
}

var refreshColumns = []string{"uuid", "token_hash", "user_uuid", "created_at", "expires_at", "revoked_at", "user_agent", "ip_address"}

const (
	insertRefreshQ = `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*$`
	selectRefreshQ = `(?s)^\s*SELECT\s+uuid,\s*token_hash.*FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s*$`
	revokeRefreshQ = `(?s)^UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*\$2\s+WHERE\s+token_hash\s*=\s*\$1\s+AND\s+revoked_at\s+IS\s+NULL$`
)

func newRecord(token string, now time.Time) *model.RefreshToken {
	return &model.RefreshToken{
		UUID:      "r-" + token,
		Token:     token,
		UserUUID:  "u1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		UserAgent: "agent",
		IpAddress: "127.0.0.1",
	}
}

func TestRefreshTokenRepository_Insert(t *testing.T) {
	now := time.Now()
	repo, mock := newTestRefreshRepo(t, now)
	record := newRecord("tok", now)

	mock.ExpectExec(insertRefreshQ).
		WithArgs("r-tok", hashToken("tok"), "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), "agent", "127.0.0.1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), record))
	assert.Equal(t, hashToken("tok"), record.TokenHash)
	assert.NotEqual(t, "tok", record.TokenHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_InsertDuplicate(t *testing.T) {
	now := time.Now()
	repo, mock := newTestRefreshRepo(t, now)

	mock.ExpectExec(insertRefreshQ).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Insert(context.Background(), newRecord("tok", now))
	assert.ErrorIs(t, err, security.ErrDuplicateToken)
}

func TestRefreshTokenRepository_FindActive(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	revokedAt := now.Add(-time.Minute)

	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		queryErr  error
		wantErr   error
		wantFound bool
	}{
		{
			name:      "активный",
			rows:      sqlmock.NewRows(refreshColumns).AddRow("r1", hashToken("tok"), "u1", now, now.Add(time.Hour), nil, "", ""),
			wantFound: true,
		},
		{
			name:     "нет записи",
			queryErr: sql.ErrNoRows,
			wantErr:  security.ErrRevokedToken,
		},
		{
			name:    "отозван",
			rows:    sqlmock.NewRows(refreshColumns).AddRow("r1", hashToken("tok"), "u1", now, now.Add(time.Hour), revokedAt, "", ""),
			wantErr: security.ErrRevokedToken,
		},
		{
			name:      "истёк ровно сейчас",
			rows:      sqlmock.NewRows(refreshColumns).AddRow("r1", hashToken("tok"), "u1", now.Add(-time.Hour), now, nil, "", ""),
			wantErr:   security.ErrExpiredToken,
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRefreshRepo(t, now)
			q := mock.ExpectQuery(selectRefreshQ).WithArgs(hashToken("tok"))
			if tt.queryErr != nil {
				q.WillReturnError(tt.queryErr)
			} else {
				q.WillReturnRows(tt.rows)
			}

			record, err := repo.FindActive(context.Background(), "tok")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantFound {
				require.NotNil(t, record)
				assert.Equal(t, "u1", record.UserUUID)
				assert.Equal(t, "tok", record.Token)
			} else {
				assert.Nil(t, record)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRefreshTokenRepository_FindActiveDBError(t *testing.T) {
	repo, mock := newTestRefreshRepo(t, time.Now())
	mock.ExpectQuery(selectRefreshQ).WillReturnError(errors.New("db down"))

	_, err := repo.FindActive(context.Background(), "tok")
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, security.ClassNone, security.Classify(err))
}

func TestRefreshTokenRepository_Revoke(t *testing.T) {
	now := time.Now()
	repo, mock := newTestRefreshRepo(t, now)

	mock.ExpectExec(revokeRefreshQ).WithArgs(hashToken("tok"), now).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Revoke(context.Background(), "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeAndInsert(t *testing.T) {
	now := time.Now()

	t.Run("успех", func(t *testing.T) {
		repo, mock := newTestRefreshRepo(t, now)
		mock.ExpectBegin()
		mock.ExpectExec(revokeRefreshQ).WithArgs(hashToken("old"), now).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertRefreshQ).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.RevokeAndInsert(context.Background(), "old", newRecord("new", now)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("старый уже отозван", func(t *testing.T) {
		repo, mock := newTestRefreshRepo(t, now)
		mock.ExpectBegin()
		mock.ExpectExec(revokeRefreshQ).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.RevokeAndInsert(context.Background(), "old", newRecord("new", now))
		assert.ErrorIs(t, err, security.ErrRevokedToken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("дубликат нового", func(t *testing.T) {
		repo, mock := newTestRefreshRepo(t, now)
		mock.ExpectBegin()
		mock.ExpectExec(revokeRefreshQ).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertRefreshQ).WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.RevokeAndInsert(context.Background(), "old", newRecord("new", now))
		assert.ErrorIs(t, err, security.ErrDuplicateToken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRefreshTokenRepository_RevokeAllForUser(t *testing.T) {
	now := time.Now()
	repo, mock := newTestRefreshRepo(t, now)

	mock.ExpectExec(`(?s)^UPDATE\s+refresh_tokens\s+SET\s+revoked_at\s*=\s*\$2\s+WHERE\s+user_uuid\s*=\s*\$1`).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RevokeAllForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
