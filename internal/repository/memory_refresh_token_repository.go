package repository

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/security"
	"context"
	"sync"
	"time"
)

// MemoryRefreshTokenRepository : хранилище refresh токенов в памяти процесса
// с тем же контрактом, что и RefreshTokenRepository. Все операции под одним мьютексом.
type MemoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
	now    func() time.Time
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{
		tokens: make(map[string]*model.RefreshToken),
		now:    time.Now,
	}
}

// WithClock : подмена времени для тестов
func (r *MemoryRefreshTokenRepository) WithClock(now func() time.Time) *MemoryRefreshTokenRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *MemoryRefreshTokenRepository) Insert(_ context.Context, record *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(record)
}

func (r *MemoryRefreshTokenRepository) insertLocked(record *model.RefreshToken) error {
	hash := hashToken(record.Token)
	if _, exists := r.tokens[hash]; exists {
		return security.ErrDuplicateToken
	}

	stored := *record
	stored.TokenHash = hash
	r.tokens[hash] = &stored
	record.TokenHash = hash
	return nil
}

func (r *MemoryRefreshTokenRepository) FindActive(_ context.Context, token string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[hashToken(token)]
	if !ok || stored.RevokedAt != nil {
		return nil, security.ErrRevokedToken
	}

	record := *stored
	if !r.now().Before(record.ExpiresAt) {
		return &record, security.ErrExpiredToken
	}
	return &record, nil
}

func (r *MemoryRefreshTokenRepository) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.tokens[hashToken(token)]; ok && stored.RevokedAt == nil {
		now := r.now()
		stored.RevokedAt = &now
	}
	return nil
}

func (r *MemoryRefreshTokenRepository) RevokeAndInsert(_ context.Context, oldToken string, record *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[hashToken(oldToken)]
	if !ok || stored.RevokedAt != nil {
		return security.ErrRevokedToken
	}

	if _, exists := r.tokens[hashToken(record.Token)]; exists {
		return security.ErrDuplicateToken
	}

	now := r.now()
	stored.RevokedAt = &now
	return r.insertLocked(record)
}

func (r *MemoryRefreshTokenRepository) RevokeAllForUser(_ context.Context, userUUID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := r.now()
	for _, stored := range r.tokens {
		if stored.UserUUID == userUUID && stored.RevokedAt == nil {
			stored.RevokedAt = &now
			n++
		}
	}
	return n, nil
}
