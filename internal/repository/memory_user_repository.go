package repository

import (
	"auth-fabric/internal/model"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryUserRepository : пользователи в памяти процесса (storage.mode: memory)
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*model.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUniqueLocked(user); err != nil {
		return nil, err
	}

	stored := user.Clone()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Metadata == nil {
		stored.Metadata = model.Metadata{}
	}
	r.users[stored.UUID] = stored
	return stored.Clone(), nil
}

func (r *MemoryUserRepository) checkUniqueLocked(user *model.User) error {
	for id, u := range r.users {
		if id == user.UUID {
			continue
		}
		if u.Email == user.Email {
			return fmt.Errorf("[UserRepo] %w: %s", ErrAlreadyExists, user.Email)
		}
		if user.GoogleID != nil && u.GoogleID != nil && *u.GoogleID == *user.GoogleID {
			return fmt.Errorf("[UserRepo] %w: google_id", ErrAlreadyExists)
		}
	}
	return nil
}

func (r *MemoryUserRepository) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByUUID(_ context.Context, uuid string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.UUID == uuid })
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *MemoryUserRepository) UpdateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.UUID]
	if !ok {
		return ErrNotFound
	}
	if err := r.checkUniqueLocked(user); err != nil {
		return err
	}

	updated := user.Clone()
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	updated.LastLogin = existing.LastLogin
	updated.UpdatedAt = time.Now().UTC()
	r.users[user.UUID] = updated
	return nil
}

func (r *MemoryUserRepository) UpdateLastLogin(_ context.Context, uuid string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[uuid]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *MemoryUserRepository) ListUsers(_ context.Context, offset, limit int) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].UUID < all[j].UUID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	return paginate(all, offset, limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
