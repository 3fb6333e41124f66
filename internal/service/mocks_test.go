package service_test

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/ports"
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, *model.User) *model.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error {
	return m.Called(ctx, uuid, at).Error(0)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	args := m.Called(ctx, offset, limit)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssuePair(ctx context.Context, user *model.User, loginMethod string, client model.ClientInfo) (*model.TokensPair, error) {
	args := m.Called(ctx, user, loginMethod, client)
	if p, ok := args.Get(0).(*model.TokensPair); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenIssuer) Rotate(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, *model.User, error) {
	args := m.Called(ctx, refreshToken, client)
	var (
		pair *model.TokensPair
		user *model.User
	)
	if p, ok := args.Get(0).(*model.TokensPair); ok {
		pair = p
	}
	if u, ok := args.Get(1).(*model.User); ok {
		user = u
	}
	return pair, user, args.Error(2)
}

func (m *MockTokenIssuer) Revoke(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockTokenIssuer) RevokeAllForUser(ctx context.Context, userUUID string) error {
	return m.Called(ctx, userUUID).Error(0)
}

type MockGoogleProvider struct {
	mock.Mock
}

func (m *MockGoogleProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockGoogleProvider) FetchProfile(ctx context.Context, code string) (*ports.GoogleProfile, error) {
	args := m.Called(ctx, code)
	if p, ok := args.Get(0).(*ports.GoogleProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetDocument(ctx context.Context, document *model.Document) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockCacheRepository) GetDocument(ctx context.Context, uuid string) (*model.Document, error) {
	args := m.Called(ctx, uuid)
	if d, ok := args.Get(0).(*model.Document); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCacheRepository) DeleteDocument(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// recordingNotifier : запоминает события вместо отправки
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ *model.User, _ map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// fakeClock : управляемое время, безопасно для горутин
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
