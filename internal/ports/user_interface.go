package ports

import (
	"auth-fabric/internal/model"
	"context"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
}

type UserService interface {
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	UpdateProfile(ctx context.Context, uuid string, fullName, email *string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
	UpdateRoles(ctx context.Context, uuid string, roles, permissions []string) (*model.User, error)
	Activate(ctx context.Context, uuid string) (*model.User, error)
	Deactivate(ctx context.Context, actorUUID, uuid string) (*model.User, error)
}
