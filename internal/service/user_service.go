package service

import (
	"auth-fabric/internal/model"
	"auth-fabric/internal/ports"
	"auth-fabric/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound     = errors.New("пользователь не найден")
	ErrCannotDeactivate = errors.New("нельзя деактивировать собственную учётную запись")
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type UserService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	notifier ports.EventNotifier
}

func NewUserService(users ports.UserRepository, tokens ports.TokenIssuer, notifier ports.EventNotifier) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
	}
}

func (s *UserService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	user, err := s.users.FindByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("[UserService] %w", err)
	}
	return user, nil
}

// UpdateProfile : nil поля не меняются
func (s *UserService) UpdateProfile(ctx context.Context, uuid string, fullName, email *string) (*model.User, error) {
	user, err := s.GetUser(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if fullName != nil {
		user.FullName = strings.TrimSpace(*fullName)
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		if _, err := mail.ParseAddress(normalized); err != nil {
			return nil, fmt.Errorf("%w: некорректный email", ErrInvalidInput)
		}
		user.Email = normalized
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	offset, limit = clampPage(offset, limit)
	return s.users.ListUsers(ctx, offset, limit)
}

// UpdateRoles : новые роли и права попадут в токены после следующего входа или refresh
func (s *UserService) UpdateRoles(ctx context.Context, uuid string, roles, permissions []string) (*model.User, error) {
	user, err := s.GetUser(ctx, uuid)
	if err != nil {
		return nil, err
	}

	user.Roles = pq.StringArray(cleanList(roles))
	user.Permissions = pq.StringArray(cleanList(permissions))

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	zap.L().Info("[UserService] изменены роли пользователя",
		zap.String("user", uuid), zap.Strings("roles", user.Roles), zap.Strings("permissions", user.Permissions))
	return user, nil
}

func (s *UserService) Activate(ctx context.Context, uuid string) (*model.User, error) {
	return s.setActive(ctx, uuid, true)
}

// Deactivate : блокирует пользователя и отзывает все его refresh токены
func (s *UserService) Deactivate(ctx context.Context, actorUUID, uuid string) (*model.User, error) {
	if actorUUID == uuid {
		return nil, ErrCannotDeactivate
	}

	user, err := s.setActive(ctx, uuid, false)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeAllForUser(ctx, uuid); err != nil {
		return nil, fmt.Errorf("[UserService] не удалось отозвать токены: %w", err)
	}
	return user, nil
}

func (s *UserService) setActive(ctx context.Context, uuid string, active bool) (*model.User, error) {
	user, err := s.GetUser(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}

	user.IsActive = active
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *model.User) error {
	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("[UserService] не удалось сохранить пользователя: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, model.EventUserUpdated, user, nil)
	}
	return nil
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return offset, limit
}

// cleanList : без пустых строк и повторов, порядок сохраняется
func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
