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
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrInvalidInput       = errors.New("некорректные данные")
	ErrGoogleDisabled     = errors.New("вход через Google не настроен")
)

var (
	defaultRoles       = []string{"user"}
	defaultPermissions = []string{"read:own"}
)

type AuthenticationService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	notifier ports.EventNotifier
	google   ports.GoogleProvider
	now      func() time.Time
}

// NewAuthenticationService : google может быть nil, тогда вход через Google отключён
func NewAuthenticationService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	notifier ports.EventNotifier,
	google ports.GoogleProvider,
) *AuthenticationService {
	return &AuthenticationService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		google:   google,
		now:      time.Now,
	}
}

func (s *AuthenticationService) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: некорректный email", ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось создать хэш пароля", err)
	}

	user := &model.User{
		UUID:         uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		IsActive:     true,
		Roles:        pq.StringArray(defaultRoles),
		Permissions:  pq.StringArray(defaultPermissions),
		Metadata:     model.Metadata{},
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("[AuthService] ошибка создания пользователя: %w", err)
	}

	zap.L().Info("[AuthService] зарегистрирован пользователь", zap.String("user", created.UUID))
	s.notify(ctx, model.EventUserCreated, created, nil)
	return created, nil
}

// Login : вход по email и паролю. Неизвестный email, неверный пароль и
// неактивный пользователь неразличимы для клиента.
func (s *AuthenticationService) Login(ctx context.Context, email, password string, client model.ClientInfo) (*model.TokensPair, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.completeLogin(ctx, user, model.LoginMethodCredentials, client)
}

func (s *AuthenticationService) completeLogin(ctx context.Context, user *model.User, method string, client model.ClientInfo) (*model.TokensPair, error) {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.UUID, now); err != nil {
		zap.L().Warn("[AuthService] не удалось обновить last_login", zap.String("user", user.UUID), zap.Error(err))
	}
	user.LastLogin = &now

	tokens, err := s.tokens.IssuePair(ctx, user, method, client)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	s.notify(ctx, model.EventUserLogin, user, map[string]any{"login_method": method})
	return tokens, nil
}

func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error) {
	tokens, user, err := s.tokens.Rotate(ctx, refreshToken, client)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, model.EventTokenRefresh, user, nil)
	return tokens, nil
}

// Logout : отзывает refresh токен, повторный вызов не ошибка
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("[AuthService] не удалось отозвать токен: %w", err)
	}
	return nil
}

func (s *AuthenticationService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// LoginWithGoogle : находит пользователя по google id или email, иначе создаёт нового
func (s *AuthenticationService) LoginWithGoogle(ctx context.Context, code string, client model.ClientInfo) (*model.TokensPair, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}

	profile, err := s.google.FetchProfile(ctx, code)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось получить профиль Google", err)
	}

	user, err := s.upsertGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.completeLogin(ctx, user, model.LoginMethodGoogle, client)
}

// upsertGoogleUser : имя и фото из профиля Google обновляются при каждом входе
func (s *AuthenticationService) upsertGoogleUser(ctx context.Context, profile *ports.GoogleProfile) (*model.User, error) {
	googleID := profile.ID

	user, err := s.users.FindByGoogleID(ctx, googleID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("[AuthService] ошибка поиска по google id: %w", err)
		}

		user, err = s.users.FindByEmail(ctx, normalizeEmail(profile.Email))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("[AuthService] ошибка поиска по email: %w", err)
		}
	}

	if user == nil {
		return s.createGoogleUser(ctx, profile)
	}

	changed := applyGoogleProfile(user, profile)
	if user.GoogleID == nil || *user.GoogleID != googleID {
		user.GoogleID = &googleID
		changed = true
	}
	if changed {
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("[AuthService] не удалось обновить профиль Google: %w", err)
		}
	}
	return user, nil
}

// applyGoogleProfile : true, если что-то поменялось
func applyGoogleProfile(user *model.User, profile *ports.GoogleProfile) bool {
	changed := false
	if profile.Name != "" && user.FullName != profile.Name {
		user.FullName = profile.Name
		changed = true
	}
	if profile.Picture != "" && user.Metadata["picture"] != profile.Picture {
		if user.Metadata == nil {
			user.Metadata = model.Metadata{}
		}
		user.Metadata["picture"] = profile.Picture
		changed = true
	}
	return changed
}

func (s *AuthenticationService) createGoogleUser(ctx context.Context, profile *ports.GoogleProfile) (*model.User, error) {
	googleID := profile.ID
	email := normalizeEmail(profile.Email)

	created, err := s.users.CreateUser(ctx, &model.User{
		UUID:        uuid.NewString(),
		Email:       email,
		FullName:    profile.Name,
		GoogleID:    &googleID,
		IsActive:    true,
		Roles:       pq.StringArray(defaultRoles),
		Permissions: pq.StringArray(defaultPermissions),
		Metadata:    model.Metadata{"picture": profile.Picture},
	})
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка создания пользователя Google: %w", err)
	}
	s.notify(ctx, model.EventUserCreated, created, map[string]any{"login_method": model.LoginMethodGoogle})
	return created, nil
}

func (s *AuthenticationService) notify(ctx context.Context, event string, user *model.User, data map[string]any) {
	if s.notifier == nil || user == nil {
		return
	}
	s.notifier.Notify(ctx, event, user, data)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}
	if len(password) > 72 {
		return fmt.Errorf("пароль не должен превышать 72 байта")
	}
	return nil
}
