package ports

import (
	"auth-fabric/internal/model"
	"context"
)

type AuthenticationService interface {
	Register(ctx context.Context, email, password, fullName string) (*model.User, error)
	Login(ctx context.Context, email, password string, client model.ClientInfo) (*model.TokensPair, error)
	Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GoogleAuthURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string, client model.ClientInfo) (*model.TokensPair, error)
}

// GoogleProfile : данные пользователя из userinfo
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type GoogleProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*GoogleProfile, error)
}
