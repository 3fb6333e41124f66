package service

import (
	"auth-fabric/config"
	"auth-fabric/internal/ports"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthProvider : обмен кода на токен Google и чтение профиля
type GoogleOAuthProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuthProvider(cfg config.GoogleConfig) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleOAuthProvider) FetchProfile(ctx context.Context, code string) (*ports.GoogleProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[Google] ошибка обмена кода: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("[Google] ошибка запроса userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[Google] userinfo ответил %d", resp.StatusCode)
	}

	var profile ports.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("[Google] ошибка разбора userinfo: %w", err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("[Google] в профиле нет id или email")
	}
	return &profile, nil
}
