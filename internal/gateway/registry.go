package gateway

import (
	"auth-fabric/config"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Service : сервис за шлюзом
type Service struct {
	Name         string
	URL          *url.URL
	PublicRoutes []string
	SkipAudience bool
}

// Audience : значение aud, которое должен содержать токен для этого сервиса.
// Пустая строка отключает проверку aud.
func (s *Service) Audience() string {
	if s.SkipAudience {
		return ""
	}
	return s.Name + "-service"
}

// IsPublic : путь внутри сервиса начинается с одного из публичных маршрутов
func (s *Service) IsPublic(path string) bool {
	for _, route := range s.PublicRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

type Registry struct {
	services map[string]*Service
}

func NewRegistry(services map[string]config.ServiceConfig) (*Registry, error) {
	registry := &Registry{services: make(map[string]*Service, len(services))}
	for name, cfg := range services {
		target, err := url.Parse(cfg.URL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("[Gateway] некорректный url сервиса %s: %q", name, cfg.URL)
		}
		registry.services[name] = &Service{
			Name:         name,
			URL:          target,
			PublicRoutes: append([]string(nil), cfg.PublicRoutes...),
			SkipAudience: cfg.SkipAudience,
		}
	}
	return registry, nil
}

func (r *Registry) Lookup(name string) (*Service, bool) {
	s, ok := r.services[name]
	return s, ok
}

// Names : имена сервисов в алфавитном порядке
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
