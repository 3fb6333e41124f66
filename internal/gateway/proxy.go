package gateway

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// заголовки одного соединения, не передаются дальше
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy : пересылает запрос в сервис и копирует ответ клиенту
type Proxy struct {
	client *http.Client
}

func NewProxy(timeout time.Duration) *Proxy {
	return &Proxy{
		client: &http.Client{
			Timeout: timeout,
			// редиректы сервиса (например /login/google) отдаются клиенту как есть
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Forward : метод, query, тело и заголовки без Host. Ошибка транспорта даёт 503.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request, service *Service, path, clientIP string) {
	target := *service.URL
	target.Path = singleJoiningSlash(service.URL.Path, path)
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		zap.L().Error("[Gateway] ошибка создания запроса", zap.String("service", service.Name), zap.Error(err))
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	req.ContentLength = r.ContentLength

	copyHeaders(req.Header, r.Header)
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		zap.L().Error("[Gateway] сервис недоступен",
			zap.String("service", service.Name), zap.String("url", redact(&target)), zap.Error(err))
		http.Error(w, "Service "+service.Name+" unavailable", http.StatusServiceUnavailable)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		zap.L().Warn("[Gateway] ответ сервиса передан не полностью", zap.String("service", service.Name), zap.Error(err))
	}
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if strings.EqualFold(name, "Host") || isHopHeader(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isHopHeader(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}

func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}

func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}
