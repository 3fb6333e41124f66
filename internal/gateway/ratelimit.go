package gateway

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter : скользящее окно запросов на ключ
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// MemoryLimiter : метки времени запросов в памяти процесса. Ключи с опустевшим
// окном удаляются при очередной чистке, не чаще раза за окно.
type MemoryLimiter struct {
	mu        sync.Mutex
	clients   map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{clients: make(map[string][]time.Time), now: time.Now}
}

// WithClock : подмена времени для тестов
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if key == "" || limit <= 0 || window <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now, window)

	recent := l.clients[key][:0]
	for _, ts := range l.clients[key] {
		if now.Sub(ts) < window {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit {
		l.clients[key] = recent
		return false, nil
	}
	l.clients[key] = append(recent, now)
	return true, nil
}

// sweep : метки добавляются по возрастанию, последняя самая свежая
func (l *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now

	for key, stamps := range l.clients {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) >= window {
			delete(l.clients, key)
		}
	}
}

// Keys : число отслеживаемых ключей
func (l *MemoryLimiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ZSET: score = время запроса в мс; старые записи удаляются перед подсчётом
const slidingWindowScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", tonumber(ARGV[1]) - tonumber(ARGV[2]))
local current = redis.call("ZCARD", KEYS[1])
if current >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`

// RedisLimiter : общее окно для нескольких экземпляров шлюза
type RedisLimiter struct {
	client redis.Scripter
	script *redis.Script
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow : при ошибке Redis запрос пропускается, ошибка возвращается для лога
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if key == "" || limit <= 0 || window <= 0 {
		return true, nil
	}

	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	now := l.now().UnixMilli()
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, now, ttl, limit, member).Int64()
	if err != nil {
		return true, err
	}
	return allowed == 1, nil
}

// rateLimit : отдельные окна для публичных маршрутов auth и для остальных запросов
func (g *Gateway) rateLimit(w http.ResponseWriter, r *http.Request, ip string, authPublic bool) bool {
	key, limit := ip, g.limits.RequestsPerWindow
	if authPublic {
		key, limit = ip+":auth", g.limits.AuthPublicLimit
	}

	allowed, err := g.limiter.Allow(r.Context(), key, limit, g.window)
	if err != nil {
		zap.L().Warn("[Gateway] ошибка rate limiter, запрос пропущен", zap.Error(err))
	}
	if allowed {
		return true
	}

	zap.L().Warn("[Gateway] превышен лимит запросов", zap.String("ip", ip), zap.Bool("auth_public", authPublic))
	w.Header().Set("Retry-After", strconv.Itoa(int(g.window.Seconds())))
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
	return false
}
