package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"chirp/config"

	"github.com/go-redis/redis/v8"
)

// Limiter - скользящее окно: не больше limit действий на ключ за window.
// Проверка выполняется до любого обращения к хранилищу.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Лимитеры по семействам мутаций, инициализируются один раз на процесс
var (
	PostLimiter Limiter
	LikeLimiter Limiter
)

const (
	defaultPostLimit         = 1
	defaultPostWindowSeconds = 3
	defaultLikeLimit         = 10
	defaultLikeWindowSeconds = 60
)

// InitLimiters выбирает реализацию: Redis (общее состояние между процессами)
// или локальное окно, если Redis не поднят.
func InitLimiters() {
	posts := config.RateWindow{Limit: defaultPostLimit, WindowSeconds: defaultPostWindowSeconds}
	likes := config.RateWindow{Limit: defaultLikeLimit, WindowSeconds: defaultLikeWindowSeconds}
	if config.AppConfig != nil {
		if config.AppConfig.RateLimit.Posts.Limit > 0 {
			posts = config.AppConfig.RateLimit.Posts
		}
		if config.AppConfig.RateLimit.Likes.Limit > 0 {
			likes = config.AppConfig.RateLimit.Likes
		}
	}

	if RedisClient != nil {
		PostLimiter = NewRedisLimiter("posts", posts.Limit, time.Duration(posts.WindowSeconds)*time.Second)
		LikeLimiter = NewRedisLimiter("likes", likes.Limit, time.Duration(likes.WindowSeconds)*time.Second)
		return
	}

	log.Println("Redis is not available, falling back to in-process rate limiting")
	PostLimiter = NewMemoryLimiter(posts.Limit, time.Duration(posts.WindowSeconds)*time.Second)
	LikeLimiter = NewMemoryLimiter(likes.Limit, time.Duration(likes.WindowSeconds)*time.Second)
}

// RedisLimiter хранит отметки действий в sorted set с score = unix nano
type RedisLimiter struct {
	family string
	limit  int
	window time.Duration
}

var limiterSeq int64

func NewRedisLimiter(family string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{family: family, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if RedisClient == nil {
		return false, fmt.Errorf("redis not available")
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.family, key)
	now := time.Now().UnixNano()
	cutoff := now - l.window.Nanoseconds()
	// Суффикс защищает от коллизии двух действий в одну наносекунду
	member := fmt.Sprintf("%d-%d", now, atomic.AddInt64(&limiterSeq, 1))

	// Запись и подсчет в одном MULTI: свой элемент уже учтен в card,
	// поэтому два конкурентных запроса не могут пройти оба
	pipe := RedisClient.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now), Member: member})
	card := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if card.Val() > int64(l.limit) {
		// Отклоненная попытка не должна продлевать окно
		RedisClient.ZRem(ctx, redisKey, member)
		return false, nil
	}

	return true, nil
}

// MemoryLimiter - локальное окно на случай работы без Redis.
// Не авторитетен при нескольких экземплярах сервера.
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	hits      map[string][]time.Time
	lastSweep time.Time

	// подменяется в тестах
	now func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Ключи простаивающих пользователей сами себя не чистят,
	// без периодической уборки карта растет неограниченно
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false, nil
	}

	l.hits[key] = append(kept, now)
	return true, nil
}

func (l *MemoryLimiter) sweep(cutoff time.Time) {
	for key, hits := range l.hits {
		kept := hits[:0]
		for _, t := range hits {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = kept
	}
}
