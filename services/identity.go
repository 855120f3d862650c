package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"chirp/config"

	"resty.dev/v3"
)

const sessionCacheTTL = 60 * time.Second

// SessionVerifier разрешает токен сессии в ID пользователя у провайдера.
// В тестах подменяется заглушкой.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (string, error)
}

var Identity SessionVerifier

// IdentityClient ходит в HTTP API провайдера аутентификации
// и кеширует положительные ответы в Redis.
type IdentityClient struct {
	http *resty.Client
}

func InitIdentity() error {
	if config.AppConfig == nil {
		return fmt.Errorf("AppConfig is not loaded")
	}
	idConf := config.AppConfig.Identity
	if idConf.URL == "" {
		return fmt.Errorf("identity provider URL is missing")
	}

	timeout := time.Duration(idConf.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	Identity = &IdentityClient{
		http: resty.New().SetBaseURL(idConf.URL).SetTimeout(timeout),
	}
	return nil
}

func (c *IdentityClient) VerifySession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("session token is empty")
	}

	// В кеш кладем по хешу, чтобы не хранить сырые токены
	cacheKey := "session:" + sha256hex(token)
	if RedisClient != nil {
		if userID, err := RedisClient.Get(ctx, cacheKey).Result(); err == nil && userID != "" {
			return userID, nil
		}
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"token": token}).
		SetResult(&out).
		Post("/v1/sessions/verify")
	if err != nil {
		return "", fmt.Errorf("failed to verify session: %w", err)
	}
	if !res.IsSuccess() || out.UserID == "" {
		return "", fmt.Errorf("session rejected by identity provider: %s", res.Status())
	}

	if RedisClient != nil {
		RedisClient.Set(ctx, cacheKey, out.UserID, sessionCacheTTL)
	}
	return out.UserID, nil
}

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
