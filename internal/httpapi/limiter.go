package httpapi

import (
	"context"
	"time"

	"cloudconnect/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles credential attempts per caller.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
	loginKeyPrefix     = "login_attempts:"
)

// RedisLoginLimiter counts attempts in a fixed window keyed by
// email and client address.
type RedisLoginLimiter struct {
	rdb *redis.Client
}

func NewRedisLoginLimiter(rdb *redis.Client) *RedisLoginLimiter {
	return &RedisLoginLimiter{rdb: rdb}
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return utils.AllowAttempt(ctx, l.rdb, loginKeyPrefix+key, loginAttemptLimit, loginAttemptWindow)
}
