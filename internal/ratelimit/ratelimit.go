// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mehrdadmmz/StagePass/internal/api/handler/v1/response"
)

const keyPrefix = "stagepass:ratelimit:"

type Limiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

func NewLimiter(client redis.Cmdable, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow counts one hit for key in the current window and reports whether the
// caller is still within the limit. Every hit sends EXPIRE NX with the INCR,
// so a key whose expiry was lost gets one again on the next request.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("l.client.TxPipelined -> %w", err)
	}

	return incr.Val() <= l.limit, nil
}

// Middleware limits requests per key returned by keyFn. Redis failures let the
// request through; validation correctness never depends on the limiter.
func (l *Limiter) Middleware(scope string, keyFn func(ctx *gin.Context) string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := scope + ":" + keyFn(ctx)

		allowed, err := l.Allow(ctx.Request.Context(), key)
		if err != nil {
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			ctx.Next()
			return
		}

		if !allowed {
			response.RenderErr(ctx, response.ErrTooManyRequests(int(l.window.Seconds())))
			return
		}

		ctx.Next()
	}
}

// NewClient builds a pooled client from a redis:// URL, falling back to a
// plain host:port address.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{
			Addr: url,
		}
	}
	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}
