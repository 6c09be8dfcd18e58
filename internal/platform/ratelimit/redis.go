// Package ratelimit provides a Redis-backed counter for go-chi/httprate.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

// CounterStore implements httprate.LimitCounter on top of Redis so limits
// hold across multiple application instances. Redis failures fail open: the
// request is counted as zero and the error is logged.
type CounterStore struct {
	client *redis.Client
	logger *slog.Logger
	prefix string
	window time.Duration
}

// NewCounterStore constructs a CounterStore with the given key prefix.
func NewCounterStore(client *redis.Client, logger *slog.Logger, prefix string) *CounterStore {
	return &CounterStore{client: client, logger: logger, prefix: prefix}
}

// Config is called by httprate with the configured limit parameters.
func (c *CounterStore) Config(requestLimit int, windowLength time.Duration) {
	c.window = windowLength
}

// Increment adds one request to the counter for the current window.
func (c *CounterStore) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy adds amount requests to the counter for the current window.
func (c *CounterStore) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	redisKey := c.redisKey(key, currentWindow)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, redisKey, int64(amount))
	// Keep the previous window around for the sliding computation.
	pipe.Expire(ctx, redisKey, c.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		c.warn("increment", err)
	}
	return nil
}

// Get returns request counts for the current and previous windows.
func (c *CounterStore) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	values, err := c.client.MGet(ctx, c.redisKey(key, currentWindow), c.redisKey(key, previousWindow)).Result()
	if err != nil {
		c.warn("get", err)
		return 0, 0, nil
	}
	return parseCount(values[0]), parseCount(values[1]), nil
}

func (c *CounterStore) redisKey(key string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, key, window.Unix())
}

func (c *CounterStore) warn(op string, err error) {
	if c.logger != nil {
		c.logger.Warn("rate limit counter degraded", slog.String("op", op), slog.Any("error", err))
	}
}

func parseCount(value any) int {
	s, ok := value.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Limit returns a per-IP rate limiting middleware counted in Redis.
func Limit(requests int, window time.Duration, client *redis.Client, logger *slog.Logger, prefix string) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitCounter(NewCounterStore(client, logger, prefix)),
	)
}

var _ httprate.LimitCounter = (*CounterStore)(nil)
