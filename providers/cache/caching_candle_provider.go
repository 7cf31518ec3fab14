package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luksonlj/takie-tam/helpers"
	"github.com/luksonlj/takie-tam/interfaces"
	"github.com/luksonlj/takie-tam/models"
)

const defaultTTL = 30 * time.Second

// CachingCandleProvider serves repeated candle requests from redis. Backtests over
// the same range and several sessions on one symbol share one exchange fetch.
type CachingCandleProvider struct {
	inner interfaces.CandleProvider
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachingCandleProvider wraps inner. A nil client disables caching, a
// non-positive ttl falls back to 30s.
func NewCachingCandleProvider(rdb *redis.Client, ttl time.Duration, inner interfaces.CandleProvider) *CachingCandleProvider {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachingCandleProvider{inner: inner, rdb: rdb, ttl: ttl}
}

// NewRedisClient connects to addr and pings it
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	helpers.Logger.WithField("addr", addr).Info("redis connection successful")
	return rdb, nil
}

func (c *CachingCandleProvider) FetchCandles(ctx context.Context, symbol string, timeframe string, window int) ([]models.Candle, error) {
	if c.rdb == nil {
		return c.inner.FetchCandles(ctx, symbol, timeframe, window)
	}

	key := cacheKey(symbol, timeframe, window)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []models.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FetchCandles(ctx, symbol, timeframe, window)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			helpers.Logger.WithError(err).WithField("key", key).Debug("could not cache candles")
		}
	}
	return out, nil
}

func cacheKey(symbol string, timeframe string, window int) string {
	return fmt.Sprintf("candles:%s:%s:%d", safe(symbol), safe(timeframe), window)
}

func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, ":", "_")
}
