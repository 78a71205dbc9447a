package jupiter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	tokenListKey = "jupiter:token_list"
	tokenListTTL = 24 * time.Hour
)

// TokenCache caches the aggregator token list in Redis with graceful
// degradation: when Redis is unavailable the caller falls back to a
// direct HTTP fetch and the cache quietly sits out.
type TokenCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// CacheConfig holds Redis connection settings for the token cache.
type CacheConfig struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// NewTokenCache connects to Redis. A failed initial ping is logged, not
// fatal; the cache degrades to a no-op.
func NewTokenCache(cfg CacheConfig, logger zerolog.Logger) *TokenCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	tc := &TokenCache{
		client: client,
		logger: logger.With().Str("component", "TokenCache").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		tc.logger.Warn().Err(err).Msg("Redis unavailable, token cache degraded")
	}

	return tc
}

// Get returns the cached token list, or ok=false on miss or Redis error.
func (tc *TokenCache) Get(ctx context.Context) ([]TokenInfo, bool) {
	data, err := tc.client.Get(ctx, tokenListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			tc.logger.Warn().Err(err).Msg("Token cache read failed")
		}
		return nil, false
	}

	var tokens []TokenInfo
	if err := json.Unmarshal(data, &tokens); err != nil {
		tc.logger.Warn().Err(err).Msg("Token cache entry corrupt, ignoring")
		return nil, false
	}
	return tokens, true
}

// Set stores the token list. Failures are logged and swallowed; the
// cache never blocks initialization.
func (tc *TokenCache) Set(ctx context.Context, tokens []TokenInfo) {
	data, err := json.Marshal(tokens)
	if err != nil {
		return
	}
	if err := tc.client.Set(ctx, tokenListKey, data, tokenListTTL).Err(); err != nil {
		tc.logger.Warn().Err(err).Msg("Token cache write failed")
	}
}

// Close releases the Redis connection.
func (tc *TokenCache) Close() error {
	return tc.client.Close()
}
