// storage/redis.go - Redis cache-aside layer for game states
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"f1cards/game"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStateStore serves Load from Redis and falls back to the wrapped
// store. Writes always go to the wrapped store first; the cache entry is
// refreshed afterwards or dropped if that fails. Each entry is a hash of
// the state version and its JSON, and an entry is only ever replaced by a
// newer version, so racing writers cannot leave an older state cached.
type CachedStateStore struct {
	inner  StateStore
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

func NewCachedStateStore(inner StateStore, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedStateStore {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStateStore{inner: inner, client: client, ttl: ttl, prefix: "f1cards:state:", log: log}
}

func (c *CachedStateStore) key(userID uint) string {
	return fmt.Sprintf("%s%d", c.prefix, userID)
}

// setIfNewer writes the entry unless the cached version is already at
// least as new. KEYS[1] entry, ARGV version, data, ttl in ms.
var setIfNewer = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'v') or '-1')
if cur ~= nil and cur >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

func (c *CachedStateStore) Load(ctx context.Context, userID uint) (game.State, error) {
	fields, err := c.client.HGetAll(ctx, c.key(userID)).Result()
	switch {
	case err != nil:
		c.log.Warn("cache_get_failed", zap.Uint("user_id", userID), zap.Error(err))
	case len(fields) > 0:
		st, derr := decodeCached(fields)
		if derr == nil {
			return st, nil
		}
		c.log.Warn("cache_decode_failed", zap.Uint("user_id", userID), zap.Error(derr))
	}

	st, err := c.inner.Load(ctx, userID)
	if err != nil {
		return game.State{}, err
	}
	c.set(ctx, userID, st)
	return st, nil
}

// Create writes through and leaves the first Load to fill the cache, since
// only the wrapped store knows the initial version.
func (c *CachedStateStore) Create(ctx context.Context, userID uint, st game.State) error {
	if err := c.inner.Create(ctx, userID, st); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(userID)).Err()
	return nil
}

func (c *CachedStateStore) Update(ctx context.Context, userID uint, fn UpdateFunc) (game.State, error) {
	st, err := c.inner.Update(ctx, userID, fn)
	if err != nil {
		return game.State{}, err
	}
	c.set(ctx, userID, st)
	return st, nil
}

// Invalidate drops the cached entry for a user.
func (c *CachedStateStore) Invalidate(ctx context.Context, userID uint) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

func (c *CachedStateStore) set(ctx context.Context, userID uint, st game.State) {
	data, err := json.Marshal(st)
	if err == nil {
		err = setIfNewer.Run(ctx, c.client, []string{c.key(userID)},
			st.Version, data, c.ttl.Milliseconds()).Err()
	}
	if err != nil {
		c.log.Warn("cache_set_failed", zap.Uint("user_id", userID), zap.Error(err))
		// drop the entry so the next Load reads through
		_ = c.client.Del(ctx, c.key(userID)).Err()
	}
}

func decodeCached(fields map[string]string) (game.State, error) {
	version, err := strconv.Atoi(fields["v"])
	if err != nil {
		return game.State{}, fmt.Errorf("decode cached version: %w", err)
	}
	st, err := decodeState([]byte(fields["data"]))
	if err != nil {
		return game.State{}, err
	}
	st.Version = version
	return st, nil
}

// NewRedisClient connects and pings, like the rest of the startup checks.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}
