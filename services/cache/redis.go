// Package cachesvc keeps computed aggregates in redis.
//
// Each student has a generation counter under aggregates:<student>:gen. Entries live under
// aggregates:<student>:<gen>:<key>, each with its own TTL set once when written.
// Invalidation increments the counter, which retires every entry of older generations.
package cachesvc

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/analytics"
)

const keyPrefix = "aggregates:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ analytics.Cache = (*RedisCache)(nil)

// NewRedisClient connects with short timeouts: a slow cache must not slow down reads.
func NewRedisClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         conf.Redis.Addr,
		Password:     conf.Redis.Password,
		DB:           conf.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// generationKey never expires: a reset counter could revive entries of a past generation.
func generationKey(studentID string) string {
	return keyPrefix + studentID + ":gen"
}

func entryKey(studentID string, gen int64, key string) string {
	return keyPrefix + studentID + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *RedisCache) Generation(ctx context.Context, studentID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(studentID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, core.Unavailable(err, "reading aggregate cache generation")
	}
	return gen, nil
}

func (c *RedisCache) Get(ctx context.Context, studentID string, gen int64, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, entryKey(studentID, gen, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, core.Unavailable(err, "reading aggregate cache")
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrap(err, "decoding cached aggregate")
	}
	return true, nil
}

// Set stores value for ttl. An entry already present is left untouched, so its expiry is never pushed back.
func (c *RedisCache) Set(ctx context.Context, studentID string, gen int64, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding aggregate")
	}
	if err = c.client.SetNX(ctx, entryKey(studentID, gen, key), raw, c.ttl).Err(); err != nil {
		return core.Unavailable(err, "writing aggregate cache")
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, studentIDs ...string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range studentIDs {
			pipe.Incr(ctx, generationKey(id))
		}
		return nil
	})
	if err != nil {
		return core.Unavailable(err, "invalidating aggregate cache")
	}
	return nil
}

// Healthy verifies redis connectivity.
func (c *RedisCache) Healthy(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}
