package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eleven-am/voice-relay/internal/shared"
	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

// Cache is a write-through redis layer in front of the session store.
// The database stays the source of truth; cache entries are discardable
// and evicted when a session ends.
type Cache struct {
	redis *redis.Client
}

func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

func (c *Cache) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, sess.RedisKey(), data, cacheTTL).Err()
}

func (c *Cache) Get(ctx context.Context, id string) (*Session, error) {
	data, err := c.redis.Get(ctx, "session:"+id).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Cache) Evict(ctx context.Context, id string) error {
	return c.redis.Del(ctx, "session:"+id).Err()
}
