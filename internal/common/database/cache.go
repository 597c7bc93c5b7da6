// internal/common/database/cache.go
package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheOpTimeout = 500 * time.Millisecond

// JSONCache stores JSON documents in redis under a fixed TTL. A nil client
// makes every lookup a miss and every write a no-op.
type JSONCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewJSONCache(client *redis.Client, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, ttl: ttl}
}

func (c *JSONCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes key into out. A missing key is (false, nil); a corrupt entry is
// reported as an error and treated as a miss.
func (c *JSONCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v interface{}) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// HashKey builds prefix + hex(sha256(json(parts))). Parts must be JSON
// encodable; map keys are sorted by encoding/json so equal inputs hash equal.
func HashKey(prefix string, parts ...interface{}) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return prefix + hex.EncodeToString(h.Sum(nil))
}
