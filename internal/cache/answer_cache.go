package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache memoizes successful answers in Redis. The key covers every
// input that can change the answer: the question plus all retrieval
// settings. Entries expire on TTL; the index fingerprint is part of the key
// so a reindex naturally stops serving stale answers.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Key derives the cache key from the question and settings.
func (c *AnswerCache) Key(question, variant string, topK int, minScore float64, indexFingerprint string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%g|%s", question, variant, topK, minScore, indexFingerprint)))
	return "assistant:answer:" + hex.EncodeToString(sum[:])
}

// Get returns (nil, false, nil) on a miss.
func (c *AnswerCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get answer failed: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("unmarshal cached answer failed: %w", err)
	}
	return true, nil
}

func (c *AnswerCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal answer cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}
