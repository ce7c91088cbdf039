package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a thin JSON read-through cache over Redis. A nil *Store is valid
// and misses on every lookup, so callers never branch on whether Redis is
// configured.
type Store struct {
	client *redis.Client
}

// FromEnv returns nil when REDIS_ADDR is unset; the catalog then serves
// straight from Postgres.
func FromEnv() *Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})}
}

var errMiss = errors.New("cache: miss")

func (s *Store) GetJSON(ctx context.Context, key string, out interface{}) error {
	if s == nil {
		return errMiss
	}
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return errMiss
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	// Best effort: a failed SET just means the next read hits the database.
	s.client.Set(ctx, key, raw, ttl)
}
