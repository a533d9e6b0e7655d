package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store is a best-effort key-value layer for editor session state: the last
// opened project, per-project scene backups, and layout preferences. A
// store failure is never fatal to the editor, so reads report missing data
// and writes log and move on.
type Store struct {
	client *redis.Client
}

func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Save marshals value under key. Errors are logged, not returned; session
// state is reconstructible and must never block an edit.
func (s *Store) Save(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[KV] failed to marshal %s: %v", key, err)
		return
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		log.Printf("[KV] failed to save %s: %v", key, err)
	}
}

// Load unmarshals key into dest, reporting whether usable data was found.
// A missing key, a store error, and a corrupt value all read as no data.
func (s *Store) Load(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("[KV] failed to load %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[KV] corrupt value at %s: %v", key, err)
		return false
	}
	return true
}

func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[KV] failed to remove %s: %v", key, err)
	}
}
