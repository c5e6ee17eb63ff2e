package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces keys and the notify channel
const DefaultRedisPrefix = "claude-usage"

// RedisStore keeps values under prefixed keys and signals readers over pub/sub
type RedisStore struct {
	client *redis.Client
	prefix string

	closeOnce sync.Once
	done      chan struct{}
}

// OpenRedis connects and verifies the connection with a ping
func OpenRedis(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStore(client, cfg.Prefix), nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, done: make(chan struct{})}
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

// NotifyChannel is the pub/sub channel readers subscribe to
func (s *RedisStore) NotifyChannel() string {
	return s.prefix + ":notify"
}

// Get reads a key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, true, nil
}

// Put writes a key
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Notify publishes on the notify channel
func (s *RedisStore) Notify(ctx context.Context) error {
	stamp := time.Now().UnixNano()
	if err := s.client.Publish(ctx, s.NotifyChannel(), stamp).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Watch subscribes to the notify channel
func (s *RedisStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.NotifyChannel())
	// wait for the subscription confirmation so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.NotifyChannel(), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case _, ok := <-messages:
				if !ok {
					util.LogDebug("Redis notify subscription closed")
					return
				}
				signal(out)
			}
		}
	}()
	return out, nil
}

// Close ends active watches and closes the Redis connection
func (s *RedisStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.client.Close()
	})
	return err
}
