package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// RedisBackend implements Backend using Redis.
// It provides shared session storage suitable for running the workspace
// behind several processes pointed at one store.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is the Redis password (optional).
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix for all workspace keys (default: "mindweave:").
	Prefix string
	// SessionTTL is the session expiry duration (0 = never expire).
	SessionTTL time.Duration
	// PoolSize is the connection pool size (default: 10).
	PoolSize int
}

// NewRedisBackend creates a new Redis storage backend.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "mindweave:"
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisBackend{
		client: client,
		prefix: prefix,
		ttl:    cfg.SessionTTL,
	}, nil
}

// NewRedisBackendFromClient creates a Redis backend from an existing client.
// This is useful for testing with miniredis.
func NewRedisBackendFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "mindweave:"
	}
	return &RedisBackend{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key helpers
func (b *RedisBackend) thoughtsKey(sessionID string) string {
	return b.prefix + "thoughts:" + sessionID
}

func (b *RedisBackend) updatedKey(sessionID string) string {
	return b.prefix + "updated:" + sessionID
}

func (b *RedisBackend) indexKey() string {
	return b.prefix + "sessions"
}

func (b *RedisBackend) defaultKey() string {
	return b.prefix + "default"
}

func (b *RedisBackend) checkClosed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStorageClosed
	}
	return nil
}

// SaveThoughts persists the full ordered thought list for a session.
func (b *RedisBackend) SaveThoughts(ctx context.Context, sessionID string, thoughts []*thought.Thought) error {
	if err := b.checkClosed(); err != nil {
		return err
	}

	if thoughts == nil {
		thoughts = []*thought.Thought{}
	}
	data, err := json.Marshal(thoughts)
	if err != nil {
		return fmt.Errorf("marshal thoughts: %w", err)
	}

	pipe := b.client.Pipeline()
	pipe.Set(ctx, b.thoughtsKey(sessionID), data, b.ttl)
	pipe.Set(ctx, b.updatedKey(sessionID), time.Now().UTC().Format(time.RFC3339Nano), b.ttl)
	pipe.SAdd(ctx, b.indexKey(), sessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadThoughts retrieves the ordered thought list for a session.
// A missing key yields an empty list, never an error.
func (b *RedisBackend) LoadThoughts(ctx context.Context, sessionID string) ([]*thought.Thought, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}

	data, err := b.client.Get(ctx, b.thoughtsKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*thought.Thought{}, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var thoughts []*thought.Thought
	if err := json.Unmarshal(data, &thoughts); err != nil {
		return nil, fmt.Errorf("unmarshal thoughts: %w", err)
	}
	if thoughts == nil {
		thoughts = []*thought.Thought{}
	}
	return thoughts, nil
}

// SessionExists reports whether a session record exists.
func (b *RedisBackend) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}

	n, err := b.client.Exists(ctx, b.thoughtsKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("exists check: %w", err)
	}
	return n > 0, nil
}

// ListSessions enumerates all persisted sessions with summary metadata.
func (b *RedisBackend) ListSessions(ctx context.Context) ([]*SessionSummary, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}

	ids, err := b.client.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]*SessionSummary, 0, len(ids))
	for _, id := range ids {
		thoughts, err := b.LoadThoughts(ctx, id)
		if err != nil {
			return nil, err
		}
		exists, err := b.SessionExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			// Record expired or was deleted out of band; heal the index.
			b.client.SRem(ctx, b.indexKey(), id)
			continue
		}

		summary := &SessionSummary{
			ID:           id,
			ThoughtCount: len(thoughts),
		}
		if len(thoughts) > 0 {
			summary.FirstThought = thoughts[0].Timestamp
			summary.LastThought = thoughts[len(thoughts)-1].Timestamp
		}
		if stamp, err := b.client.Get(ctx, b.updatedKey(id)).Result(); err == nil {
			if t, perr := time.Parse(time.RFC3339Nano, stamp); perr == nil {
				summary.UpdatedAt = t
			}
		}
		summaries = append(summaries, summary)
	}

	// Most recently updated first, matching the file backend.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

// DeleteSession removes a session record and heals the index. If the
// deleted session is the current default, the pointer is cleared too.
func (b *RedisBackend) DeleteSession(ctx context.Context, sessionID string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}

	exists, err := b.SessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}

	pipe := b.client.Pipeline()
	pipe.Del(ctx, b.thoughtsKey(sessionID))
	pipe.Del(ctx, b.updatedKey(sessionID))
	pipe.SRem(ctx, b.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	current, err := b.DefaultSession(ctx)
	if err != nil {
		return err
	}
	if current == sessionID {
		return b.ClearDefaultSession(ctx)
	}
	return nil
}

// DefaultSession returns the default session id, or "" when unset.
func (b *RedisBackend) DefaultSession(ctx context.Context) (string, error) {
	if err := b.checkClosed(); err != nil {
		return "", err
	}

	id, err := b.client.Get(ctx, b.defaultKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("get default pointer: %w", err)
	}
	return id, nil
}

// SetDefaultSession persists the default pointer unconditionally.
func (b *RedisBackend) SetDefaultSession(ctx context.Context, sessionID string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}

	if err := b.client.Set(ctx, b.defaultKey(), sessionID, 0).Err(); err != nil {
		return fmt.Errorf("set default pointer: %w", err)
	}
	return nil
}

// ClearDefaultSession removes the default pointer. Idempotent.
func (b *RedisBackend) ClearDefaultSession(ctx context.Context) error {
	if err := b.checkClosed(); err != nil {
		return err
	}

	if err := b.client.Del(ctx, b.defaultKey()).Err(); err != nil {
		return fmt.Errorf("clear default pointer: %w", err)
	}
	return nil
}

// Close releases resources held by the backend.
func (b *RedisBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}

// Ping checks if the Redis connection is alive.
func (b *RedisBackend) Ping(ctx context.Context) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	return b.client.Ping(ctx).Err()
}
