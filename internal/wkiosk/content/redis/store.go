// Package redis stores content snapshots in Redis so that several display
// clients, or a replaced kiosk machine, can start from the last good content.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

// DefaultKeyExpiry is used for key lifetime management
const DefaultKeyExpiry = 7 * 24 * time.Hour

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	// Key names the snapshot; displays sharing a key share content
	Key string
	TTL time.Duration
}

// Store implements content.SnapshotStore using Redis
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewStore creates a new Redis-backed snapshot store
func NewStore(client *redis.Client, key string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultKeyExpiry
	}
	return &Store{client: client, key: key, ttl: ttl}
}

// Connect dials Redis and verifies the connection
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewStore(client, cfg.Key, cfg.TTL), nil
}

// keyStr converts the configured name to a Redis key
func (s *Store) keyStr() string {
	return fmt.Sprintf("wkiosk:snapshot:%s", s.key)
}

// Load implements content.SnapshotStore
func (s *Store) Load(ctx context.Context) (*content.Snapshot, error) {
	const op = "RedisStore.Load"

	val, err := s.client.Get(ctx, s.keyStr()).Bytes()
	if err == redis.Nil {
		return nil, werrors.NewError(werrors.CodeNotFound, "no snapshot saved", op, werrors.ErrNotFound)
	}
	if err != nil {
		return nil, werrors.NewError(werrors.CodeInternal, "failed to read snapshot", op, err)
	}

	var snap content.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, werrors.NewError(werrors.CodeInternal, "failed to decode snapshot", op, err)
	}
	return &snap, nil
}

// Save implements content.SnapshotStore
func (s *Store) Save(ctx context.Context, snap *content.Snapshot) error {
	const op = "RedisStore.Save"

	data, err := json.Marshal(snap)
	if err != nil {
		return werrors.NewError(werrors.CodeInternal, "failed to encode snapshot", op, err)
	}
	if err := s.client.Set(ctx, s.keyStr(), data, s.ttl).Err(); err != nil {
		return werrors.NewError(werrors.CodeInternal, "failed to write snapshot", op, err)
	}
	return nil
}

// Close releases the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
