package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/inkwell-games/novel-engine/pkg/state"
	"github.com/inkwell-games/novel-engine/pkg/storage"
)

// RedisStore implements the storage.Store interface using Redis. Keys carry
// the engine prefix plus a caller-chosen namespace, so multiple deployments
// can share one Redis instance without touching each other's saves.
type RedisStore struct {
	client    *redis.Client
	logger    *slog.Logger
	namespace string
}

// Ensure RedisStore implements Store interface
var _ storage.Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store instance
func NewRedisStore(redisURL, namespace string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if namespace == "" {
		namespace = "default"
	}

	return &RedisStore{
		client:    rdb,
		logger:    logger,
		namespace: namespace,
	}
}

func (r *RedisStore) saveKey(id uuid.UUID) string {
	return fmt.Sprintf("novel:%s:save:%s", r.namespace, id)
}

func (r *RedisStore) settingKey(key string) string {
	return fmt.Sprintf("novel:%s:setting:%s", r.namespace, key)
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Client exposes the underlying Redis client for components that share the
// connection, such as the event relay.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Save operations

func (r *RedisStore) GetSave(ctx context.Context, id uuid.UUID) (*state.GameSave, error) {
	cmd := r.client.Get(ctx, r.saveKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Debug("Save not found", "uuid", id)
			return nil, nil
		}
		r.logger.Error("Failed to load save", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load save: %w", err)
	}

	var gs state.GameSave
	if err := json.Unmarshal([]byte(cmd.Val()), &gs); err != nil {
		r.logger.Error("Failed to unmarshal save", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	gs.Normalize()

	return &gs, nil
}

func (r *RedisStore) ListSaves(ctx context.Context) ([]*state.GameSave, error) {
	prefix := fmt.Sprintf("novel:%s:save:", r.namespace)

	var saves []*state.GameSave
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(strings.TrimPrefix(key, prefix))
		if err != nil {
			r.logger.Warn("Skipping malformed save key", "key", key)
			continue
		}
		gs, err := r.GetSave(ctx, id)
		if err != nil {
			return nil, err
		}
		if gs != nil {
			saves = append(saves, gs)
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan saves", "error", err)
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].UpdatedAt.After(saves[j].UpdatedAt)
	})

	return saves, nil
}

func (r *RedisStore) PutSave(ctx context.Context, gs *state.GameSave) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal save", "uuid", gs.ID, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	cmd := r.client.Set(ctx, r.saveKey(gs.ID), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to persist save", "uuid", gs.ID, "error", err)
		return fmt.Errorf("failed to persist save: %w", err)
	}

	return nil
}

func (r *RedisStore) DeleteSave(ctx context.Context, id uuid.UUID) error {
	cmd := r.client.Del(ctx, r.saveKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete save", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

// Settings operations

func (r *RedisStore) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	cmd := r.client.Get(ctx, r.settingKey(key))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load setting", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}
	return json.RawMessage(cmd.Val()), nil
}

func (r *RedisStore) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %w", err)
	}

	cmd := r.client.Set(ctx, r.settingKey(key), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to persist setting", "key", key, "error", err)
		return fmt.Errorf("failed to persist setting: %w", err)
	}
	return nil
}

// Export and import

func (r *RedisStore) Export(ctx context.Context) (*storage.Bundle, error) {
	saves, err := r.ListSaves(ctx)
	if err != nil {
		return nil, err
	}

	settings := make(map[string]json.RawMessage)
	prefix := fmt.Sprintf("novel:%s:setting:", r.namespace)
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.GetSetting(ctx, strings.TrimPrefix(key, prefix))
		if err != nil {
			return nil, err
		}
		if raw != nil {
			settings[strings.TrimPrefix(key, prefix)] = raw
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}

	return &storage.Bundle{
		Version:    storage.BundleVersion,
		ExportedAt: time.Now(),
		Saves:      saves,
		Settings:   settings,
	}, nil
}

func (r *RedisStore) Import(ctx context.Context, b *storage.Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}

	for _, gs := range b.Saves {
		if err := r.PutSave(ctx, gs); err != nil {
			return err
		}
	}
	for key, raw := range b.Settings {
		cmd := r.client.Set(ctx, r.settingKey(key), string(raw), 0)
		if err := cmd.Err(); err != nil {
			return fmt.Errorf("failed to import setting %q: %w", key, err)
		}
	}
	return nil
}
