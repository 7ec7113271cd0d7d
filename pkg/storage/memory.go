package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-games/novel-engine/pkg/state"
)

// MemoryStore is the local single-process backend: an in-memory key-value
// store guarded by a RWMutex. It backs offline play and every unit test.
type MemoryStore struct {
	mu       sync.RWMutex
	saves    map[uuid.UUID]*state.GameSave
	settings map[string]json.RawMessage
	pingErr  error
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		saves:    make(map[uuid.UUID]*state.GameSave),
		settings: make(map[string]json.RawMessage),
	}
}

// SetPingError makes Ping fail with err; pass nil to restore availability.
// Used by tests exercising persistence-failure paths.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) GetSave(ctx context.Context, id uuid.UUID) (*state.GameSave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs, ok := m.saves[id]
	if !ok {
		return nil, nil
	}
	return gs.Clone(), nil
}

func (m *MemoryStore) ListSaves(ctx context.Context) ([]*state.GameSave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saves := make([]*state.GameSave, 0, len(m.saves))
	for _, gs := range m.saves {
		saves = append(saves, gs.Clone())
	}
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].UpdatedAt.After(saves[j].UpdatedAt)
	})
	return saves, nil
}

func (m *MemoryStore) PutSave(ctx context.Context, gs *state.GameSave) error {
	if gs == nil {
		return errors.New("save cannot be nil")
	}
	if gs.ID == uuid.Nil {
		return errors.New("save must have an id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stamped := gs.Clone()
	stamped.UpdatedAt = time.Now()
	gs.UpdatedAt = stamped.UpdatedAt
	m.saves[gs.ID] = stamped
	return nil
}

func (m *MemoryStore) DeleteSave(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *MemoryStore) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.settings[key]
	if !ok {
		return nil, nil
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp, nil
}

func (m *MemoryStore) SetSetting(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = raw
	return nil
}

func (m *MemoryStore) Export(ctx context.Context) (*Bundle, error) {
	saves, err := m.ListSaves(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings := make(map[string]json.RawMessage, len(m.settings))
	for k, v := range m.settings {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		settings[k] = cp
	}
	return &Bundle{
		Version:    BundleVersion,
		ExportedAt: time.Now(),
		Saves:      saves,
		Settings:   settings,
	}, nil
}

func (m *MemoryStore) Import(ctx context.Context, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gs := range b.Saves {
		m.saves[gs.ID] = gs.Clone()
	}
	for k, v := range b.Settings {
		cp := make(json.RawMessage, len(v))
		copy(cp, v)
		m.settings[k] = cp
	}
	return nil
}
