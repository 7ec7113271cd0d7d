package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-games/novel-engine/pkg/state"
)

// BundleVersion is the export format version this package writes and the
// newest version Import accepts.
const BundleVersion = 1

var (
	// ErrBundleVersion is returned when an import bundle was produced by a
	// newer version of the engine than this one.
	ErrBundleVersion = errors.New("bundle version is newer than supported")

	// ErrBundleMalformed is returned when an import bundle fails structural
	// checks before any write happens.
	ErrBundleMalformed = errors.New("bundle is malformed")
)

// Bundle is a full snapshot of a store's saves and settings, used for
// backup and migration between backends.
type Bundle struct {
	Version    int                        `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Saves      []*state.GameSave          `json:"saves"`
	Settings   map[string]json.RawMessage `json:"settings,omitempty"`
}

// Validate rejects bundles before any partial write: a version newer than
// BundleVersion and structurally broken payloads are distinct failures.
func (b *Bundle) Validate() error {
	if b == nil {
		return ErrBundleMalformed
	}
	if b.Version > BundleVersion {
		return ErrBundleVersion
	}
	for _, gs := range b.Saves {
		if gs == nil || gs.ID == uuid.Nil {
			return ErrBundleMalformed
		}
	}
	return nil
}

// Store is the persistence provider contract: durable storage of saves plus
// arbitrary settings. Lookups return nil for missing records, never an
// error. Implementations must keep idempotent upsert semantics and isolate
// their keys from unrelated data sharing the same backend.
type Store interface {
	// Ping tests the backing connection.
	Ping(ctx context.Context) error

	// Close releases the backing connection.
	Close() error

	// GetSave returns a save by id, or nil if it does not exist.
	GetSave(ctx context.Context, id uuid.UUID) (*state.GameSave, error)

	// ListSaves returns all saves, most recently updated first.
	ListSaves(ctx context.Context) ([]*state.GameSave, error)

	// PutSave upserts a save and stamps its UpdatedAt.
	PutSave(ctx context.Context, gs *state.GameSave) error

	// DeleteSave removes a save by id. Deleting an absent save is not an error.
	DeleteSave(ctx context.Context, id uuid.UUID) error

	// GetSetting returns the raw JSON value for a settings key, or nil if
	// the key is unset.
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)

	// SetSetting stores a JSON-marshalable value under a settings key.
	SetSetting(ctx context.Context, key string, value any) error

	// Export snapshots every save and setting into a bundle.
	Export(ctx context.Context) (*Bundle, error)

	// Import upserts every save and setting from the bundle. The bundle is
	// validated first; nothing is written from an invalid bundle.
	Import(ctx context.Context, b *Bundle) error
}
