// Package store provides the persistence boundary for The Forge.
// Handler code depends only on the Store interface so the in-memory
// snapshot store (local dev, tests) and the SQLite store (production)
// are interchangeable.
package store

import (
	"context"

	"github.com/or4cl3/forge/pkg/models"
)

// Store is the primary storage interface.
type Store interface {
	AssetStore
	SettingsStore

	// Ping checks if the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// AssetStore persists the saved-asset gallery. Assets are keyed by
// (studio, name); saving under an existing name appends a version and
// never overwrites history.
type AssetStore interface {
	ListAssets(ctx context.Context, studio string) ([]models.SavedAsset, error)
	GetAsset(ctx context.Context, studio, name string) (*models.SavedAsset, error)

	// SaveVersion appends a configuration snapshot to the named asset,
	// creating the asset on first save. The returned asset reflects the
	// new history.
	SaveVersion(ctx context.Context, studio, name, sigil string, cfg models.UnifiedConfig) (*models.SavedAsset, error)

	// GetVersion returns one historical snapshot. Versions are indexed
	// from 0 (oldest); -1 addresses the latest.
	GetVersion(ctx context.Context, studio, name string, index int) (*models.AssetVersion, error)

	DeleteAsset(ctx context.Context, studio, name string) error
}

// SettingsStore persists per-studio UI settings.
type SettingsStore interface {
	GetSettings(ctx context.Context, studio string) (*models.StudioSettings, error)
	UpsertSettings(ctx context.Context, settings *models.StudioSettings) error
}

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
