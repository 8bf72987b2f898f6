// Package store — in-memory Store implementation.
// Used for local dev and tests. Supports file-based snapshot
// persistence so the gallery survives restarts.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/or4cl3/forge/pkg/models"
)

// snapshot is the JSON-serializable shape written to disk. The schema
// version tag guards against decoding snapshots from incompatible
// builds; unknown versions are rejected and the store starts fresh.
type snapshot struct {
	SchemaVersion int                               `json:"schemaVersion"`
	Assets        map[string]*models.SavedAsset     `json:"assets"`        // key: studio:name
	Settings      map[string]*models.StudioSettings `json:"settings"`      // key: studio
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu       sync.RWMutex
	assets   map[string]*models.SavedAsset     // key: studio:name
	settings map[string]*models.StudioSettings // key: studio

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals the save goroutine to stop
}

// NewMemoryStore creates a new in-memory store. If dataDir is
// non-empty, data is persisted to a JSON snapshot in that directory.
func NewMemoryStore(dataDir string) *MemoryStore {
	m := &MemoryStore{
		assets:   make(map[string]*models.SavedAsset),
		settings: make(map[string]*models.StudioSettings),
		saveCh:   make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}

	if dataDir != "" {
		m.snapshotPath = filepath.Join(dataDir, "forge.json")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
			m.snapshotPath = ""
		}
	}

	if m.snapshotPath != "" {
		m.loadSnapshot()
		go m.saveLoop()
	}

	log.Info().Str("snapshot", m.snapshotPath).Msg("Memory store configured")
	return m
}

// requestSave signals the background goroutine to persist data.
// Non-blocking: coalesces multiple rapid writes into one disk flush.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
		// Already pending
	}
}

// saveLoop runs in a goroutine, debouncing save requests (max 1 write per 500ms).
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			time.Sleep(500 * time.Millisecond) // debounce
			m.saveSnapshot()
		}
	}
}

// saveSnapshot persists all data to disk as JSON.
func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	snap := snapshot{
		SchemaVersion: models.SchemaVersion,
		Assets:        m.assets,
		Settings:      m.settings,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	// Write to temp file then rename for atomicity
	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Error().Err(err).Str("path", tmp).Msg("Failed to write snapshot tmp")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to rename snapshot")
		return
	}

	log.Debug().Str("path", m.snapshotPath).Msg("Snapshot saved")
}

// loadSnapshot reads data from disk on startup.
func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", m.snapshotPath).Msg("No snapshot file found, starting fresh")
			return
		}
		log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Failed to read snapshot")
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to parse snapshot, starting fresh")
		return
	}
	if snap.SchemaVersion != models.SchemaVersion {
		log.Error().
			Int("got", snap.SchemaVersion).
			Int("want", models.SchemaVersion).
			Str("path", m.snapshotPath).
			Msg("Snapshot schema version mismatch, starting fresh")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Assets != nil {
		m.assets = snap.Assets
	}
	if snap.Settings != nil {
		m.settings = snap.Settings
	}

	log.Info().
		Int("assets", len(m.assets)).
		Int("settings", len(m.settings)).
		Str("path", m.snapshotPath).
		Msg("Snapshot loaded")
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close stops the save goroutine and forces a final snapshot write.
// Safe to call multiple times (second call is a no-op).
func (m *MemoryStore) Close() error {
	select {
	case <-m.doneCh:
		// Already closed
		return nil
	default:
		close(m.doneCh)
	}

	if m.snapshotPath != "" {
		log.Info().Msg("Flushing final snapshot before shutdown...")
		m.saveSnapshot()
	}

	log.Info().Msg("Memory store closed")
	return nil
}

func key(parts ...string) string {
	k := ""
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// cloneAsset deep-copies a saved asset so callers cannot mutate the
// store's history through returned values.
func cloneAsset(a *models.SavedAsset) *models.SavedAsset {
	out := *a
	out.Versions = make([]models.AssetVersion, len(a.Versions))
	for i, v := range a.Versions {
		out.Versions[i] = models.AssetVersion{Config: v.Config.Clone(), SavedAt: v.SavedAt}
	}
	return &out
}

// ── Asset Store ─────────────────────────────────────────────

func (m *MemoryStore) ListAssets(_ context.Context, studio string) ([]models.SavedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []models.SavedAsset
	for _, a := range m.assets {
		if a.Studio == studio || studio == "" {
			result = append(result, *cloneAsset(a))
		}
	}
	// Same ordering as the SQLite backend.
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MemoryStore) GetAsset(_ context.Context, studio, name string) (*models.SavedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[key(studio, name)]
	if !ok {
		return nil, &ErrNotFound{Entity: "asset", Key: name}
	}
	return cloneAsset(a), nil
}

func (m *MemoryStore) SaveVersion(_ context.Context, studio, name, sigil string, cfg models.UnifiedConfig) (*models.SavedAsset, error) {
	version := models.AssetVersion{Config: cfg.Clone(), SavedAt: time.Now().UTC()}

	m.mu.Lock()
	k := key(studio, name)
	a, ok := m.assets[k]
	if !ok {
		a = &models.SavedAsset{
			ID:     uuid.NewString(),
			Name:   name,
			Studio: studio,
		}
		m.assets[k] = a
	}
	a.Sigil = sigil
	a.Versions = append(a.Versions, version)
	out := cloneAsset(a)
	m.mu.Unlock()

	m.requestSave()
	return out, nil
}

func (m *MemoryStore) GetVersion(_ context.Context, studio, name string, index int) (*models.AssetVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[key(studio, name)]
	if !ok || len(a.Versions) == 0 {
		return nil, &ErrNotFound{Entity: "asset", Key: name}
	}
	if index == -1 {
		index = len(a.Versions) - 1
	}
	if index < 0 || index >= len(a.Versions) {
		return nil, &ErrNotFound{Entity: "asset version", Key: name}
	}
	v := a.Versions[index]
	out := models.AssetVersion{Config: v.Config.Clone(), SavedAt: v.SavedAt}
	return &out, nil
}

func (m *MemoryStore) DeleteAsset(_ context.Context, studio, name string) error {
	m.mu.Lock()
	k := key(studio, name)
	if _, ok := m.assets[k]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "asset", Key: name}
	}
	delete(m.assets, k)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// ── Studio Settings ─────────────────────────────────────────

func (m *MemoryStore) GetSettings(_ context.Context, studio string) (*models.StudioSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[studio]
	if !ok {
		// Return default settings if none exist
		return &models.StudioSettings{
			Studio: studio,
			Theme:  models.ThemeDefault,
		}, nil
	}
	copy := *s
	return &copy, nil
}

func (m *MemoryStore) UpsertSettings(_ context.Context, settings *models.StudioSettings) error {
	m.mu.Lock()
	copy := *settings
	copy.UpdatedAt = time.Now().UTC()
	m.settings[settings.Studio] = &copy
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
