// Package store — SQLite Store implementation.
// Uses the pure-Go modernc.org/sqlite driver so no cgo is needed.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/or4cl3/forge/pkg/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assets (
	id         TEXT PRIMARY KEY,
	studio     TEXT NOT NULL,
	name       TEXT NOT NULL,
	sigil      TEXT NOT NULL DEFAULT '',
	UNIQUE (studio, name)
);

CREATE TABLE IF NOT EXISTS asset_versions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id    TEXT NOT NULL,
	config_json TEXT NOT NULL,
	saved_at    TEXT NOT NULL,
	FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_asset_versions_asset ON asset_versions(asset_id, id);

CREATE TABLE IF NOT EXISTS studio_settings (
	studio     TEXT PRIMARY KEY,
	theme      TEXT NOT NULL DEFAULT 'default',
	onboarded  INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("SQLite store opened")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQLiteStore) Close() error                   { return s.db.Close() }

// ── Asset Store ─────────────────────────────────────────────

func (s *SQLiteStore) ListAssets(ctx context.Context, studio string) ([]models.SavedAsset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, studio, name, sigil FROM assets WHERE studio = ? OR ? = '' ORDER BY name`,
		studio, studio)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var result []models.SavedAsset
	for rows.Next() {
		var a models.SavedAsset
		if err := rows.Scan(&a.ID, &a.Studio, &a.Name, &a.Sigil); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		versions, err := s.loadVersions(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Versions = versions
	}
	return result, nil
}

func (s *SQLiteStore) GetAsset(ctx context.Context, studio, name string) (*models.SavedAsset, error) {
	var a models.SavedAsset
	err := s.db.QueryRowContext(ctx,
		`SELECT id, studio, name, sigil FROM assets WHERE studio = ? AND name = ?`,
		studio, name).Scan(&a.ID, &a.Studio, &a.Name, &a.Sigil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "asset", Key: name}
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	versions, err := s.loadVersions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Versions = versions
	return &a, nil
}

func (s *SQLiteStore) loadVersions(ctx context.Context, assetID string) ([]models.AssetVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT config_json, saved_at FROM asset_versions WHERE asset_id = ? ORDER BY id`,
		assetID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.AssetVersion
	for rows.Next() {
		var cfgJSON, savedAt string
		if err := rows.Scan(&cfgJSON, &savedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		var v models.AssetVersion
		if err := json.Unmarshal([]byte(cfgJSON), &v.Config); err != nil {
			return nil, fmt.Errorf("decode version config: %w", err)
		}
		if v.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("parse saved_at: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLiteStore) SaveVersion(ctx context.Context, studio, name, sigil string, cfg models.UnifiedConfig) (*models.SavedAsset, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var assetID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM assets WHERE studio = ? AND name = ?`, studio, name).Scan(&assetID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		assetID = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assets (id, studio, name, sigil) VALUES (?, ?, ?, ?)`,
			assetID, studio, name, sigil); err != nil {
			return nil, fmt.Errorf("insert asset: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup asset: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET sigil = ? WHERE id = ?`, sigil, assetID); err != nil {
			return nil, fmt.Errorf("update sigil: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO asset_versions (asset_id, config_json, saved_at) VALUES (?, ?, ?)`,
		assetID, string(cfgJSON), now.Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetAsset(ctx, studio, name)
}

func (s *SQLiteStore) GetVersion(ctx context.Context, studio, name string, index int) (*models.AssetVersion, error) {
	a, err := s.GetAsset(ctx, studio, name)
	if err != nil {
		return nil, err
	}
	if len(a.Versions) == 0 {
		return nil, &ErrNotFound{Entity: "asset", Key: name}
	}
	if index == -1 {
		index = len(a.Versions) - 1
	}
	if index < 0 || index >= len(a.Versions) {
		return nil, &ErrNotFound{Entity: "asset version", Key: name}
	}
	v := a.Versions[index]
	return &v, nil
}

func (s *SQLiteStore) DeleteAsset(ctx context.Context, studio, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assets WHERE studio = ? AND name = ?`, studio, name)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ErrNotFound{Entity: "asset", Key: name}
	}
	return nil
}

// ── Studio Settings ─────────────────────────────────────────

func (s *SQLiteStore) GetSettings(ctx context.Context, studio string) (*models.StudioSettings, error) {
	var st models.StudioSettings
	var onboarded int
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT studio, theme, onboarded, updated_at FROM studio_settings WHERE studio = ?`,
		studio).Scan(&st.Studio, &st.Theme, &onboarded, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.StudioSettings{Studio: studio, Theme: models.ThemeDefault}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	st.Onboarded = onboarded != 0
	if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) UpsertSettings(ctx context.Context, settings *models.StudioSettings) error {
	onboarded := 0
	if settings.Onboarded {
		onboarded = 1
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO studio_settings (studio, theme, onboarded, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(studio) DO UPDATE SET theme = excluded.theme, onboarded = excluded.onboarded, updated_at = excluded.updated_at`,
		settings.Studio, string(settings.Theme), onboarded, now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	settings.UpdatedAt = now
	return nil
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
