package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/or4cl3/forge/internal/store"
	"github.com/or4cl3/forge/pkg/models"
)

// newTestStore creates a fresh in-memory store persisting to a temp dir.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore(t.TempDir())
	t.Cleanup(func() { s.Close() })
	return s
}

// eachBackend runs the subtest against both store implementations.
func eachBackend(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, newTestStore(t))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "forge.db"))
		if err != nil {
			t.Fatalf("NewSQLiteStore() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

// ─── Asset versioning ────────────────────────────────────────

func TestSaveVersion_CreatesAsset(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		cfg := models.DefaultConfig(models.KindLLM)
		a, err := s.SaveVersion(ctx, "default", "my-model", "sigil-1", cfg)
		if err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}
		if a.Name != "my-model" || a.Studio != "default" {
			t.Errorf("asset identity = %q/%q", a.Studio, a.Name)
		}
		if a.ID == "" {
			t.Error("asset ID not assigned")
		}
		if len(a.Versions) != 1 {
			t.Fatalf("len(Versions) = %d, want 1", len(a.Versions))
		}
		if a.Versions[0].SavedAt.IsZero() {
			t.Error("version timestamp not set")
		}
	})
}

func TestSaveVersion_AppendsNeverOverwrites(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		first := models.DefaultConfig(models.KindLLM)
		first.Model.Core.Layers = 6
		if _, err := s.SaveVersion(ctx, "default", "evolving", "s1", first); err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}

		second := models.DefaultConfig(models.KindLLM)
		second.Model.Core.Layers = 24
		a, err := s.SaveVersion(ctx, "default", "evolving", "s2", second)
		if err != nil {
			t.Fatalf("SaveVersion() second call error = %v", err)
		}

		if len(a.Versions) != 2 {
			t.Fatalf("len(Versions) = %d, want 2", len(a.Versions))
		}
		// Oldest first, and the first snapshot untouched by the second save.
		if got := a.Versions[0].Config.Model.Core.Layers; got != 6 {
			t.Errorf("Versions[0] layers = %d, want original 6", got)
		}
		if got := a.Versions[1].Config.Model.Core.Layers; got != 24 {
			t.Errorf("Versions[1] layers = %d, want 24", got)
		}
		if a.Sigil != "s2" {
			t.Errorf("sigil = %q, want latest s2", a.Sigil)
		}
	})
}

func TestGetVersion_Indexing(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		for _, layers := range []int{6, 12, 24} {
			cfg := models.DefaultConfig(models.KindLLM)
			cfg.Model.Core.Layers = layers
			if _, err := s.SaveVersion(ctx, "default", "hist", "", cfg); err != nil {
				t.Fatalf("SaveVersion() error = %v", err)
			}
		}

		v0, err := s.GetVersion(ctx, "default", "hist", 0)
		if err != nil {
			t.Fatalf("GetVersion(0) error = %v", err)
		}
		if v0.Config.Model.Core.Layers != 6 {
			t.Errorf("version 0 layers = %d, want 6", v0.Config.Model.Core.Layers)
		}

		latest, err := s.GetVersion(ctx, "default", "hist", -1)
		if err != nil {
			t.Fatalf("GetVersion(-1) error = %v", err)
		}
		if latest.Config.Model.Core.Layers != 24 {
			t.Errorf("latest layers = %d, want 24", latest.Config.Model.Core.Layers)
		}

		if _, err := s.GetVersion(ctx, "default", "hist", 99); err == nil {
			t.Error("GetVersion(99) should fail")
		}
	})
}

func TestListAssets_StudioScoped(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		// Saved out of order; listings come back sorted by name.
		for _, name := range []string{"c3", "a1", "b2"} {
			if _, err := s.SaveVersion(ctx, "default", name, "", models.DefaultConfig(models.KindAgent)); err != nil {
				t.Fatalf("SaveVersion() error = %v", err)
			}
		}
		if _, err := s.SaveVersion(ctx, "other-studio", "other", "", models.DefaultConfig(models.KindApp)); err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}

		assets, err := s.ListAssets(ctx, "default")
		if err != nil {
			t.Fatalf("ListAssets() error = %v", err)
		}
		if len(assets) != 3 {
			t.Fatalf("ListAssets() returned %d assets, want 3", len(assets))
		}
		for i, want := range []string{"a1", "b2", "c3"} {
			if assets[i].Name != want {
				t.Errorf("assets[%d].Name = %q, want %q", i, assets[i].Name, want)
			}
		}
	})
}

func TestDeleteAsset(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		if _, err := s.SaveVersion(ctx, "default", "doomed", "", models.DefaultConfig(models.KindWorkflow)); err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}
		if err := s.DeleteAsset(ctx, "default", "doomed"); err != nil {
			t.Fatalf("DeleteAsset() error = %v", err)
		}
		_, err := s.GetAsset(ctx, "default", "doomed")
		var nf *store.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("GetAsset() after delete error = %v, want ErrNotFound", err)
		}
		if err := s.DeleteAsset(ctx, "default", "doomed"); !errors.As(err, &nf) {
			t.Errorf("second DeleteAsset() error = %v, want ErrNotFound", err)
		}
	})
}

func TestGetAsset_NotFound(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		_, err := s.GetAsset(context.Background(), "default", "ghost")
		var nf *store.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("GetAsset() error = %v, want ErrNotFound", err)
		}
	})
}

// ─── Studio settings ─────────────────────────────────────────

func TestSettings_DefaultAndUpsert(t *testing.T) {
	eachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		got, err := s.GetSettings(ctx, "default")
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if got.Theme != models.ThemeDefault {
			t.Errorf("default theme = %q, want %q", got.Theme, models.ThemeDefault)
		}
		if got.Onboarded {
			t.Error("fresh studio reports onboarded")
		}

		if err := s.UpsertSettings(ctx, &models.StudioSettings{
			Studio:    "default",
			Theme:     models.ThemeCyberpunk,
			Onboarded: true,
		}); err != nil {
			t.Fatalf("UpsertSettings() error = %v", err)
		}

		got, err = s.GetSettings(ctx, "default")
		if err != nil {
			t.Fatalf("GetSettings() error = %v", err)
		}
		if got.Theme != models.ThemeCyberpunk || !got.Onboarded {
			t.Errorf("settings after upsert = %+v", got)
		}
		if got.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not set on upsert")
		}
	})
}

// ─── SQLite persistence ──────────────────────────────────────

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forge.db")
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	for _, layers := range []int{6, 24} {
		cfg := models.DefaultConfig(models.KindLLM)
		cfg.Model.Core.Layers = layers
		if _, err := s.SaveVersion(ctx, "default", "durable", "sig", cfg); err != nil {
			t.Fatalf("SaveVersion() error = %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	a, err := reopened.GetAsset(ctx, "default", "durable")
	if err != nil {
		t.Fatalf("GetAsset() after reopen error = %v", err)
	}
	if len(a.Versions) != 2 {
		t.Fatalf("len(Versions) = %d, want 2", len(a.Versions))
	}
	if a.Versions[0].Config.Model.Core.Layers != 6 || a.Versions[1].Config.Model.Core.Layers != 24 {
		t.Errorf("version order lost across reopen: %+v", a.Versions)
	}
}

// ─── Snapshot persistence (memory store) ─────────────────────

func TestMemoryStore_SnapshotSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := store.NewMemoryStore(dir)
	if _, err := s.SaveVersion(ctx, "default", "persisted", "sig", models.DefaultConfig(models.KindApp)); err != nil {
		t.Fatalf("SaveVersion() error = %v", err)
	}
	if err := s.Close(); err != nil { // Close flushes the snapshot
		t.Fatalf("Close() error = %v", err)
	}

	reopened := store.NewMemoryStore(dir)
	t.Cleanup(func() { reopened.Close() })

	a, err := reopened.GetAsset(ctx, "default", "persisted")
	if err != nil {
		t.Fatalf("GetAsset() after restart error = %v", err)
	}
	if len(a.Versions) != 1 || a.Versions[0].Config.Kind != models.KindApp {
		t.Errorf("restored asset = %+v", a)
	}
}

func TestMemoryStore_RejectsUnknownSnapshotSchema(t *testing.T) {
	dir := t.TempDir()
	bad := map[string]any{"schemaVersion": models.SchemaVersion + 1, "assets": map[string]any{}}
	data, _ := json.Marshal(bad)
	if err := os.WriteFile(filepath.Join(dir, "forge.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	s := store.NewMemoryStore(dir)
	t.Cleanup(func() { s.Close() })

	assets, err := s.ListAssets(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("store loaded %d assets from incompatible snapshot, want fresh start", len(assets))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveVersion(ctx, "default", "iso", "", models.DefaultConfig(models.KindLLM)); err != nil {
		t.Fatalf("SaveVersion() error = %v", err)
	}
	a, err := s.GetAsset(ctx, "default", "iso")
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	a.Versions[0].Config.Model.Core.Layers = 999

	again, err := s.GetAsset(ctx, "default", "iso")
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if again.Versions[0].Config.Model.Core.Layers == 999 {
		t.Error("mutating a returned asset leaked into the store")
	}
}
