package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/internal/store"
	"github.com/or4cl3/forge/pkg/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(gensvc.NewFake(), 10*time.Millisecond, zerolog.Nop())
	t.Cleanup(m.Close)
	return m
}

func waitEvent(t *testing.T, ch chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed while waiting for %q event", want)
			}
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", want)
		}
	}
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	snap, err := m.Create(models.KindAgent)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if snap.Config.Kind != models.KindAgent {
		t.Fatalf("kind = %q, want %q", snap.Config.Kind, models.KindAgent)
	}
	if snap.ID == "" {
		t.Fatal("snapshot has empty id")
	}

	got, err := m.Get(snap.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Config.Kind != models.KindAgent {
		t.Fatalf("Get kind = %q", got.Config.Kind)
	}
}

func TestGet_NotFound(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get("nope")
	var nf *store.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetField_BroadcastsConfigEvent(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)
	ch := m.Subscribe(snap.ID)
	defer m.Unsubscribe(snap.ID, ch)

	updated, err := m.SetField(snap.ID, "core", "layers", models.MaxLayers)
	if err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if updated.Config.Model.Core.Layers != models.MaxLayers {
		t.Fatalf("layers = %d, want %d", updated.Config.Model.Core.Layers, models.MaxLayers)
	}

	ev := waitEvent(t, ch, EventConfig)
	if ev.Config == nil || ev.Config.Model.Core.Layers != models.MaxLayers {
		t.Fatal("config event does not carry the updated configuration")
	}
	if ev.Status == nil {
		t.Fatal("config event missing derived status")
	}
}

func TestSetKind_ResetsToTemplate(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)

	got, err := m.SetKind(snap.ID, models.KindWorkflow)
	if err != nil {
		t.Fatalf("SetKind: %v", err)
	}
	if got.Config.Kind != models.KindWorkflow {
		t.Fatalf("kind = %q", got.Config.Kind)
	}
	want := models.DefaultConfig(models.KindWorkflow)
	if len(got.Config.Workflow.Steps) != len(want.Workflow.Steps) {
		t.Fatal("workflow template not installed")
	}
}

func TestToggleSet_RoundTrips(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindAgent)
	base, _ := m.Get(snap.ID)
	before := len(base.Config.Agent.Tools)

	added, err := m.ToggleSet(snap.ID, "tools", string(models.ToolAPIConnector))
	if err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	removed, err := m.ToggleSet(snap.ID, "tools", string(models.ToolAPIConnector))
	if err != nil {
		t.Fatalf("ToggleSet: %v", err)
	}
	if len(added.Config.Agent.Tools) != before+1 || len(removed.Config.Agent.Tools) != before {
		t.Fatalf("toggle did not round-trip: %d -> %d -> %d",
			before, len(added.Config.Agent.Tools), len(removed.Config.Agent.Tools))
	}
}

func TestDescribe_DeliversSynthesisEvent(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)
	ch := m.Subscribe(snap.ID)
	defer m.Unsubscribe(snap.ID, ch)

	if err := m.Describe(context.Background(), snap.ID, "a fast lightweight assistant for code review"); err != nil {
		t.Fatalf("Describe: %v", err)
	}
	ev := waitEvent(t, ch, EventSynthesis)
	if ev.Config == nil || ev.Config.Kind != models.KindLLM {
		t.Fatal("synthesis event missing configuration")
	}

	got, _ := m.Get(snap.ID)
	if got.Config.Model.Core.Layers != ev.Config.Model.Core.Layers {
		t.Fatal("delivered configuration was not installed")
	}
}

func TestDescribe_GuardErrorBecomesErrorEvent(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)
	ch := m.Subscribe(snap.ID)
	defer m.Unsubscribe(snap.ID, ch)

	if err := m.Describe(context.Background(), snap.ID, "short"); err != nil {
		t.Fatalf("Describe: %v", err)
	}
	ev := waitEvent(t, ch, EventError)
	if ev.Message == "" {
		t.Fatal("error event has empty message")
	}
}

func TestSynthesize_Immediate(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindApp)

	got, err := m.Synthesize(context.Background(), snap.ID, "a realtime dashboard with a database backend")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got.Config.Kind != models.KindApp {
		t.Fatalf("kind = %q", got.Config.Kind)
	}
	if err := got.Config.Validate(); err != nil {
		t.Fatalf("synthesized config invalid: %v", err)
	}
}

func TestSetBioSignal_PerturbsStatus(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)
	base, _ := m.Status(snap.ID)

	withBio, err := m.SetBioSignal(snap.ID, models.BioSignal{Active: true, Engagement: 95, Focus: 5})
	if err != nil {
		t.Fatalf("SetBioSignal: %v", err)
	}
	if withBio.Status == base {
		t.Fatal("active bio-signal did not move the gauges")
	}

	cleared, _ := m.SetBioSignal(snap.ID, models.BioSignal{})
	if cleared.Status != base {
		t.Fatal("inactive bio-signal should restore the base gauges")
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.Create(models.KindAgent)
	m.ToggleSet(a.ID, "tools", string(models.ToolAPIConnector))

	env, err := m.Export(a.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if env.SchemaVersion != models.SchemaVersion {
		t.Fatalf("schema version = %d", env.SchemaVersion)
	}

	b, _ := m.Create(models.KindLLM)
	got, err := m.Import(b.ID, env)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Config.Kind != models.KindAgent {
		t.Fatalf("imported kind = %q", got.Config.Kind)
	}
}

func TestImport_RejectsUnknownSchemaVersion(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)

	_, err := m.Import(snap.ID, models.ConfigEnvelope{
		SchemaVersion: models.SchemaVersion + 1,
		Config:        models.DefaultConfig(models.KindLLM),
	})
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want SchemaMismatchError", err)
	}
}

func TestLoadConfig_InstallsCopy(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)

	src := models.DefaultConfig(models.KindLLM)
	src.Model.Core.Layers = models.MaxLayers
	got, err := m.LoadConfig(snap.ID, src)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// Mutating the source after load must not reach the workspace.
	src.Model.Expertise.Domains = append(src.Model.Expertise.Domains, "Quantum Physics / Advanced Math")
	after, _ := m.Get(snap.ID)
	if len(after.Config.Model.Expertise.Domains) != len(got.Config.Model.Expertise.Domains) {
		t.Fatal("workspace shares state with the loaded source")
	}
}

func TestDelete_ClosesSubscribers(t *testing.T) {
	m := newTestManager(t)
	snap, _ := m.Create(models.KindLLM)
	ch := m.Subscribe(snap.ID)

	if err := m.Delete(snap.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			// Drain any event delivered before the close.
			for range ch {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed after delete")
	}

	if _, err := m.Get(snap.ID); err == nil {
		t.Fatal("workspace still reachable after delete")
	}
	if err := m.Delete(snap.ID); err == nil {
		t.Fatal("second delete should report not found")
	}
}

func TestList(t *testing.T) {
	m := newTestManager(t)
	m.Create(models.KindLLM)
	m.Create(models.KindAgent)
	if got := len(m.List()); got != 2 {
		t.Fatalf("List returned %d workspaces, want 2", got)
	}
}
