// Package workspace manages live editing sessions. Each workspace owns
// exactly one configuration plus its bio-signal; every edit flows
// through the pure mutators, the status gauges are recomputed on read,
// and subscribers are fanned the resulting events.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/or4cl3/forge/internal/biofeed"
	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/internal/mutate"
	"github.com/or4cl3/forge/internal/status"
	"github.com/or4cl3/forge/internal/store"
	"github.com/or4cl3/forge/internal/synth"
	"github.com/or4cl3/forge/pkg/models"
)

// EventType discriminates workspace events on the SSE stream.
type EventType string

const (
	EventConfig    EventType = "config"
	EventSynthesis EventType = "synthesis"
	EventBioSignal EventType = "biosignal"
	EventError     EventType = "error"
)

// Event is one workspace change notification. Config, Status and Bio
// are populated according to Type.
type Event struct {
	Type      EventType             `json:"type"`
	Workspace string                `json:"workspace"`
	Config    *models.UnifiedConfig `json:"config,omitempty"`
	Status    *models.SystemStatus  `json:"status,omitempty"`
	Bio       *models.BioSignal     `json:"bio,omitempty"`
	Message   string                `json:"message,omitempty"`
}

// Snapshot is the read view of a workspace. Status is derived at
// snapshot time and never stored.
type Snapshot struct {
	ID        string               `json:"id"`
	Config    models.UnifiedConfig `json:"config"`
	Bio       models.BioSignal     `json:"bio"`
	Status    models.SystemStatus  `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

type workspaceState struct {
	id string

	mu        sync.Mutex
	cfg       models.UnifiedConfig
	bio       models.BioSignal
	createdAt time.Time
	updatedAt time.Time

	synth  *synth.Synthesizer
	bioSim *biofeed.Simulator
}

func (w *workspaceState) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        w.id,
		Config:    w.cfg.Clone(),
		Bio:       w.bio,
		Status:    status.Compute(w.cfg, w.bio),
		CreatedAt: w.createdAt,
		UpdatedAt: w.updatedAt,
	}
}

// Manager owns all live workspaces and the event fan-out. Safe for
// concurrent use.
type Manager struct {
	svc      gensvc.Service
	debounce time.Duration
	log      zerolog.Logger

	mu         sync.RWMutex
	workspaces map[string]*workspaceState
	closed     bool

	subsMu sync.RWMutex
	subs   map[string][]chan Event
}

// NewManager creates an empty Manager. Synthesis runs through svc with
// the given debounce window (non-positive uses the synthesizer default).
func NewManager(svc gensvc.Service, debounce time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		svc:        svc,
		debounce:   debounce,
		log:        logger,
		workspaces: make(map[string]*workspaceState),
		subs:       make(map[string][]chan Event),
	}
}

// Create opens a new workspace seeded with the default template for
// kind.
func (m *Manager) Create(kind models.AssetKind) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Snapshot{}, errors.New("workspace manager is closed")
	}

	now := time.Now().UTC()
	w := &workspaceState{
		id:        uuid.NewString(),
		cfg:       models.DefaultConfig(kind),
		createdAt: now,
		updatedAt: now,
	}
	id := w.id
	w.synth = synth.New(m.svc, m.debounce, func(res synth.Result) {
		m.installSynthesis(id, res)
	}, m.log.With().Str("workspace", id).Logger())
	w.bioSim = biofeed.New(biofeed.DefaultInterval, time.Now().UnixNano(), func(sig models.BioSignal) {
		m.installBioSignal(id, sig)
	})

	m.workspaces[id] = w
	m.log.Info().Str("workspace", id).Str("kind", string(kind)).Msg("workspace created")

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked(), nil
}

func (m *Manager) find(id string) (*workspaceState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workspaces[id]
	if !ok {
		return nil, &store.ErrNotFound{Entity: "workspace", Key: id}
	}
	return w, nil
}

// Get returns the workspace snapshot.
func (m *Manager) Get(id string) (Snapshot, error) {
	w, err := m.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked(), nil
}

// List returns snapshots of all open workspaces.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	states := make([]*workspaceState, 0, len(m.workspaces))
	for _, w := range m.workspaces {
		states = append(states, w)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(states))
	for _, w := range states {
		w.mu.Lock()
		out = append(out, w.snapshotLocked())
		w.mu.Unlock()
	}
	return out
}

// Delete closes a workspace, stopping its synthesizer and bio-signal
// simulator and closing every subscriber channel.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	w, ok := m.workspaces[id]
	if ok {
		delete(m.workspaces, id)
	}
	m.mu.Unlock()
	if !ok {
		return &store.ErrNotFound{Entity: "workspace", Key: id}
	}

	w.bioSim.Stop()
	w.synth.Close()
	m.dropSubscribers(id)
	m.log.Info().Str("workspace", id).Msg("workspace deleted")
	return nil
}

// apply runs a pure config transform under the workspace lock and
// broadcasts the resulting config event.
func (m *Manager) apply(id string, fn func(models.UnifiedConfig) models.UnifiedConfig) (Snapshot, error) {
	w, err := m.find(id)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	w.cfg = fn(w.cfg)
	w.updatedAt = time.Now().UTC()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	m.broadcast(id, Event{Type: EventConfig, Workspace: id, Config: &snap.Config, Status: &snap.Status})
	return snap, nil
}

// SetKind switches the workspace to a fresh template of the given kind.
func (m *Manager) SetKind(id string, kind models.AssetKind) (Snapshot, error) {
	return m.apply(id, func(cfg models.UnifiedConfig) models.UnifiedConfig {
		return mutate.SetKind(cfg, kind)
	})
}

// SetField updates one scalar field of the active configuration.
func (m *Manager) SetField(id, section, field string, value any) (Snapshot, error) {
	return m.apply(id, func(cfg models.UnifiedConfig) models.UnifiedConfig {
		return mutate.SetField(cfg, section, field, value)
	})
}

// ToggleSet toggles membership of item in the set at path.
func (m *Manager) ToggleSet(id, path, item string) (Snapshot, error) {
	return m.apply(id, func(cfg models.UnifiedConfig) models.UnifiedConfig {
		return mutate.ToggleSet(cfg, path, item)
	})
}

// SetWebSearchField updates one field of the agent web-search block.
func (m *Manager) SetWebSearchField(id, field string, value any) (Snapshot, error) {
	return m.apply(id, func(cfg models.UnifiedConfig) models.UnifiedConfig {
		return mutate.SetWebSearchField(cfg, field, value)
	})
}

// LoadConfig installs a copy of cfg as the active configuration, as
// when restoring a gallery version.
func (m *Manager) LoadConfig(id string, cfg models.UnifiedConfig) (Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return Snapshot{}, err
	}
	return m.apply(id, func(models.UnifiedConfig) models.UnifiedConfig {
		return cfg.Clone()
	})
}

// Status recomputes and returns the derived gauges.
func (m *Manager) Status(id string) (models.SystemStatus, error) {
	snap, err := m.Get(id)
	if err != nil {
		return models.SystemStatus{}, err
	}
	return snap.Status, nil
}

// ── Bio-signal ───────────────────────────────────────────────

// SetBioSignal installs an externally supplied bio-signal sample.
func (m *Manager) SetBioSignal(id string, sig models.BioSignal) (Snapshot, error) {
	w, err := m.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	w.mu.Lock()
	w.bio = sig
	snap := w.snapshotLocked()
	w.mu.Unlock()

	m.broadcast(id, Event{Type: EventBioSignal, Workspace: id, Bio: &snap.Bio, Status: &snap.Status})
	return snap, nil
}

// StartBioFeed begins emitting simulated bio-signal samples into the
// workspace. Starting an already running feed is a no-op.
func (m *Manager) StartBioFeed(id string) error {
	w, err := m.find(id)
	if err != nil {
		return err
	}
	w.bioSim.Start()
	return nil
}

// StopBioFeed stops the simulated feed; the simulator emits one final
// inactive sample on its way out.
func (m *Manager) StopBioFeed(id string) error {
	w, err := m.find(id)
	if err != nil {
		return err
	}
	w.bioSim.Stop()
	return nil
}

func (m *Manager) installBioSignal(id string, sig models.BioSignal) {
	w, err := m.find(id)
	if err != nil {
		return // workspace deleted while the simulator was stopping
	}
	w.mu.Lock()
	w.bio = sig
	snap := w.snapshotLocked()
	w.mu.Unlock()

	m.broadcast(id, Event{Type: EventBioSignal, Workspace: id, Bio: &snap.Bio, Status: &snap.Status})
}

// ── Synthesis ────────────────────────────────────────────────

// Describe schedules debounced synthesis of the description for the
// workspace's current kind. The settled result arrives as a synthesis
// (or error) event.
func (m *Manager) Describe(ctx context.Context, id, description string) error {
	w, err := m.find(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	kind := w.cfg.Kind
	w.mu.Unlock()

	w.synth.Describe(ctx, description, kind)
	return nil
}

// Synthesize runs synthesis immediately, bypassing the debounce, and
// installs the result.
func (m *Manager) Synthesize(ctx context.Context, id, description string) (Snapshot, error) {
	w, err := m.find(id)
	if err != nil {
		return Snapshot{}, err
	}
	w.mu.Lock()
	kind := w.cfg.Kind
	w.mu.Unlock()

	cfg, err := m.svc.SynthesizeConfig(ctx, description, kind)
	if err != nil {
		return Snapshot{}, err
	}

	w.mu.Lock()
	w.cfg = cfg
	w.updatedAt = time.Now().UTC()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	m.broadcast(id, Event{Type: EventSynthesis, Workspace: id, Config: &snap.Config, Status: &snap.Status})
	return snap, nil
}

func (m *Manager) installSynthesis(id string, res synth.Result) {
	if res.Err != nil {
		m.log.Warn().Err(res.Err).Str("workspace", id).Msg("synthesis failed")
		m.broadcast(id, Event{Type: EventError, Workspace: id, Message: res.Err.Error()})
		return
	}

	w, err := m.find(id)
	if err != nil {
		return // workspace deleted before the result settled
	}
	w.mu.Lock()
	if w.cfg.Kind != res.Kind {
		// The kind changed while synthesis was in flight; the result no
		// longer applies.
		w.mu.Unlock()
		return
	}
	w.cfg = res.Config
	w.updatedAt = time.Now().UTC()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	m.broadcast(id, Event{Type: EventSynthesis, Workspace: id, Config: &snap.Config, Status: &snap.Status})
}

// ── Export / import ──────────────────────────────────────────

// Export wraps the active configuration in a versioned envelope.
func (m *Manager) Export(id string) (models.ConfigEnvelope, error) {
	snap, err := m.Get(id)
	if err != nil {
		return models.ConfigEnvelope{}, err
	}
	return models.ConfigEnvelope{SchemaVersion: models.SchemaVersion, Config: snap.Config}, nil
}

// Import installs a previously exported envelope after checking its
// schema version and structural validity.
func (m *Manager) Import(id string, env models.ConfigEnvelope) (Snapshot, error) {
	if env.SchemaVersion != models.SchemaVersion {
		return Snapshot{}, &SchemaMismatchError{Got: env.SchemaVersion}
	}
	return m.LoadConfig(id, env.Config)
}

// SchemaMismatchError reports an envelope whose schema version this
// build cannot read.
type SchemaMismatchError struct {
	Got int
}

func (e *SchemaMismatchError) Error() string {
	return "unsupported config schema version"
}

// ── Event fan-out ────────────────────────────────────────────

// Subscribe registers a buffered event channel for the workspace. The
// channel is closed when the workspace is deleted, the manager shuts
// down, or Unsubscribe is called.
func (m *Manager) Subscribe(id string) chan Event {
	ch := make(chan Event, 32)
	m.subsMu.Lock()
	m.subs[id] = append(m.subs[id], ch)
	m.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (m *Manager) Unsubscribe(id string, ch chan Event) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	chans := m.subs[id]
	for i, c := range chans {
		if c == ch {
			m.subs[id] = append(chans[:i], chans[i+1:]...)
			close(c)
			return
		}
	}
}

func (m *Manager) broadcast(id string, ev Event) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, ch := range m.subs[id] {
		select {
		case ch <- ev:
		default:
			m.log.Warn().Str("workspace", id).Str("event", string(ev.Type)).Msg("subscriber too slow, dropping event")
		}
	}
}

func (m *Manager) subscriberCount(id string) int {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	return len(m.subs[id])
}

func (m *Manager) dropSubscribers(id string) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs[id] {
		close(ch)
	}
	delete(m.subs, id)
}

// Close deletes every workspace and stops all background work.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	states := make([]*workspaceState, 0, len(m.workspaces))
	ids := make([]string, 0, len(m.workspaces))
	for id, w := range m.workspaces {
		states = append(states, w)
		ids = append(ids, id)
	}
	m.workspaces = make(map[string]*workspaceState)
	m.mu.Unlock()

	for i, w := range states {
		w.bioSim.Stop()
		w.synth.Close()
		m.dropSubscribers(ids[i])
	}
}
