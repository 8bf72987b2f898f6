// Package synth drives description-to-configuration synthesis for a
// workspace. Keystroke-level description updates are debounced, and a
// generation counter discards results that arrive after a newer
// description superseded them, so the last description always wins no
// matter how slowly earlier calls return.
package synth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/or4cl3/forge/internal/gensvc"
	"github.com/or4cl3/forge/pkg/models"
)

// DefaultDebounce is the pause after the last description update
// before synthesis fires.
const DefaultDebounce = 750 * time.Millisecond

// Result is delivered for every settled synthesis attempt. Config is
// valid only when Err is nil.
type Result struct {
	Description string
	Kind        models.AssetKind
	Config      models.UnifiedConfig
	Err         error
}

// Synthesizer debounces Describe calls and runs at most one in-flight
// synthesis whose result is still wanted. Safe for concurrent use.
type Synthesizer struct {
	svc     gensvc.Service
	delay   time.Duration
	deliver func(Result)
	log     zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	settled uint64
	timer   *time.Timer
	closed  bool

	// deliverMu serializes the staleness check with deliver, so a
	// result superseded between the two can never install last.
	deliverMu sync.Mutex

	wg sync.WaitGroup
}

// New creates a Synthesizer. deliver is invoked from a background
// goroutine once per synthesis that was not superseded; it must not
// block for long. A non-positive delay falls back to DefaultDebounce.
func New(svc gensvc.Service, delay time.Duration, deliver func(Result), logger zerolog.Logger) *Synthesizer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Synthesizer{svc: svc, delay: delay, deliver: deliver, log: logger}
}

// Describe schedules synthesis of the description after the debounce
// window. Any previously scheduled or in-flight synthesis is
// superseded: its result will be discarded silently.
func (s *Synthesizer) Describe(ctx context.Context, description string, kind models.AssetKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, gen, description, kind)
	})
}

// run performs one synthesis attempt for a given generation.
func (s *Synthesizer) run(ctx context.Context, gen uint64, description string, kind models.AssetKind) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	start := time.Now()
	cfg, err := s.svc.SynthesizeConfig(ctx, description, kind)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	stale := s.closed || gen != s.gen
	if !stale {
		s.settled = gen
	}
	s.mu.Unlock()
	if stale {
		s.log.Debug().Uint64("generation", gen).Msg("Discarding superseded synthesis result")
		return
	}

	if err != nil {
		s.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Synthesis failed")
	} else {
		s.log.Info().Str("kind", string(kind)).Dur("elapsed", time.Since(start)).Msg("Synthesis complete")
	}
	s.deliver(Result{Description: description, Kind: kind, Config: cfg, Err: err})
}

// Pending reports whether the latest Describe has not yet settled.
// Intended for status endpoints.
func (s *Synthesizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.gen > s.settled
}

// Close cancels any scheduled synthesis and waits for an in-flight one
// to settle. Results delivered after Close begins are suppressed.
func (s *Synthesizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
