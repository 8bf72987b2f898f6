// Package biofeed generates simulated bio-adaptive signals. A running
// simulator produces a drifting engagement/focus pair on a fixed tick,
// standing in for a real biometric source during development.
package biofeed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/or4cl3/forge/pkg/models"
)

// DefaultInterval is the tick between emitted samples.
const DefaultInterval = 2 * time.Second

const baseline = 60.0

// Simulator emits a random-walk BioSignal on every tick. Values are
// pulled gently toward a resting baseline and clamped to [0,100].
type Simulator struct {
	interval time.Duration
	emit     func(models.BioSignal)

	mu         sync.Mutex
	rng        *rand.Rand
	engagement float64
	focus      float64
	stopCh     chan struct{}
}

// New creates a stopped simulator. emit is called from the simulator
// goroutine once per tick while running.
func New(interval time.Duration, seed int64, emit func(models.BioSignal)) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{
		interval:   interval,
		emit:       emit,
		rng:        rand.New(rand.NewSource(seed)),
		engagement: baseline,
		focus:      baseline,
	}
}

// Start begins emitting samples. Calling Start on a running simulator
// is a no-op.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
}

// Stop halts emission. The final inactive sample lets consumers fall
// back to neutral status.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	s.mu.Unlock()
	s.emit(models.BioSignal{Active: false})
}

// Running reports whether the simulator is emitting.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

func (s *Simulator) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.emit(s.step())
		}
	}
}

// step advances the random walk one tick.
func (s *Simulator) step() models.BioSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engagement = drift(s.engagement, s.rng)
	s.focus = drift(s.focus, s.rng)
	return models.BioSignal{Active: true, Engagement: s.engagement, Focus: s.focus}
}

func drift(v float64, rng *rand.Rand) float64 {
	v += rng.NormFloat64() * 4
	v += (baseline - v) * 0.05 // pull toward resting baseline
	return clamp(v)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
