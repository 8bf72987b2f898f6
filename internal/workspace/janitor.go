package workspace

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultIdleTTL is how long an untouched workspace survives before the
// janitor closes it.
const DefaultIdleTTL = 2 * time.Hour

// Janitor periodically closes workspaces that have been idle past their
// TTL. Workspaces with live event subscribers are never reaped: an open
// stream means someone is still watching.
type Janitor struct {
	mgr      *Manager
	interval time.Duration
	ttl      time.Duration
}

// NewJanitor creates a janitor sweeping on the given interval. A
// non-positive ttl falls back to DefaultIdleTTL; the interval is floored
// at one minute.
func NewJanitor(mgr *Manager, interval, ttl time.Duration) *Janitor {
	if interval < time.Minute {
		interval = time.Minute
	}
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Janitor{mgr: mgr, interval: interval, ttl: ttl}
}

// Start runs the janitor until ctx is canceled. It blocks.
func (j *Janitor) Start(ctx context.Context) {
	log.Info().
		Dur("interval", j.interval).
		Dur("ttl", j.ttl).
		Msg("Workspace janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Workspace janitor stopped")
			return
		case <-ticker.C:
			j.runCycle()
		}
	}
}

// runCycle performs one sweep and returns how many workspaces it closed.
func (j *Janitor) runCycle() int {
	cutoff := time.Now().UTC().Add(-j.ttl)
	reaped := 0

	for _, snap := range j.mgr.List() {
		if !snap.UpdatedAt.Before(cutoff) {
			continue
		}
		if j.mgr.subscriberCount(snap.ID) > 0 {
			continue
		}
		if err := j.mgr.Delete(snap.ID); err != nil {
			log.Warn().Err(err).Str("workspace", snap.ID).Msg("Janitor failed to close workspace")
			continue
		}
		reaped++
	}

	if reaped > 0 {
		log.Info().Int("workspaces", reaped).Msg("Idle workspaces closed")
	}
	return reaped
}
