// Package gensvc is the generation service boundary: the only place
// non-deterministic, network-dependent behavior enters the system. It
// turns free-text descriptions into schema-constrained asset
// configurations and streams narrative/simulation text, backed by the
// Gemini API. A deterministic fake stands in when no credential is
// configured.
package gensvc

import (
	"context"
	"errors"

	"github.com/or4cl3/forge/pkg/models"
)

// ErrInvalidJSON is returned when the model reply cannot be parsed as a
// configuration of the requested kind.
var ErrInvalidJSON = errors.New("gensvc: invalid JSON from model")

// ErrNoCredential is returned by the Gemini constructor when no API key
// is available.
var ErrNoCredential = errors.New("gensvc: no API key configured")

// SimActionType tags one step of an agent grid-world simulation.
type SimActionType string

const (
	SimMove     SimActionType = "move"
	SimInteract SimActionType = "interact"
	SimComplete SimActionType = "complete"
	SimFail     SimActionType = "fail"
)

// Terminal reports whether the action ends the simulation stream.
func (t SimActionType) Terminal() bool {
	return t == SimComplete || t == SimFail
}

// SimAction is a single structured step of a simulation stream.
// To is an [x,y] grid coordinate for move actions.
type SimAction struct {
	Action SimActionType `json:"action"`
	To     []int         `json:"to,omitempty"`
	Reason string        `json:"reason"`
}

// EthicalDilemma is a generated scenario with lettered response options.
type EthicalDilemma struct {
	Scenario string            `json:"scenario"`
	Options  map[string]string `json:"options"`
}

// EthicalAlignment scores a dilemma resolution on three axes, each 0..100.
type EthicalAlignment struct {
	Utilitarianism float64 `json:"utilitarianism"`
	Deontology     float64 `json:"deontology"`
	Transparency   float64 `json:"transparency"`
}

// DilemmaReport records how a configured asset resolved a dilemma.
type DilemmaReport struct {
	Choice           string           `json:"choice"`
	Justification    string           `json:"justification"`
	EthicalAlignment EthicalAlignment `json:"ethicalAlignment"`
}

// Service is the generation boundary consumed by the workspace and API
// layers. Stream methods deliver fragments through emit; consumers may
// abandon a stream at any time by returning an error or cancelling ctx,
// and terminal simulation actions end the stream.
type Service interface {
	// SynthesizeConfig turns a free-text description into a configuration
	// of the requested kind. The result is schema-constrained, clamped and
	// structurally valid.
	SynthesizeConfig(ctx context.Context, description string, kind models.AssetKind) (models.UnifiedConfig, error)

	// StreamNarrative streams a human-readable blueprint summary of the
	// configuration as text fragments.
	StreamNarrative(ctx context.Context, cfg models.UnifiedConfig, emit func(chunk string) error) error

	// StreamSimulation streams structured grid-world actions for an agent
	// configuration performing the given task.
	StreamSimulation(ctx context.Context, agent models.AgentConfig, task string, emit func(SimAction) error) error

	// GenerateDilemma produces an ethical-dilemma scenario grounded in
	// the configuration's ethical matrix.
	GenerateDilemma(ctx context.Context, cfg models.UnifiedConfig) (EthicalDilemma, error)

	// ResolveDilemma asks the configured asset to choose one of the
	// dilemma's options and justify the choice.
	ResolveDilemma(ctx context.Context, cfg models.UnifiedConfig, dilemma EthicalDilemma) (DilemmaReport, error)

	// Name identifies the backing implementation for logs.
	Name() string

	// Close releases underlying resources.
	Close() error
}
