// Package status derives the three display gauges (cognitive load,
// alignment drift, consistency) from an asset configuration. The formulas
// are a heuristic health dashboard, not a scientific model: the exact
// coefficients are load-bearing for display parity and must not drift.
package status

import "github.com/or4cl3/forge/pkg/models"

// Compute maps a configuration plus the bio signal to the three gauges.
// Pure and total: every valid configuration produces a result, and all
// three outputs are clamped to [0,100].
func Compute(cfg models.UnifiedConfig, bio models.BioSignal) models.SystemStatus {
	var load, drift, consistency float64

	switch cfg.Kind {
	case models.KindLLM:
		m := cfg.Model
		load = 1.5*float64(m.Core.Layers) +
			1.5*float64(m.Core.Heads) +
			float64(m.Core.HiddenDimension)/20 +
			float64(m.Memory.ShortTermTokens)/400 +
			5*float64(len(m.Expertise.Domains))
		if m.SelfImprovement.RecursiveStabilityMonitor {
			load += 5
		}
		if m.SelfImprovement.DynamicAlignmentEngine {
			load += 5
		}

		drift = max(0, 50-float64(m.EthicalMatrix.Transparency)/2) +
			(float64(m.EthicalMatrix.Utilitarianism)-50)/5
		if m.SelfImprovement.DynamicAlignmentEngine {
			drift -= 10
		}

		consistency = 100
		if m.Core.QuantumEvaluation && m.Core.Layers < 10 {
			consistency -= 20
		}
		if m.Memory.KnowledgeGraph && m.Memory.ShortTermTokens < 4096 {
			consistency -= 15
		}

	case models.KindAgent:
		a := cfg.Agent
		load = 20 + 15*float64(len(a.Tools))
		if a.Autonomous {
			load += 20
		}
		if a.HasTool(models.ToolWebSearch) &&
			a.WebSearchConfig != nil &&
			a.WebSearchConfig.SearchDepth == models.SearchDepthDeep {
			load += 10
		}

		if a.Autonomous {
			drift = 25
		} else {
			drift = 10
		}
		consistency = 100

	default: // workflow and app assets carry a flat baseline
		load = 15
		drift = 5
		consistency = 100
	}

	if bio.Active {
		factor := (bio.Engagement + bio.Focus) / 200
		drift -= 5 * factor
		consistency += 5 * factor
		load += 5 * (1 - factor)
	}

	return models.SystemStatus{
		CognitiveLoad:  clamp(load),
		AlignmentDrift: clamp(drift),
		Consistency:    clamp(consistency),
	}
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
