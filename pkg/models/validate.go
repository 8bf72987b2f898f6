package models

import "fmt"

// Validate checks structural soundness: kind/variant agreement, numeric
// bounds, set uniqueness and workflow step-id uniqueness. It is applied at
// the import and persistence boundaries; in-memory mutation trusts the
// callers (widgets clamp before mutating).
func (c UnifiedConfig) Validate() error {
	switch c.Kind {
	case KindLLM:
		if c.Model == nil {
			return fmt.Errorf("config: llm kind with nil model variant")
		}
		return c.Model.validate()
	case KindAgent:
		if c.Agent == nil {
			return fmt.Errorf("config: agent kind with nil agent variant")
		}
		return c.Agent.validate()
	case KindWorkflow:
		if c.Workflow == nil {
			return fmt.Errorf("config: workflow kind with nil workflow variant")
		}
		return c.Workflow.validate()
	case KindApp:
		if c.App == nil {
			return fmt.Errorf("config: app kind with nil app variant")
		}
		return c.App.validate()
	default:
		return fmt.Errorf("config: unknown asset kind %q", c.Kind)
	}
}

func (m *ModelConfig) validate() error {
	if m.Core.Layers < MinLayers || m.Core.Layers > MaxLayers {
		return fmt.Errorf("config: layers %d outside [%d,%d]", m.Core.Layers, MinLayers, MaxLayers)
	}
	if m.Core.Heads < MinHeads || m.Core.Heads > MaxHeads {
		return fmt.Errorf("config: heads %d outside [%d,%d]", m.Core.Heads, MinHeads, MaxHeads)
	}
	if m.Core.HiddenDimension < MinHiddenDimension || m.Core.HiddenDimension > MaxHiddenDimension {
		return fmt.Errorf("config: hiddenDimension %d outside [%d,%d]", m.Core.HiddenDimension, MinHiddenDimension, MaxHiddenDimension)
	}
	if m.Memory.ShortTermTokens < MinShortTermTokens || m.Memory.ShortTermTokens > MaxShortTermTokens {
		return fmt.Errorf("config: shortTermTokens %d outside [%d,%d]", m.Memory.ShortTermTokens, MinShortTermTokens, MaxShortTermTokens)
	}
	for _, w := range []int{m.EthicalMatrix.Utilitarianism, m.EthicalMatrix.Deontology, m.EthicalMatrix.Transparency} {
		if w < 0 || w > 100 {
			return fmt.Errorf("config: ethical weight %d outside [0,100]", w)
		}
	}
	seen := make(map[string]struct{}, len(m.Expertise.Domains))
	for _, d := range m.Expertise.Domains {
		if _, dup := seen[d]; dup {
			return fmt.Errorf("config: duplicate expertise domain %q", d)
		}
		seen[d] = struct{}{}
	}
	return nil
}

func (a *AgentConfig) validate() error {
	switch a.Goal {
	case GoalDataAnalysis, GoalCodeGeneration, GoalTaskAutomation, GoalCreativeWriting:
	default:
		return fmt.Errorf("config: unknown agent goal %q", a.Goal)
	}
	seen := make(map[AgentTool]struct{}, len(a.Tools))
	for _, t := range a.Tools {
		switch t {
		case ToolWebSearch, ToolFileSystemAccess, ToolCodeInterpreter, ToolAPIConnector:
		default:
			return fmt.Errorf("config: unknown agent tool %q", t)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("config: duplicate agent tool %q", t)
		}
		seen[t] = struct{}{}
	}
	if ws := a.WebSearchConfig; ws != nil {
		if ws.SearchDepth != SearchDepthShallow && ws.SearchDepth != SearchDepthDeep {
			return fmt.Errorf("config: unknown search depth %q", ws.SearchDepth)
		}
		if ws.ResultCount < MinResultCount || ws.ResultCount > MaxResultCount {
			return fmt.Errorf("config: resultCount %d outside [%d,%d]", ws.ResultCount, MinResultCount, MaxResultCount)
		}
	}
	return nil
}

func (w *WorkflowConfig) validate() error {
	seen := make(map[int]struct{}, len(w.Steps))
	for _, s := range w.Steps {
		switch s.Type {
		case StepTrigger, StepAction, StepLogic, StepOutput:
		default:
			return fmt.Errorf("config: unknown workflow step type %q", s.Type)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("config: duplicate workflow step id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.Frontend {
	case FrontendReact, FrontendVue, FrontendSvelte, FrontendNextJS:
	default:
		return fmt.Errorf("config: unknown frontend %q", a.Frontend)
	}
	switch a.Backend {
	case BackendNode, BackendPython, BackendGo:
	default:
		return fmt.Errorf("config: unknown backend %q", a.Backend)
	}
	switch a.Database {
	case DatabasePostgreSQL, DatabaseMongoDB, DatabaseRedis, DatabaseNeo4j:
	default:
		return fmt.Errorf("config: unknown database %q", a.Database)
	}
	return nil
}

// Clamp forces all numeric fields into their declared bounds, stepping
// hiddenDimension and shortTermTokens to their grids. Generated configs
// pass through here so a creative model response can never push a gauge
// input out of range.
func (c *UnifiedConfig) Clamp() {
	switch c.Kind {
	case KindLLM:
		if c.Model == nil {
			return
		}
		m := c.Model
		m.Core.Layers = clampInt(m.Core.Layers, MinLayers, MaxLayers)
		m.Core.Heads = clampInt(m.Core.Heads, MinHeads, MaxHeads)
		m.Core.HiddenDimension = snapInt(m.Core.HiddenDimension, MinHiddenDimension, MaxHiddenDimension, HiddenDimensionStep)
		m.Memory.ShortTermTokens = snapInt(m.Memory.ShortTermTokens, MinShortTermTokens, MaxShortTermTokens, ShortTermTokensStep)
		m.EthicalMatrix.Utilitarianism = clampInt(m.EthicalMatrix.Utilitarianism, 0, 100)
		m.EthicalMatrix.Deontology = clampInt(m.EthicalMatrix.Deontology, 0, 100)
		m.EthicalMatrix.Transparency = clampInt(m.EthicalMatrix.Transparency, 0, 100)
		m.Expertise.Domains = dedupeStrings(m.Expertise.Domains)
	case KindAgent:
		if c.Agent == nil {
			return
		}
		a := c.Agent
		a.Tools = dedupeTools(a.Tools)
		if a.WebSearchConfig != nil {
			a.WebSearchConfig.ResultCount = clampInt(a.WebSearchConfig.ResultCount, MinResultCount, MaxResultCount)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// snapInt clamps v to [lo,hi] and rounds to the nearest multiple of step.
func snapInt(v, lo, hi, step int) int {
	v = clampInt(v, lo, hi)
	v = ((v + step/2) / step) * step
	return clampInt(v, lo, hi)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupeTools(in []AgentTool) []AgentTool {
	seen := make(map[AgentTool]struct{}, len(in))
	out := in[:0]
	for _, t := range in {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
