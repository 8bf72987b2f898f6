// Package mutate implements the pure reducer operations over a unified
// asset configuration. Every operation is total: a section, field or set
// path that does not exist on the active variant is absorbed as a silent
// no-op returning the input unchanged, so a stale caller editing the
// "wrong" variant after a kind switch can never crash the workspace.
package mutate

import "github.com/or4cl3/forge/pkg/models"

// SetKind discards the current configuration and returns the fixed
// default template for the requested kind. There is never a partial
// carry-over of fields across kinds.
func SetKind(_ models.UnifiedConfig, kind models.AssetKind) models.UnifiedConfig {
	return models.DefaultConfig(kind)
}

// SetField returns a copy of cfg with a single field replaced. The
// section/field pair is addressed by the same names the wire format uses
// (e.g. "core"/"layers", "goal" with empty section for agent top-level
// fields). Type or kind mismatches return cfg unchanged.
func SetField(cfg models.UnifiedConfig, section, field string, value any) models.UnifiedConfig {
	switch cfg.Kind {
	case models.KindLLM:
		return setModelField(cfg, section, field, value)
	case models.KindAgent:
		return setAgentField(cfg, section, field, value)
	case models.KindWorkflow:
		return setWorkflowField(cfg, section, field, value)
	case models.KindApp:
		return setAppField(cfg, section, field, value)
	default:
		return cfg
	}
}

func setModelField(cfg models.UnifiedConfig, section, field string, value any) models.UnifiedConfig {
	if cfg.Model == nil {
		return cfg
	}
	out := cfg.Clone()
	m := out.Model
	switch section {
	case "core":
		switch field {
		case "layers":
			if v, ok := asInt(value); ok {
				m.Core.Layers = v
				return out
			}
		case "heads":
			if v, ok := asInt(value); ok {
				m.Core.Heads = v
				return out
			}
		case "hiddenDimension":
			if v, ok := asInt(value); ok {
				m.Core.HiddenDimension = v
				return out
			}
		case "quantumEvaluation":
			if v, ok := value.(bool); ok {
				m.Core.QuantumEvaluation = v
				return out
			}
		}
	case "memory":
		switch field {
		case "shortTermTokens":
			if v, ok := asInt(value); ok {
				m.Memory.ShortTermTokens = v
				return out
			}
		case "episodicMemory":
			if v, ok := value.(bool); ok {
				m.Memory.EpisodicMemory = v
				return out
			}
		case "knowledgeGraph":
			if v, ok := value.(bool); ok {
				m.Memory.KnowledgeGraph = v
				return out
			}
		}
	case "selfImprovement":
		if v, ok := value.(bool); ok {
			switch field {
			case "recursiveStabilityMonitor":
				m.SelfImprovement.RecursiveStabilityMonitor = v
				return out
			case "dynamicAlignmentEngine":
				m.SelfImprovement.DynamicAlignmentEngine = v
				return out
			case "introspectionOrchestrator":
				m.SelfImprovement.IntrospectionOrchestrator = v
				return out
			}
		}
	case "ethicalMatrix":
		if v, ok := asInt(value); ok {
			switch field {
			case "utilitarianism":
				m.EthicalMatrix.Utilitarianism = v
				return out
			case "deontology":
				m.EthicalMatrix.Deontology = v
				return out
			case "transparency":
				m.EthicalMatrix.Transparency = v
				return out
			}
		}
	}
	return cfg
}

func setAgentField(cfg models.UnifiedConfig, section, field string, value any) models.UnifiedConfig {
	if cfg.Agent == nil || section != "" {
		return cfg
	}
	out := cfg.Clone()
	a := out.Agent
	switch field {
	case "goal":
		if v, ok := value.(string); ok {
			a.Goal = models.AgentGoal(v)
			return out
		}
	case "autonomous":
		if v, ok := value.(bool); ok {
			a.Autonomous = v
			return out
		}
	}
	return cfg
}

func setWorkflowField(cfg models.UnifiedConfig, section, field string, value any) models.UnifiedConfig {
	if cfg.Workflow == nil || section != "" {
		return cfg
	}
	if field == "name" {
		if v, ok := value.(string); ok {
			out := cfg.Clone()
			out.Workflow.Name = v
			return out
		}
	}
	return cfg
}

func setAppField(cfg models.UnifiedConfig, section, field string, value any) models.UnifiedConfig {
	if cfg.App == nil || section != "" {
		return cfg
	}
	out := cfg.Clone()
	a := out.App
	switch field {
	case "frontend":
		if v, ok := value.(string); ok {
			a.Frontend = models.FrontendFramework(v)
			return out
		}
	case "backend":
		if v, ok := value.(string); ok {
			a.Backend = models.BackendFramework(v)
			return out
		}
	case "database":
		if v, ok := value.(string); ok {
			a.Database = models.DatabaseType(v)
			return out
		}
	case "realtime":
		if v, ok := value.(bool); ok {
			a.Realtime = v
			return out
		}
	}
	return cfg
}

// Set paths accepted by ToggleSet.
const (
	PathExpertiseDomains = "expertise.domains"
	PathTools            = "tools"
)

// ToggleSet toggles membership of item in one of the two set-valued
// fields: "expertise.domains" (LLM) or "tools" (agent). Toggling twice
// restores the original configuration.
func ToggleSet(cfg models.UnifiedConfig, path, item string) models.UnifiedConfig {
	switch path {
	case PathExpertiseDomains:
		if cfg.Kind != models.KindLLM || cfg.Model == nil {
			return cfg
		}
		out := cfg.Clone()
		out.Model.Expertise.Domains = toggle(out.Model.Expertise.Domains, item)
		return out
	case PathTools:
		if cfg.Kind != models.KindAgent || cfg.Agent == nil {
			return cfg
		}
		out := cfg.Clone()
		out.Agent.Tools = toggleTools(out.Agent.Tools, models.AgentTool(item))
		return out
	default:
		return cfg
	}
}

// SetWebSearchField updates one field of the agent's web search
// sub-config, materializing the default sub-config first when absent.
// No-op on non-agent configurations.
func SetWebSearchField(cfg models.UnifiedConfig, field string, value any) models.UnifiedConfig {
	if cfg.Kind != models.KindAgent || cfg.Agent == nil {
		return cfg
	}
	out := cfg.Clone()
	a := out.Agent
	if a.WebSearchConfig == nil {
		a.WebSearchConfig = models.DefaultWebSearchConfig()
	}
	ws := a.WebSearchConfig
	switch field {
	case "searchDepth":
		if v, ok := value.(string); ok {
			ws.SearchDepth = models.SearchDepth(v)
			return out
		}
	case "filterResults":
		if v, ok := value.(bool); ok {
			ws.FilterResults = v
			return out
		}
	case "resultCount":
		if v, ok := asInt(value); ok {
			ws.ResultCount = v
			return out
		}
	case "keywords":
		if v, ok := value.(string); ok {
			ws.Keywords = v
			return out
		}
	}
	return cfg
}

func toggle(set []string, item string) []string {
	for i, s := range set {
		if s == item {
			return append(set[:i], set[i+1:]...)
		}
	}
	return append(set, item)
}

func toggleTools(set []models.AgentTool, item models.AgentTool) []models.AgentTool {
	for i, t := range set {
		if t == item {
			return append(set[:i], set[i+1:]...)
		}
	}
	return append(set, item)
}

// asInt accepts the numeric shapes JSON decoding produces. Values with a
// fractional part are rejected rather than truncated.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
