// Package models defines the domain types for The Forge: the unified asset
// configuration (a closed tagged union over four asset kinds), the derived
// system status gauges, and the saved-asset gallery records.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ── Asset Kind ───────────────────────────────────────────────

// AssetKind is the discriminant tag of a UnifiedConfig.
type AssetKind string

const (
	KindLLM      AssetKind = "llm"
	KindAgent    AssetKind = "agent"
	KindWorkflow AssetKind = "workflow"
	KindApp      AssetKind = "app"
)

// Valid reports whether k is one of the four known asset kinds.
func (k AssetKind) Valid() bool {
	switch k {
	case KindLLM, KindAgent, KindWorkflow, KindApp:
		return true
	}
	return false
}

// ── LLM Configuration ────────────────────────────────────────

// Bounds for LLM numeric fields. Input widgets clamp to these before
// mutating; Clamp() enforces them on generated configs.
const (
	MinLayers = 6
	MaxLayers = 24

	MinHeads = 8
	MaxHeads = 32

	MinHiddenDimension  = 256
	MaxHiddenDimension  = 1024
	HiddenDimensionStep = 128

	MinShortTermTokens  = 2048
	MaxShortTermTokens  = 16384
	ShortTermTokensStep = 2048
)

// CoreArchitecture describes the structural parameters of an LLM asset.
type CoreArchitecture struct {
	Layers            int  `json:"layers"`
	Heads             int  `json:"heads"`
	HiddenDimension   int  `json:"hiddenDimension"`
	QuantumEvaluation bool `json:"quantumEvaluation"`
}

// MemoryContext describes the memory subsystem of an LLM asset.
type MemoryContext struct {
	ShortTermTokens int  `json:"shortTermTokens"`
	EpisodicMemory  bool `json:"episodicMemory"`
	KnowledgeGraph  bool `json:"knowledgeGraph"`
}

// SelfImprovement holds the three independent self-monitoring flags.
type SelfImprovement struct {
	RecursiveStabilityMonitor bool `json:"recursiveStabilityMonitor"`
	DynamicAlignmentEngine    bool `json:"dynamicAlignmentEngine"`
	IntrospectionOrchestrator bool `json:"introspectionOrchestrator"`
}

// Expertise is the set of enabled domain modules. Insertion order is
// irrelevant and duplicates are never stored; toggle membership via
// the mutate package.
type Expertise struct {
	Domains []string `json:"domains"`
}

// EthicalMatrix holds the three 0–100 ethical weighting sliders.
type EthicalMatrix struct {
	Utilitarianism int `json:"utilitarianism"`
	Deontology     int `json:"deontology"`
	Transparency   int `json:"transparency"`
}

// ModelConfig is the LLM variant of UnifiedConfig.
type ModelConfig struct {
	Core            CoreArchitecture `json:"core"`
	Memory          MemoryContext    `json:"memory"`
	SelfImprovement SelfImprovement  `json:"selfImprovement"`
	Expertise       Expertise        `json:"expertise"`
	EthicalMatrix   EthicalMatrix    `json:"ethicalMatrix"`
}

// ── Agent Configuration ──────────────────────────────────────

type AgentGoal string

const (
	GoalDataAnalysis    AgentGoal = "Data Analysis"
	GoalCodeGeneration  AgentGoal = "Code Generation"
	GoalTaskAutomation  AgentGoal = "Task Automation"
	GoalCreativeWriting AgentGoal = "Creative Writing"
)

type AgentTool string

const (
	ToolWebSearch        AgentTool = "Web Search"
	ToolFileSystemAccess AgentTool = "File System Access"
	ToolCodeInterpreter  AgentTool = "Code Interpreter"
	ToolAPIConnector     AgentTool = "API Connector"
)

type SearchDepth string

const (
	SearchDepthShallow SearchDepth = "Shallow"
	SearchDepthDeep    SearchDepth = "Deep"
)

// Bounds for the web search result count.
const (
	MinResultCount = 1
	MaxResultCount = 20
)

// WebSearchConfig tunes the Web Search tool. It is only meaningful while
// "Web Search" is a member of the agent's tool set.
type WebSearchConfig struct {
	SearchDepth   SearchDepth `json:"searchDepth"`
	FilterResults bool        `json:"filterResults"`
	ResultCount   int         `json:"resultCount"`
	Keywords      string      `json:"keywords"`
}

// AgentConfig is the autonomous-agent variant of UnifiedConfig.
type AgentConfig struct {
	Goal            AgentGoal        `json:"goal"`
	Autonomous      bool             `json:"autonomous"`
	Tools           []AgentTool      `json:"tools"`
	WebSearchConfig *WebSearchConfig `json:"webSearchConfig,omitempty"`
}

// HasTool reports whether the tool is a member of the agent's tool set.
func (a *AgentConfig) HasTool(tool AgentTool) bool {
	for _, t := range a.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

// ── Workflow Configuration ───────────────────────────────────

type WorkflowStepType string

const (
	StepTrigger WorkflowStepType = "Trigger"
	StepAction  WorkflowStepType = "Action"
	StepLogic   WorkflowStepType = "Logic"
	StepOutput  WorkflowStepType = "Output"
)

// WorkflowStep is a single step in an ordered workflow. IDs are unique
// within the sequence.
type WorkflowStep struct {
	ID          int              `json:"id"`
	Type        WorkflowStepType `json:"type"`
	Description string           `json:"description"`
}

// WorkflowConfig is the workflow variant of UnifiedConfig.
type WorkflowConfig struct {
	Name  string         `json:"name"`
	Steps []WorkflowStep `json:"steps"`
}

// ── Application Configuration ────────────────────────────────

type FrontendFramework string

const (
	FrontendReact  FrontendFramework = "React"
	FrontendVue    FrontendFramework = "Vue"
	FrontendSvelte FrontendFramework = "Svelte"
	FrontendNextJS FrontendFramework = "Next.js"
)

type BackendFramework string

const (
	BackendNode   BackendFramework = "Node.js"
	BackendPython BackendFramework = "Python"
	BackendGo     BackendFramework = "Go"
)

type DatabaseType string

const (
	DatabasePostgreSQL DatabaseType = "PostgreSQL"
	DatabaseMongoDB    DatabaseType = "MongoDB"
	DatabaseRedis      DatabaseType = "Redis"
	DatabaseNeo4j      DatabaseType = "Neo4j"
)

// AppConfig is the application-scaffold variant of UnifiedConfig.
type AppConfig struct {
	Frontend FrontendFramework `json:"frontend"`
	Backend  BackendFramework  `json:"backend"`
	Database DatabaseType      `json:"database"`
	Realtime bool              `json:"realtime"`
}

// ── Unified Configuration ────────────────────────────────────

// UnifiedConfig is a closed tagged union over the four asset kinds.
// Exactly one variant pointer is non-nil, matching Kind. The JSON wire
// shape is flat ({"type":"llm","core":{...},...}) for compatibility with
// the generation schemas and exported blueprint files.
//
// The kind tag is immutable for the lifetime of a value: switching asset
// kind always produces a fresh default template (mutate.SetKind), never
// an in-place field graft across variants.
type UnifiedConfig struct {
	Kind     AssetKind
	Model    *ModelConfig
	Agent    *AgentConfig
	Workflow *WorkflowConfig
	App      *AppConfig
}

type llmWire struct {
	Type AssetKind `json:"type"`
	*ModelConfig
}

type agentWire struct {
	Type AssetKind `json:"type"`
	*AgentConfig
}

type workflowWire struct {
	Type AssetKind `json:"type"`
	*WorkflowConfig
}

type appWire struct {
	Type AssetKind `json:"type"`
	*AppConfig
}

// MarshalJSON flattens the union into the tagged wire shape.
func (c UnifiedConfig) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindLLM:
		if c.Model == nil {
			return nil, fmt.Errorf("config: llm kind with nil model variant")
		}
		return json.Marshal(llmWire{Type: KindLLM, ModelConfig: c.Model})
	case KindAgent:
		if c.Agent == nil {
			return nil, fmt.Errorf("config: agent kind with nil agent variant")
		}
		return json.Marshal(agentWire{Type: KindAgent, AgentConfig: c.Agent})
	case KindWorkflow:
		if c.Workflow == nil {
			return nil, fmt.Errorf("config: workflow kind with nil workflow variant")
		}
		return json.Marshal(workflowWire{Type: KindWorkflow, WorkflowConfig: c.Workflow})
	case KindApp:
		if c.App == nil {
			return nil, fmt.Errorf("config: app kind with nil app variant")
		}
		return json.Marshal(appWire{Type: KindApp, AppConfig: c.App})
	default:
		return nil, fmt.Errorf("config: unknown asset kind %q", c.Kind)
	}
}

// UnmarshalJSON reads the tagged wire shape back into the union.
func (c *UnifiedConfig) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type AssetKind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case KindLLM:
		var v ModelConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = UnifiedConfig{Kind: KindLLM, Model: &v}
	case KindAgent:
		var v AgentConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = UnifiedConfig{Kind: KindAgent, Agent: &v}
	case KindWorkflow:
		var v WorkflowConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = UnifiedConfig{Kind: KindWorkflow, Workflow: &v}
	case KindApp:
		var v AppConfig
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = UnifiedConfig{Kind: KindApp, App: &v}
	default:
		return fmt.Errorf("config: unknown asset kind %q", tag.Type)
	}
	return nil
}

// Clone returns a deep copy. Workspaces hand out clones so no caller can
// alias the workspace's own configuration.
func (c UnifiedConfig) Clone() UnifiedConfig {
	out := UnifiedConfig{Kind: c.Kind}
	switch c.Kind {
	case KindLLM:
		if c.Model != nil {
			m := *c.Model
			m.Expertise.Domains = append([]string(nil), c.Model.Expertise.Domains...)
			out.Model = &m
		}
	case KindAgent:
		if c.Agent != nil {
			a := *c.Agent
			a.Tools = append([]AgentTool(nil), c.Agent.Tools...)
			if c.Agent.WebSearchConfig != nil {
				ws := *c.Agent.WebSearchConfig
				a.WebSearchConfig = &ws
			}
			out.Agent = &a
		}
	case KindWorkflow:
		if c.Workflow != nil {
			w := *c.Workflow
			w.Steps = append([]WorkflowStep(nil), c.Workflow.Steps...)
			out.Workflow = &w
		}
	case KindApp:
		if c.App != nil {
			a := *c.App
			out.App = &a
		}
	}
	return out
}

// ── System Status ────────────────────────────────────────────

// SystemStatus holds the three derived display gauges, each in [0,100].
// It has no independent lifecycle: it is recomputed on every configuration
// change and never persisted.
type SystemStatus struct {
	CognitiveLoad  float64 `json:"cognitiveLoad"`
	AlignmentDrift float64 `json:"alignmentDrift"`
	Consistency    float64 `json:"consistency"`
}

// BioSignal is the auxiliary engagement/focus signal pair that perturbs
// the gauges while active. Both values are in [0,100].
type BioSignal struct {
	Active     bool    `json:"active"`
	Engagement float64 `json:"engagement"`
	Focus      float64 `json:"focus"`
}

// ── Saved Assets (gallery) ───────────────────────────────────

// SchemaVersion tags persisted and exported configurations so future
// schema changes can be detected and migrated instead of silently
// breaking old records.
const SchemaVersion = 1

// AssetVersion is one snapshot in a saved asset's history.
type AssetVersion struct {
	Config  UnifiedConfig `json:"config"`
	SavedAt time.Time     `json:"savedAt"`
}

// SavedAsset is a named, append-only history of configuration snapshots.
// Name is the unique key within a studio; saving under an existing name
// appends a version, never overwrites.
type SavedAsset struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Studio   string         `json:"studio"`
	Sigil    string         `json:"sigil,omitempty"`
	Versions []AssetVersion `json:"versions"`
}

// ConfigEnvelope is the export/import file format: the configuration
// wrapped with a schema version tag.
type ConfigEnvelope struct {
	SchemaVersion int           `json:"schemaVersion"`
	Config        UnifiedConfig `json:"config"`
}

// ── Studio Settings ──────────────────────────────────────────

type ThemeName string

const (
	ThemeDefault   ThemeName = "default"
	ThemeNebula    ThemeName = "nebula"
	ThemeCyberpunk ThemeName = "cyberpunk"
)

// StudioSettings is the small per-studio preference record.
type StudioSettings struct {
	Studio    string    `json:"studio"`
	Theme     ThemeName `json:"theme"`
	Onboarded bool      `json:"onboarded"`
	UpdatedAt time.Time `json:"updatedAt"`
}
