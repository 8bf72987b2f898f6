// Package catalog holds the static option catalog for The Forge: the
// expertise domains, agent tooling, workflow step types, application
// technology choices and UI themes that the configurator exposes.
// Everything here is fixed at compile time and served read-only.
package catalog

import "github.com/or4cl3/forge/pkg/models"

// Domain describes one expertise module an LLM asset can enable.
type Domain struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var domains = []Domain{
	{Name: "Computer Science", Description: "Efficient algorithm execution, system optimization, and scalable code reasoning."},
	{Name: "AI / ML", Description: "Reinforcement learning, deep learning, transfer learning, and meta-learning."},
	{Name: "Neuroscience / Psychology", Description: "Cognitive modeling, emotion recognition, and behavioral prediction."},
	{Name: "Music Theory / Composition", Description: "Generative composition, harmonic reasoning, and emotional resonance modeling."},
	{Name: "Quantum Physics / Advanced Math", Description: "Probabilistic reasoning, mathematical abstraction, and quantum-inspired optimization."},
	{Name: "Philosophy / Ethics", Description: "Ethical reasoning engine, scenario simulation, and value-aligned decision-making."},
	{Name: "Finance / Economics", Description: "Market analysis, risk assessment, and algorithmic trading strategies."},
	{Name: "Game Development", Description: "NPC behavior, procedural content generation, and player modeling."},
	{Name: "Creative Writing / Storytelling", Description: "Narrative generation, character development, and plot structuring."},
}

// Domains returns the expertise domain catalog.
func Domains() []Domain {
	out := make([]Domain, len(domains))
	copy(out, domains)
	return out
}

// DomainNames returns the catalog domain names in display order.
func DomainNames() []string {
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = d.Name
	}
	return names
}

// ValidDomain reports whether name is a catalog domain.
func ValidDomain(name string) bool {
	for _, d := range domains {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Goals returns the agent goal options.
func Goals() []models.AgentGoal {
	return []models.AgentGoal{
		models.GoalDataAnalysis,
		models.GoalCodeGeneration,
		models.GoalTaskAutomation,
		models.GoalCreativeWriting,
	}
}

// Tools returns the agent tool options.
func Tools() []models.AgentTool {
	return []models.AgentTool{
		models.ToolWebSearch,
		models.ToolFileSystemAccess,
		models.ToolCodeInterpreter,
		models.ToolAPIConnector,
	}
}

// StepTypes returns the workflow step type options.
func StepTypes() []models.WorkflowStepType {
	return []models.WorkflowStepType{
		models.StepTrigger,
		models.StepAction,
		models.StepLogic,
		models.StepOutput,
	}
}

// Frontends returns the application frontend options.
func Frontends() []models.FrontendFramework {
	return []models.FrontendFramework{
		models.FrontendReact,
		models.FrontendVue,
		models.FrontendSvelte,
		models.FrontendNextJS,
	}
}

// Backends returns the application backend options.
func Backends() []models.BackendFramework {
	return []models.BackendFramework{
		models.BackendNode,
		models.BackendPython,
		models.BackendGo,
	}
}

// Databases returns the application database options.
func Databases() []models.DatabaseType {
	return []models.DatabaseType{
		models.DatabasePostgreSQL,
		models.DatabaseMongoDB,
		models.DatabaseRedis,
		models.DatabaseNeo4j,
	}
}

// Theme is a named UI color scheme.
type Theme struct {
	Name        models.ThemeName `json:"name"`
	DisplayName string           `json:"displayName"`
	Colors      ThemeColors      `json:"colors"`
}

// ThemeColors are the accent colors of a theme, as CSS hex strings.
type ThemeColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

var themes = []Theme{
	{Name: models.ThemeDefault, DisplayName: "Architech Default", Colors: ThemeColors{Primary: "#c026d3", Secondary: "#8b5cf6", Accent: "#8b5cf6"}},
	{Name: models.ThemeNebula, DisplayName: "Cosmic Nebula", Colors: ThemeColors{Primary: "#06b6d4", Secondary: "#22c55e", Accent: "#22c55e"}},
	{Name: models.ThemeCyberpunk, DisplayName: "Neon Cyberpunk", Colors: ThemeColors{Primary: "#fde047", Secondary: "#ec4899", Accent: "#06b6d4"}},
}

// Themes returns the UI theme catalog.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// LookupTheme returns the theme with the given name.
func LookupTheme(name models.ThemeName) (Theme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
