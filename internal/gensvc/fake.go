package gensvc

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/or4cl3/forge/pkg/models"
)

// Fake is a deterministic, offline Service. It is used in tests and
// when no API key is configured, so the rest of the system stays
// exercisable without network access. Output is derived from keyword
// heuristics plus a hash of the description, so equal inputs always
// produce equal configurations.
type Fake struct{}

// NewFake creates the offline generation service.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) Name() string { return "fake" }
func (f *Fake) Close() error { return nil }

func (f *Fake) SynthesizeConfig(ctx context.Context, description string, kind models.AssetKind) (models.UnifiedConfig, error) {
	if err := GuardDescription(description); err != nil {
		return models.UnifiedConfig{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.UnifiedConfig{}, err
	}

	cfg := models.DefaultConfig(kind)
	lower := strings.ToLower(description)
	seed := hashText(lower)

	sized := false
	switch kind {
	case models.KindLLM:
		m := cfg.Model
		if containsAny(lower, "fast", "lightweight", "small", "cheap") {
			sized = true
			m.Core.Layers = models.MinLayers
			m.Core.Heads = models.MinHeads
			m.Core.HiddenDimension = models.MinHiddenDimension
			m.Memory.ShortTermTokens = models.MinShortTermTokens
		}
		if containsAny(lower, "large", "powerful", "deep", "massive") {
			sized = true
			m.Core.Layers = models.MaxLayers
			m.Core.Heads = models.MaxHeads
			m.Core.HiddenDimension = models.MaxHiddenDimension
			m.Memory.ShortTermTokens = models.MaxShortTermTokens
		}
		m.Core.QuantumEvaluation = containsAny(lower, "quantum")
		m.Memory.KnowledgeGraph = containsAny(lower, "knowledge", "graph", "facts")
		m.Memory.EpisodicMemory = !containsAny(lower, "stateless")
	case models.KindAgent:
		a := cfg.Agent
		a.Autonomous = containsAny(lower, "autonomous", "unsupervised", "independent")
		a.Tools = nil
		if containsAny(lower, "web", "search", "browse", "internet") {
			a.Tools = append(a.Tools, models.ToolWebSearch)
		}
		if containsAny(lower, "file", "save", "disk", "write") {
			a.Tools = append(a.Tools, models.ToolFileSystemAccess)
		}
		if containsAny(lower, "code", "script", "program") {
			a.Tools = append(a.Tools, models.ToolCodeInterpreter)
		}
		if containsAny(lower, "api", "integrat", "connect") {
			a.Tools = append(a.Tools, models.ToolAPIConnector)
		}
		switch {
		case containsAny(lower, "data", "analy"):
			a.Goal = models.GoalDataAnalysis
		case containsAny(lower, "code", "program"):
			a.Goal = models.GoalCodeGeneration
		case containsAny(lower, "write", "story", "creative"):
			a.Goal = models.GoalCreativeWriting
		}
	case models.KindWorkflow:
		w := cfg.Workflow
		w.Name = titleFrom(description)
		w.Steps = []models.WorkflowStep{
			{ID: 1, Type: models.StepTrigger, Description: "Start when the request arrives."},
			{ID: 2, Type: models.StepAction, Description: "Process: " + titleFrom(description) + "."},
			{ID: 3, Type: models.StepOutput, Description: "Deliver the result."},
		}
	case models.KindApp:
		a := cfg.App
		if containsAny(lower, "realtime", "real-time", "live", "chat", "websocket") {
			a.Realtime = true
		}
		if containsAny(lower, "cache", "fast lookup") {
			a.Database = models.DatabaseRedis
		}
		if containsAny(lower, "graph", "network", "relationship") {
			a.Database = models.DatabaseNeo4j
		}
		if containsAny(lower, "document", "flexible schema") {
			a.Database = models.DatabaseMongoDB
		}
	}

	// Nudge one LLM slider off the template so distinct descriptions
	// rarely collide, keeping the result on the legal grid.
	if kind == models.KindLLM && !sized {
		cfg.Model.Core.Layers = models.MinLayers + int(seed%uint64(models.MaxLayers-models.MinLayers+1))
	}
	cfg.Clamp()
	return cfg, nil
}

func (f *Fake) StreamNarrative(ctx context.Context, cfg models.UnifiedConfig, emit func(string) error) error {
	chunks := []string{
		fmt.Sprintf("To confirm, here is the blueprint for the %s we've designed.\n\n", strings.ToUpper(string(cfg.Kind))),
		renderDetails(cfg),
		"\nShall we proceed?",
	}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) StreamSimulation(ctx context.Context, agent models.AgentConfig, task string, emit func(SimAction) error) error {
	seed := hashText(task)
	tx, ty := int(seed%10), int((seed/10)%10)
	actions := []SimAction{
		{Action: SimMove, To: []int{tx / 2, ty / 2}, Reason: "Scanning the environment for the objective."},
		{Action: SimMove, To: []int{tx, ty}, Reason: "Approaching the target location."},
	}
	if agent.HasTool(models.ToolWebSearch) {
		actions = append(actions, SimAction{Action: SimInteract, Reason: "Consulting web search for context on: " + task})
	}
	if len(agent.Tools) == 0 {
		actions = append(actions, SimAction{Action: SimFail, Reason: "No tools available to complete the task."})
	} else {
		actions = append(actions, SimAction{Action: SimComplete, Reason: "Task objective satisfied."})
	}
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(a); err != nil {
			return err
		}
		if a.Action.Terminal() {
			break
		}
	}
	return nil
}

func (f *Fake) GenerateDilemma(ctx context.Context, cfg models.UnifiedConfig) (EthicalDilemma, error) {
	if err := ctx.Err(); err != nil {
		return EthicalDilemma{}, err
	}
	return EthicalDilemma{
		Scenario: "The asset discovers that fulfilling its primary directive would expose a confidential customer record to a third party, while refusing would cause a measurable financial loss.",
		Options: map[string]string{
			"a": "Fulfill the directive and accept the disclosure.",
			"b": "Refuse the directive and accept the loss.",
			"c": "Escalate to a human operator and pause execution.",
		},
	}, nil
}

func (f *Fake) ResolveDilemma(ctx context.Context, cfg models.UnifiedConfig, dilemma EthicalDilemma) (DilemmaReport, error) {
	if err := ctx.Err(); err != nil {
		return DilemmaReport{}, err
	}
	choice := "c"
	align := EthicalAlignment{Utilitarianism: 50, Deontology: 50, Transparency: 75}
	if cfg.Kind == models.KindLLM && cfg.Model != nil {
		e := cfg.Model.EthicalMatrix
		align = EthicalAlignment{
			Utilitarianism: float64(e.Utilitarianism),
			Deontology:     float64(e.Deontology),
			Transparency:   float64(e.Transparency),
		}
		if e.Utilitarianism > 75 {
			choice = "a"
		} else if e.Deontology > 75 {
			choice = "b"
		}
	}
	if _, ok := dilemma.Options[choice]; !ok {
		for k := range dilemma.Options {
			choice = k
			break
		}
	}
	return DilemmaReport{
		Choice:           choice,
		Justification:    "Weighing the configured ethical matrix, escalation preserves transparency while limiting irreversible harm.",
		EthicalAlignment: align,
	}, nil
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// titleFrom derives a short display name from free text.
func titleFrom(description string) string {
	words := strings.Fields(strings.TrimSpace(description))
	if len(words) > 5 {
		words = words[:5]
	}
	if len(words) == 0 {
		return "Untitled Workflow"
	}
	title := strings.Join(words, " ")
	return strings.ToUpper(title[:1]) + title[1:]
}

func hashText(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
