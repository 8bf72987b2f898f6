package models

// DefaultWebSearchConfig is the sub-config materialized the first time a
// web-search field is edited on an agent that has none.
func DefaultWebSearchConfig() *WebSearchConfig {
	return &WebSearchConfig{
		SearchDepth:   SearchDepthShallow,
		FilterResults: true,
		ResultCount:   5,
		Keywords:      "",
	}
}

// DefaultConfig returns the fixed default template for a kind. Switching
// asset kind always starts from one of these, with no field carry-over.
// Unknown kinds fall back to the LLM template.
func DefaultConfig(kind AssetKind) UnifiedConfig {
	switch kind {
	case KindAgent:
		return UnifiedConfig{
			Kind: KindAgent,
			Agent: &AgentConfig{
				Goal:       GoalTaskAutomation,
				Autonomous: false,
				Tools:      []AgentTool{},
			},
		}
	case KindWorkflow:
		return UnifiedConfig{
			Kind: KindWorkflow,
			Workflow: &WorkflowConfig{
				Name:  "Untitled Workflow",
				Steps: []WorkflowStep{},
			},
		}
	case KindApp:
		return UnifiedConfig{
			Kind: KindApp,
			App: &AppConfig{
				Frontend: FrontendReact,
				Backend:  BackendNode,
				Database: DatabasePostgreSQL,
				Realtime: false,
			},
		}
	default:
		return UnifiedConfig{
			Kind: KindLLM,
			Model: &ModelConfig{
				Core: CoreArchitecture{
					Layers:            12,
					Heads:             16,
					HiddenDimension:   512,
					QuantumEvaluation: true,
				},
				Memory: MemoryContext{
					ShortTermTokens: 8192,
					EpisodicMemory:  true,
					KnowledgeGraph:  true,
				},
				SelfImprovement: SelfImprovement{
					RecursiveStabilityMonitor: true,
					DynamicAlignmentEngine:    true,
					IntrospectionOrchestrator: true,
				},
				Expertise: Expertise{
					Domains: []string{
						"Computer Science",
						"AI / ML",
						"Neuroscience / Psychology",
						"Music Theory / Composition",
					},
				},
				EthicalMatrix: EthicalMatrix{
					Utilitarianism: 50,
					Deontology:     50,
					Transparency:   75,
				},
			},
		}
	}
}
