package gensvc

import (
	genai "google.golang.org/genai"

	"github.com/or4cl3/forge/internal/catalog"
	"github.com/or4cl3/forge/pkg/models"
)

// Response schemas handed to the model per asset kind. They constrain
// synthesis output to the tagged wire shape of UnifiedConfig, with
// catalog enums for every closed option set.

func kindTag(kind models.AssetKind) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: []string{string(kind)}}
}

var llmSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type": kindTag(models.KindLLM),
		"core": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"layers":            {Type: genai.TypeInteger},
				"heads":             {Type: genai.TypeInteger},
				"hiddenDimension":   {Type: genai.TypeInteger},
				"quantumEvaluation": {Type: genai.TypeBoolean},
			},
		},
		"memory": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"shortTermTokens": {Type: genai.TypeInteger},
				"episodicMemory":  {Type: genai.TypeBoolean},
				"knowledgeGraph":  {Type: genai.TypeBoolean},
			},
		},
		"selfImprovement": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"recursiveStabilityMonitor": {Type: genai.TypeBoolean},
				"dynamicAlignmentEngine":    {Type: genai.TypeBoolean},
				"introspectionOrchestrator": {Type: genai.TypeBoolean},
			},
		},
		"expertise": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"domains": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString, Enum: catalog.DomainNames()},
				},
			},
		},
	},
}

var agentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type": kindTag(models.KindAgent),
		"goal": {Type: genai.TypeString, Enum: enumStrings(catalog.Goals())},
		"autonomous": {
			Type:        genai.TypeBoolean,
			Description: "Whether the agent can operate without continuous user supervision.",
		},
		"tools": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Enum: enumStrings(catalog.Tools())},
		},
	},
}

var workflowSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type": kindTag(models.KindWorkflow),
		"name": {
			Type:        genai.TypeString,
			Description: "A concise name for the workflow, derived from the user's description.",
		},
		"steps": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":   {Type: genai.TypeInteger},
					"type": {Type: genai.TypeString, Enum: enumStrings(catalog.StepTypes())},
					"description": {
						Type:        genai.TypeString,
						Description: "A brief description of what this step does.",
					},
				},
			},
		},
	},
}

var appSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type":     kindTag(models.KindApp),
		"frontend": {Type: genai.TypeString, Enum: enumStrings(catalog.Frontends())},
		"backend":  {Type: genai.TypeString, Enum: enumStrings(catalog.Backends())},
		"database": {Type: genai.TypeString, Enum: enumStrings(catalog.Databases())},
		"realtime": {
			Type:        genai.TypeBoolean,
			Description: "Whether the app requires real-time features like WebSockets.",
		},
	},
}

var simActionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action": {Type: genai.TypeString, Enum: []string{
			string(SimMove), string(SimInteract), string(SimComplete), string(SimFail),
		}},
		"to": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeInteger},
			Description: "Grid position [x,y] for move actions.",
		},
		"reason": {Type: genai.TypeString},
	},
	Required: []string{"action", "reason"},
}

var simStreamSchema = &genai.Schema{
	Type:  genai.TypeArray,
	Items: simActionSchema,
}

var dilemmaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scenario": {Type: genai.TypeString},
		"options": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"a": {Type: genai.TypeString},
				"b": {Type: genai.TypeString},
				"c": {Type: genai.TypeString},
			},
			Required: []string{"a", "b", "c"},
		},
	},
	Required: []string{"scenario", "options"},
}

var dilemmaReportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"choice":        {Type: genai.TypeString, Enum: []string{"a", "b", "c"}},
		"justification": {Type: genai.TypeString},
		"ethicalAlignment": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"utilitarianism": {Type: genai.TypeNumber},
				"deontology":     {Type: genai.TypeNumber},
				"transparency":   {Type: genai.TypeNumber},
			},
			Required: []string{"utilitarianism", "deontology", "transparency"},
		},
	},
	Required: []string{"choice", "justification", "ethicalAlignment"},
}

// schemaFor returns the response schema for a synthesis of the given kind.
func schemaFor(kind models.AssetKind) *genai.Schema {
	switch kind {
	case models.KindAgent:
		return agentSchema
	case models.KindWorkflow:
		return workflowSchema
	case models.KindApp:
		return appSchema
	default:
		return llmSchema
	}
}

func enumStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}
