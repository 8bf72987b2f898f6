package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshal_FlatTaggedShape(t *testing.T) {
	data, err := json.Marshal(DefaultConfig(KindLLM))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("not an object: %v", err)
	}
	if string(wire["type"]) != `"llm"` {
		t.Fatalf("type tag = %s", wire["type"])
	}
	// Variant fields sit flat beside the tag, not nested under a key.
	if _, ok := wire["core"]; !ok {
		t.Fatalf("core not at top level: %s", data)
	}
	if _, ok := wire["model"]; ok {
		t.Fatal("variant nested under a model key")
	}
}

func TestUnmarshal_RoundTripsEachKind(t *testing.T) {
	for _, kind := range []AssetKind{KindLLM, KindAgent, KindWorkflow, KindApp} {
		src := DefaultConfig(kind)
		data, err := json.Marshal(src)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", kind, err)
		}
		var got UnifiedConfig
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("%s: Unmarshal: %v", kind, err)
		}
		if got.Kind != kind {
			t.Fatalf("%s: round-tripped kind = %q", kind, got.Kind)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("%s: round-tripped config invalid: %v", kind, err)
		}
	}
}

func TestUnmarshal_UnknownKind(t *testing.T) {
	var got UnifiedConfig
	err := json.Unmarshal([]byte(`{"type":"hologram"}`), &got)
	if err == nil || !strings.Contains(err.Error(), "unknown asset kind") {
		t.Fatalf("err = %v", err)
	}
}

func TestMarshal_KindVariantMismatch(t *testing.T) {
	_, err := json.Marshal(UnifiedConfig{Kind: KindAgent})
	if err == nil {
		t.Fatal("agent kind with nil variant should not marshal")
	}
}

func TestClone_NoAliasing(t *testing.T) {
	src := DefaultConfig(KindAgent)
	src.Agent.Tools = []AgentTool{ToolWebSearch}
	src.Agent.WebSearchConfig = DefaultWebSearchConfig()

	cp := src.Clone()
	cp.Agent.Tools[0] = ToolCodeInterpreter
	cp.Agent.WebSearchConfig.ResultCount = 19

	if src.Agent.Tools[0] != ToolWebSearch {
		t.Fatal("clone shares the tool slice")
	}
	if src.Agent.WebSearchConfig.ResultCount == 19 {
		t.Fatal("clone shares the web search sub-config")
	}
}

func TestClamp_SnapsToGrid(t *testing.T) {
	cfg := DefaultConfig(KindLLM)
	cfg.Model.Core.Layers = 99
	cfg.Model.Core.HiddenDimension = 710   // nearest grid point is 768
	cfg.Model.Memory.ShortTermTokens = 100 // below minimum
	cfg.Model.EthicalMatrix.Transparency = 180
	cfg.Model.Expertise.Domains = []string{"AI / ML", "AI / ML"}

	cfg.Clamp()

	if cfg.Model.Core.Layers != MaxLayers {
		t.Fatalf("layers = %d", cfg.Model.Core.Layers)
	}
	if cfg.Model.Core.HiddenDimension != 768 {
		t.Fatalf("hiddenDimension = %d", cfg.Model.Core.HiddenDimension)
	}
	if cfg.Model.Memory.ShortTermTokens != MinShortTermTokens {
		t.Fatalf("shortTermTokens = %d", cfg.Model.Memory.ShortTermTokens)
	}
	if cfg.Model.EthicalMatrix.Transparency != 100 {
		t.Fatalf("transparency = %d", cfg.Model.EthicalMatrix.Transparency)
	}
	if len(cfg.Model.Expertise.Domains) != 1 {
		t.Fatalf("domains = %v", cfg.Model.Expertise.Domains)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UnifiedConfig)
		kind   AssetKind
	}{
		{"layers out of range", func(c *UnifiedConfig) { c.Model.Core.Layers = 5 }, KindLLM},
		{"duplicate domain", func(c *UnifiedConfig) {
			c.Model.Expertise.Domains = []string{"AI / ML", "AI / ML"}
		}, KindLLM},
		{"unknown goal", func(c *UnifiedConfig) { c.Agent.Goal = "World Domination" }, KindAgent},
		{"duplicate tool", func(c *UnifiedConfig) {
			c.Agent.Tools = []AgentTool{ToolWebSearch, ToolWebSearch}
		}, KindAgent},
		{"duplicate step id", func(c *UnifiedConfig) {
			c.Workflow.Steps = []WorkflowStep{
				{ID: 1, Type: StepTrigger}, {ID: 1, Type: StepOutput},
			}
		}, KindWorkflow},
		{"unknown database", func(c *UnifiedConfig) { c.App.Database = "FlatFile" }, KindApp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(tt.kind)
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
		})
	}
}
