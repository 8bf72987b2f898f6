package sigil

import (
	"strings"
	"testing"

	"github.com/or4cl3/forge/pkg/models"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := models.DefaultConfig(models.KindAgent)
	a := Generate(cfg)
	b := Generate(cfg)
	if a != b {
		t.Fatal("same config produced different sigils")
	}
}

func TestGenerate_VariesWithConfig(t *testing.T) {
	a := Generate(models.DefaultConfig(models.KindLLM))

	other := models.DefaultConfig(models.KindLLM)
	other.Model.Core.Layers = models.MaxLayers
	b := Generate(other)

	if a == b {
		t.Fatal("different configs produced identical sigils")
	}
}

func TestGenerate_WellFormedSVG(t *testing.T) {
	for _, kind := range []models.AssetKind{models.KindLLM, models.KindAgent, models.KindWorkflow, models.KindApp} {
		svg := Generate(models.DefaultConfig(kind))
		if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
			t.Fatalf("%s: malformed svg: %q", kind, svg)
		}
		if !strings.Contains(svg, "<circle") {
			t.Fatalf("%s: sigil has no glyph elements", kind)
		}
	}
}
