// Package sigil renders the decorative identity glyph for a saved
// asset: a small deterministic SVG derived from the configuration, so
// identical configurations always carry identical sigils.
package sigil

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/or4cl3/forge/pkg/models"
)

const size = 64

// kindHues anchors each asset kind on its own region of the color wheel.
var kindHues = map[models.AssetKind]int{
	models.KindLLM:      290, // violet
	models.KindAgent:    160, // teal
	models.KindWorkflow: 40,  // amber
	models.KindApp:      210, // blue
}

// Generate renders the sigil SVG for a configuration. The output is a
// pure function of the configuration's wire form.
func Generate(cfg models.UnifiedConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		data = []byte(cfg.Kind)
	}
	sum := sha256.Sum256(data)

	hue := kindHues[cfg.Kind]
	hue = (hue + int(sum[0])%40 - 20 + 360) % 360
	accent := (hue + 150 + int(sum[1])%60) % 360

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`, size, size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="hsl(%d,35%%,12%%)"/>`, size, size, hue)

	// Ring count and spoke layout come from successive hash bytes.
	rings := 2 + int(sum[2])%3
	for r := 0; r < rings; r++ {
		radius := 8 + r*9 + int(sum[3+r])%4
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="none" stroke="hsl(%d,70%%,%d%%)" stroke-width="1.5"/>`,
			size/2, size/2, radius, hue, 40+r*12)
	}

	spokes := 3 + int(sum[8])%6
	for i := 0; i < spokes; i++ {
		x, y := spokePoint(sum, i, spokes)
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="hsl(%d,80%%,60%%)"/>`,
			x, y, 2+int(sum[9+i])%3, accent)
	}

	fmt.Fprint(&b, `</svg>`)
	return b.String()
}

// spokePoint places spoke i on a hash-perturbed circle around the center.
func spokePoint(sum [sha256.Size]byte, i, total int) (int, int) {
	// Fixed-point angle in 1/256ths of a turn keeps this integer-only
	// and platform-stable.
	angle := (256*i/total + int(sum[16+i%8])) % 256
	radius := 14 + int(binary.BigEndian.Uint16(sum[24:26]))%10
	x := size/2 + radius*cos256(angle)/127
	y := size/2 + radius*sin256(angle)/127
	return x, y
}

// cos256/sin256 are coarse integer trig tables over a 256-step turn,
// scaled to [-127,127]. Precision beyond quarter-turn symmetry is not
// needed for a 64px glyph.
func cos256(a int) int { return sin256(a + 64) }

func sin256(a int) int {
	a &= 255
	quadrant := a / 64
	step := a % 64
	// Linear ramp approximation within each quadrant.
	ramp := step * 127 / 64
	switch quadrant {
	case 0:
		return ramp
	case 1:
		return 127 - ramp
	case 2:
		return -ramp
	default:
		return ramp - 127
	}
}
