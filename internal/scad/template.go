package scad

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
)

const (
	defaultHeightMM    = 20.0
	defaultWidthMM     = 20.0
	defaultDepthMM     = 20.0
	defaultWallThickMM = 2.0
)

// FromTemplate builds deterministic parametric source for a recognized target
// shape. It returns ok=false for unknown shapes so the caller can fall through
// to the generative path.
func FromTemplate(req domain.GenerationRequest) (source string, params map[string]any, ok bool) {
	shape := strings.ToLower(strings.TrimSpace(req.TargetShape))
	h := positiveOr(req.HeightMM, defaultHeightMM)
	w := positiveOr(req.WidthMM, defaultWidthMM)
	d := positiveOr(req.DepthMM, defaultDepthMM)
	wall := positiveOr(req.WallThickMM, defaultWallThickMM)

	var b strings.Builder
	switch shape {
	case "cube", "box":
		fmt.Fprintf(&b, "// %s %sx%sx%s mm\n", shape, mm(w), mm(d), mm(h))
		fmt.Fprintf(&b, "cube([%s, %s, %s]);\n", mm(w), mm(d), mm(h))
	case "sphere":
		r := h / 2
		fmt.Fprintf(&b, "$fn = 96;\nsphere(r = %s);\n", mm(r))
	case "cylinder":
		fmt.Fprintf(&b, "$fn = 96;\ncylinder(h = %s, r = %s);\n", mm(h), mm(w/2))
	case "cone":
		fmt.Fprintf(&b, "$fn = 96;\ncylinder(h = %s, r1 = %s, r2 = 0);\n", mm(h), mm(w/2))
	case "vase":
		fmt.Fprintf(&b, "$fn = 96;\ndifference() {\n")
		fmt.Fprintf(&b, "    cylinder(h = %s, r = %s);\n", mm(h), mm(w/2))
		fmt.Fprintf(&b, "    translate([0, 0, %s])\n", mm(wall))
		fmt.Fprintf(&b, "        cylinder(h = %s, r = %s);\n", mm(h), mm(w/2-wall))
		fmt.Fprintf(&b, "}\n")
	case "ring":
		fmt.Fprintf(&b, "$fn = 96;\ndifference() {\n")
		fmt.Fprintf(&b, "    cylinder(h = %s, r = %s);\n", mm(h), mm(w/2))
		fmt.Fprintf(&b, "    translate([0, 0, -1])\n")
		fmt.Fprintf(&b, "        cylinder(h = %s, r = %s);\n", mm(h+2), mm(w/2-wall))
		fmt.Fprintf(&b, "}\n")
	default:
		return "", nil, false
	}

	source = b.String()
	if pattern := strings.TrimSpace(req.Pattern); pattern != "" {
		source = fmt.Sprintf("// pattern hint: %s\n%s", pattern, source)
	}

	params = map[string]any{
		"shape":             cases.Title(language.Und).String(shape),
		"height_mm":         h,
		"width_mm":          w,
		"depth_mm":          d,
		"wall_thickness_mm": wall,
	}
	if req.Pattern != "" {
		params["pattern"] = req.Pattern
	}
	return source, params, true
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func mm(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
