// Package patterndet classifies the active object into a small set of
// shape categories using deterministic rules over ProportionInfo (spec
// §4.7).
package patterndet

import "github.com/pocketomega/router-supervisor/internal/scenectx"

// PatternType enumerates the detectable shape categories.
type PatternType string

const (
	TowerLike   PatternType = "TOWER_LIKE"
	PhoneLike   PatternType = "PHONE_LIKE"
	TableLike   PatternType = "TABLE_LIKE"
	PillarLike  PatternType = "PILLAR_LIKE"
	WheelLike   PatternType = "WHEEL_LIKE"
	ScreenArea  PatternType = "SCREEN_AREA"
	BoxLike     PatternType = "BOX_LIKE"
	SphereLike  PatternType = "SPHERE_LIKE"
	CylinderLike PatternType = "CYLINDER_LIKE"
	Unknown     PatternType = "UNKNOWN"
)

// Detected is the Pattern Detector's result (spec §3).
type Detected struct {
	Type              PatternType
	Confidence        float64
	SuggestedWorkflow string
	Rules             []string
}

// IsConfident reports confidence > 0.7 (spec §3).
func (d Detected) IsConfident() bool { return d.Confidence > 0.7 }

// rule is one declared detection rule, evaluated in declaration order.
type rule struct {
	patternType       PatternType
	suggestedWorkflow string
	confidence        float64
	fires             func(scenectx.ProportionInfo) bool
	description       string
}

// rules mirrors the table in spec §4.7. Declaration order matters: ties in
// get_best_match are broken by this order.
var rules = []rule{
	{
		patternType:       TowerLike,
		suggestedWorkflow: "tower_workflow",
		confidence:        0.85,
		description:       "is_tall and height > width * 3",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsTall && p.AspectYZ != 0 && heightOverWidth(p) > 3
		},
	},
	{
		patternType:       PhoneLike,
		suggestedWorkflow: "phone_workflow",
		confidence:        0.8,
		description:       "is_flat and 0.4 < aspect_xy < 0.7",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsFlat && p.AspectXY > 0.4 && p.AspectXY < 0.7
		},
	},
	{
		patternType:       TableLike,
		suggestedWorkflow: "table_workflow",
		confidence:        0.75,
		description:       "is_flat and not is_tall",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsFlat && !p.IsTall
		},
	},
	{
		patternType:       PillarLike,
		suggestedWorkflow: "pillar_workflow",
		confidence:        0.75,
		description:       "is_tall and roughly cubic in x-y",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsTall && p.AspectXY > 0.75 && p.AspectXY < 1.33
		},
	},
	{
		patternType:       WheelLike,
		suggestedWorkflow: "wheel_workflow",
		confidence:        0.7,
		description:       "is_flat and 0.9 < aspect_xy < 1.1",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsFlat && p.AspectXY > 0.9 && p.AspectXY < 1.1
		},
	},
	{
		patternType: BoxLike,
		confidence:  0.6,
		description: "is_cubic and not is_flat and not is_tall",
		fires: func(p scenectx.ProportionInfo) bool {
			return p.IsCubic && !p.IsFlat && !p.IsTall
		},
	},
}

// heightOverWidth returns height/width (AspectYZ relates y/z, but we need
// z/x here — height is the dominant "tall" axis, z). We reconstruct it from
// the aspect ratios already computed on ProportionInfo: height/width =
// (z/x) = 1 / aspect_xz when aspect_xz != 0.
func heightOverWidth(p scenectx.ProportionInfo) float64 {
	if p.AspectXZ == 0 {
		return 0
	}
	return 1 / p.AspectXZ
}

// Detect runs every rule in declaration order and returns all that fire.
func Detect(p scenectx.ProportionInfo) []Detected {
	var out []Detected
	for _, r := range rules {
		if r.fires(p) {
			out = append(out, Detected{
				Type:              r.patternType,
				Confidence:        r.confidence,
				SuggestedWorkflow: r.suggestedWorkflow,
				Rules:             []string{r.description},
			})
		}
	}
	return out
}

// BestMatch returns the highest-confidence pattern at or above threshold,
// ties broken by declaration order (spec §4.7). Returns ok=false if nothing
// clears the threshold.
func BestMatch(p scenectx.ProportionInfo, threshold float64) (Detected, bool) {
	candidates := Detect(p)
	best := Detected{Type: Unknown}
	found := false
	for _, c := range candidates {
		if c.Confidence < threshold {
			continue
		}
		if !found || c.Confidence > best.Confidence {
			best = c
			found = true
		}
	}
	return best, found
}
