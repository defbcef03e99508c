package correction

import "github.com/pocketomega/router-supervisor/internal/config"

// dimensionRule names a parameter whose range clamp isn't a fixed constant
// but a fraction of the active object's dimensions (spec §4.8: "e.g.
// mesh_bevel.offset").
type dimensionRule struct {
	Param string
	Limit func(dims [3]float64, cfg config.Configuration) float64
}

// dimensionRelativeRules is the small, fixed set of tools that clamp a
// parameter against the active object's geometry rather than a static
// range. S2 (spec scenario): mesh_bevel.offset is clamped to
// min(dims)*bevel_max_ratio.
var dimensionRelativeRules = map[string]dimensionRule{
	"mesh_bevel": {
		Param: "offset",
		Limit: func(dims [3]float64, cfg config.Configuration) float64 {
			return minOf3(dims[0], dims[1], dims[2]) * cfg.BevelMaxRatio
		},
	},
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
