package eval

import "github.com/pocketomega/router-supervisor/internal/value"

// FlattenDimensions derives width/height/depth/min_dim/max_dim from a
// 3-vector "dimensions" entry already present in ctx (spec §4.1, Context
// flattening), returning a new map with the derived scalars merged in.
// ctx is left unmodified.
func FlattenDimensions(ctx value.Map) value.Map {
	dims, ok := ctx["dimensions"]
	if !ok || !dims.IsVector() || len(dims.VectorVal()) != 3 {
		return ctx
	}
	v := dims.VectorVal()
	x, y, z := v[0], v[1], v[2]

	out := ctx.Clone()
	out["width"] = value.Number(x)
	out["height"] = value.Number(y)
	out["depth"] = value.Number(z)
	out["min_dim"] = value.Number(minOf(x, y, z))
	out["max_dim"] = value.Number(maxOf(x, y, z))
	return out
}

// FlattenProportions mirrors each scalar field of a ProportionInfo-shaped
// map under a "proportions_" prefix, e.g. proportions["aspect_xy"] becomes
// ctx["proportions_aspect_xy"]. Every entry of proportions is copied as is;
// no field is filtered by kind.
func FlattenProportions(ctx value.Map, proportions value.Map) value.Map {
	if len(proportions) == 0 {
		return ctx
	}
	out := ctx.Clone()
	for k, v := range proportions {
		out["proportions_"+k] = v
	}
	return out
}

func minOf(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxOf(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
