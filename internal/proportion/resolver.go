// Package proportion implements the fixed $AUTO_* name resolver (spec §4.2,
// §6). Every name is a formula over the active object's dimensions; when no
// dimensions are available the literal $AUTO_ string is returned unchanged
// so callers can surface it untouched rather than fail outright.
package proportion

import (
	"fmt"
	"strings"

	"github.com/pocketomega/router-supervisor/internal/value"
)

// Prefix is the literal prefix identifying an auto-proportion reference.
const Prefix = "$AUTO_"

// Dims is the active object's (x, y, z) dimensions used to compute every
// $AUTO_ name.
type Dims struct {
	X, Y, Z float64
}

func (d Dims) min() float64 { return minOf(d.X, d.Y, d.Z) }
func (d Dims) max() float64 { return maxOf(d.X, d.Y, d.Z) }

// IsAuto reports whether s names a fixed $AUTO_ proportion.
func IsAuto(s string) bool { return strings.HasPrefix(s, Prefix) }

// scalarFormulas and vectorFormulas map each supported $AUTO_ name to its
// computation. Scalar formulas return a single float64; vector formulas return a 3-element
// slice (x, y, z order).
var scalarFormulas = map[string]func(Dims) float64{
	"BEVEL":       func(d Dims) float64 { return d.min() * 0.05 },
	"BEVEL_SMALL": func(d Dims) float64 { return d.min() * 0.02 },
	"BEVEL_LARGE": func(d Dims) float64 { return d.min() * 0.10 },
	"INSET":       func(d Dims) float64 { return minOf2(d.X, d.Y) * 0.03 },
	"INSET_THICK": func(d Dims) float64 { return minOf2(d.X, d.Y) * 0.05 },
	"EXTRUDE":     func(d Dims) float64 { return d.Z * 0.10 },
	"EXTRUDE_SMALL": func(d Dims) float64 { return d.Z * 0.05 },
	"EXTRUDE_DEEP":  func(d Dims) float64 { return d.Z * 0.20 },
	"EXTRUDE_NEG":   func(d Dims) float64 { return -d.Z * 0.10 },
	"OFFSET":        func(d Dims) float64 { return d.min() * 0.02 },
	"THICKNESS":     func(d Dims) float64 { return d.Z * 0.05 },
	"SCREEN_DEPTH":  func(d Dims) float64 { return d.Z * 0.50 },
	"SCREEN_DEPTH_NEG": func(d Dims) float64 { return -d.Z * 0.50 },
	"LOOP_POS":         func(d Dims) float64 { return 0.8 },
}

var vectorFormulas = map[string]func(Dims) []float64{
	"SCALE_SMALL": func(d Dims) []float64 { return []float64{d.X * 0.8, d.Y * 0.8, d.Z * 0.8} },
	"SCALE_TINY":  func(d Dims) []float64 { return []float64{d.X * 0.5, d.Y * 0.5, d.Z * 0.5} },
}

// Resolve looks up an $AUTO_ name. If dims is nil (no active object), the
// original literal string is returned unchanged (fallback), matching the
// spec's requirement that the resolver never fails a workflow for lack of
// scene data. If name does not reference a known $AUTO_ entry, an error is
// returned — unlike the missing-dims fallback, an unknown name is a real
// authoring mistake.
func Resolve(literal string, dims *Dims) (value.Value, error) {
	if !IsAuto(literal) {
		return value.Value{}, fmt.Errorf("proportion: %q is not an $AUTO_ reference", literal)
	}
	name := strings.TrimPrefix(literal, Prefix)

	if dims == nil {
		return value.String(literal), nil
	}

	if f, ok := scalarFormulas[name]; ok {
		return value.Number(f(*dims)), nil
	}
	if f, ok := vectorFormulas[name]; ok {
		return value.Vector(f(*dims)), nil
	}
	return value.Value{}, fmt.Errorf("proportion: unknown $AUTO_ name %q", name)
}

func minOf2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
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
