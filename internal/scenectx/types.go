// Package scenectx models the Scene Context data the Analyzer pulls from
// the host (spec §3, §4.6): current mode, active object, selections,
// per-object data, topology, and the derived ProportionInfo.
package scenectx

import "time"

// Mode is the host's current interaction mode.
type Mode string

const (
	ModeObject       Mode = "OBJECT"
	ModeEdit         Mode = "EDIT"
	ModeSculpt       Mode = "SCULPT"
	ModeVertexPaint  Mode = "VERTEX_PAINT"
	ModeWeightPaint  Mode = "WEIGHT_PAINT"
	ModeTexturePaint Mode = "TEXTURE_PAINT"
	ModePose         Mode = "POSE"
	ModeAny          Mode = "ANY" // only valid as a Tool Metadata requirement, never as a live mode
)

// ObjectInfo describes one object in the scene (spec §3).
type ObjectInfo struct {
	Name       string
	Type       string
	Location   [3]float64
	Dimensions [3]float64
	Selected   bool
	Active     bool
}

// TopologyInfo carries mesh element counts for the active object (spec §3).
type TopologyInfo struct {
	Vertices  int
	Edges     int
	Faces     int
	Triangles int

	SelectedVerts int
	SelectedEdges int
	SelectedFaces int
}

// HasSelection is true iff any selected_* count is positive.
func (t TopologyInfo) HasSelection() bool {
	return t.SelectedVerts > 0 || t.SelectedEdges > 0 || t.SelectedFaces > 0
}

// ProportionInfo is derived once from an object's dimensions (spec §3).
// The invariant IsFlat ⇒ ¬IsTall always holds: IsFlat requires z to be far
// smaller than the x/y minimum, IsTall requires z to be far larger than the
// x/y maximum, and max(x,y) >= min(x,y) makes both impossible at once for
// any z.
type ProportionInfo struct {
	AspectXY, AspectXZ, AspectYZ float64
	IsFlat, IsTall, IsWide       bool
	IsCubic                      bool
	DominantAxis                 string // "x" | "y" | "z"
	Volume, SurfaceArea          float64
}

// DeriveProportions computes ProportionInfo from object dimensions (x,y,z),
// following the formulas in spec §3 exactly.
func DeriveProportions(x, y, z float64) ProportionInfo {
	p := ProportionInfo{
		AspectXY: safeDiv(x, y),
		AspectXZ: safeDiv(x, z),
		AspectYZ: safeDiv(y, z),
	}

	minXY := minOf(x, y)
	maxXY := maxOf(x, y)
	p.IsFlat = z < minXY*0.2
	p.IsTall = z > maxXY*2
	p.IsWide = x > maxOf(y, z)*2

	mn := minOf3(x, y, z)
	mx := maxOf3(x, y, z)
	p.IsCubic = mn > 0 && mx/mn < 1.5

	p.DominantAxis = dominantAxis(x, y, z)
	p.Volume = x * y * z
	p.SurfaceArea = 2 * (x*y + x*z + y*z)
	return p
}

func dominantAxis(x, y, z float64) string {
	axis := "x"
	m := x
	if y > m {
		axis, m = "y", y
	}
	if z > m {
		axis = "z"
	}
	return axis
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minOf3(a, b, c float64) float64 { return minOf(minOf(a, b), c) }
func maxOf3(a, b, c float64) float64 { return maxOf(maxOf(a, b), c) }

// SceneContext is the Analyzer's output (spec §3): the full snapshot of
// host state a single pipeline run reasons over.
type SceneContext struct {
	Mode            Mode
	ActiveObject    string // "" = none
	SelectedObjects []string
	Objects         []ObjectInfo
	Topology        *TopologyInfo // nil if not applicable (e.g. OBJECT mode)
	Proportions     *ProportionInfo
	Materials       []string
	Modifiers       []string
	Timestamp       time.Time
}

// ActiveObjectInfo returns the ObjectInfo for the active object, if any.
func (s SceneContext) ActiveObjectInfo() (ObjectInfo, bool) {
	for _, o := range s.Objects {
		if o.Name == s.ActiveObject {
			return o, true
		}
	}
	return ObjectInfo{}, false
}

// HasSelection reports whether anything is selected, at either the
// object level or (when in an edit-style mode) the mesh-element level.
func (s SceneContext) HasSelection() bool {
	if len(s.SelectedObjects) > 0 {
		return true
	}
	if s.Topology != nil {
		return s.Topology.HasSelection()
	}
	return false
}

// Minimal returns the degraded-but-valid context the Analyzer falls back to
// when the host RPC fails (spec §4.6, §7): OBJECT mode, empty collections,
// never a hard failure.
func Minimal(now time.Time) SceneContext {
	return SceneContext{Mode: ModeObject, Timestamp: now}
}
