package workflow

import (
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/value"
)

// Simulator maintains a shadow Scene Context that advances as a workflow
// expansion emits steps, so a later step's condition can react to an
// earlier step's effect (a mode switch, a selection change, a new object)
// without a round trip to the host (spec §4.5). Only the handful of tools
// with well-known, deterministic effects are simulated; everything else
// leaves the shadow context untouched.
type Simulator struct {
	ctx scenectx.SceneContext
}

// NewSimulator seeds the shadow context from the real Scene Context
// snapshot the pipeline run started with.
func NewSimulator(base scenectx.SceneContext) *Simulator {
	return &Simulator{ctx: base}
}

// Context returns the current shadow context.
func (s *Simulator) Context() scenectx.SceneContext { return s.ctx }

// Apply advances the shadow context with the effect of one emitted tool
// call, if that tool has a known effect.
func (s *Simulator) Apply(tool string, params map[string]any) {
	switch tool {
	case "system_set_mode":
		if mode, ok := params["mode"].(string); ok {
			s.ctx.Mode = scenectx.Mode(mode)
		}

	case "mesh_select":
		s.applyMeshSelect(params)

	case "modeling_create_primitive":
		s.applyCreatePrimitive(params)

	case "scene_delete_object":
		if name, ok := params["name"].(string); ok {
			s.applyDeleteObject(name)
		}
	}
}

func (s *Simulator) applyMeshSelect(params map[string]any) {
	action, _ := params["action"].(string)
	var t scenectx.TopologyInfo
	if s.ctx.Topology != nil {
		t = *s.ctx.Topology
	}
	switch action {
	case "all":
		t.SelectedVerts, t.SelectedEdges, t.SelectedFaces = t.Vertices, t.Edges, t.Faces
		if !t.HasSelection() {
			t.SelectedVerts = 1 // element counts unknown; record that something is selected
		}
	case "none":
		t.SelectedVerts, t.SelectedEdges, t.SelectedFaces = 0, 0, 0
	}
	s.ctx.Topology = &t
}

func (s *Simulator) applyCreatePrimitive(params map[string]any) {
	name, _ := params["name"].(string)
	if name == "" {
		name = "Object"
	}
	primType, _ := params["type"].(string)

	for i := range s.ctx.Objects {
		s.ctx.Objects[i].Active = false
		s.ctx.Objects[i].Selected = false
	}
	s.ctx.Objects = append(s.ctx.Objects, scenectx.ObjectInfo{
		Name:     name,
		Type:     primType,
		Active:   true,
		Selected: true,
	})
	s.ctx.ActiveObject = name
	s.ctx.SelectedObjects = []string{name}
}

func (s *Simulator) applyDeleteObject(name string) {
	objects := s.ctx.Objects[:0:0]
	for _, o := range s.ctx.Objects {
		if o.Name != name {
			objects = append(objects, o)
		}
	}
	s.ctx.Objects = objects

	selected := s.ctx.SelectedObjects[:0:0]
	for _, n := range s.ctx.SelectedObjects {
		if n != name {
			selected = append(selected, n)
		}
	}
	s.ctx.SelectedObjects = selected

	if s.ctx.ActiveObject == name {
		s.ctx.ActiveObject = ""
	}
}

// ConditionVars flattens the shadow context into the extra name bindings a
// step Condition expression can reference, on top of the workflow's own
// resolved variables (spec §4.5): "mode", "has_selection", "active_object",
// "object_count".
func (s *Simulator) ConditionVars() value.Map {
	out := value.Map{
		"mode":          value.String(string(s.ctx.Mode)),
		"has_selection": value.Bool(s.ctx.HasSelection()),
		"active_object": value.String(s.ctx.ActiveObject),
		"object_count":  value.Number(float64(len(s.ctx.Objects))),
	}
	return out
}
