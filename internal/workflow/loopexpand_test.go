package workflow

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/value"
)

func intRange(lo, hi string) *[2]string { return &[2]string{lo, hi} }

func TestExpandSteps_NoLoopPassesThrough(t *testing.T) {
	steps := []Step{{Tool: "mesh_bevel", Params: map[string]any{"offset": 0.01}}}
	out, err := ExpandSteps(steps, value.Map{}, 0)
	if err != nil {
		t.Fatalf("ExpandSteps: %v", err)
	}
	if len(out) != 1 || out[0].Tool != "mesh_bevel" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestExpandSteps_RangeLoop(t *testing.T) {
	steps := []Step{{
		Tool: "modeling_create_primitive",
		ID:   "create_{i}",
		Loop: &Loop{Vars: []LoopVar{{Name: "i", RangeExpr: intRange("1", "4")}}},
	}}
	out, err := ExpandSteps(steps, value.Map{}, 0)
	if err != nil {
		t.Fatalf("ExpandSteps: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 expanded steps, got %d", len(out))
	}
	for idx, es := range out {
		want := "create_" + []string{"1", "2", "3", "4"}[idx]
		if es.ID != want {
			t.Errorf("step %d: ID=%q, want %q", idx, es.ID, want)
		}
	}
}

// TestExpandSteps_GroupInterleaving exercises S5: two steps sharing
// loop.group=planks over i=1..3 interleave as
// create_1, transform_1, create_2, transform_2, create_3, transform_3.
func TestExpandSteps_GroupInterleaving(t *testing.T) {
	loop := &Loop{Vars: []LoopVar{{Name: "i", RangeExpr: intRange("1", "3")}}, Group: "planks"}
	steps := []Step{
		{Tool: "modeling_create_primitive", ID: "create_{i}", Loop: loop, Condition: "{i} <= plank_count"},
		{Tool: "modeling_transform_object", ID: "transform_{i}", Loop: loop},
	}
	vars := value.Map{"plank_count": value.Number(3)}
	out, err := ExpandSteps(steps, vars, 0)
	if err != nil {
		t.Fatalf("ExpandSteps: %v", err)
	}
	wantIDs := []string{"create_1", "transform_1", "create_2", "transform_2", "create_3", "transform_3"}
	if len(out) != len(wantIDs) {
		t.Fatalf("expected %d steps, got %d: %+v", len(wantIDs), len(out), out)
	}
	for i, want := range wantIDs {
		if out[i].ID != want {
			t.Errorf("step %d: ID=%q, want %q", i, out[i].ID, want)
		}
	}
	if out[0].Condition != "1 <= plank_count" {
		t.Errorf("expected {i} substituted before evaluation, got condition %q", out[0].Condition)
	}
}

func TestExpandSteps_ValuesLoop(t *testing.T) {
	steps := []Step{{
		Tool: "scene_delete_object",
		Params: map[string]any{
			"name": "{obj}",
		},
		Loop: &Loop{Vars: []LoopVar{{Name: "obj", Values: []any{"Leg_FL", "Leg_FR"}}}},
	}}
	out, err := ExpandSteps(steps, value.Map{}, 0)
	if err != nil {
		t.Fatalf("ExpandSteps: %v", err)
	}
	if len(out) != 2 || out[0].Params["name"] != "Leg_FL" || out[1].Params["name"] != "Leg_FR" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestExpandSteps_MaxExpandedStepsCap(t *testing.T) {
	steps := []Step{{
		Tool: "modeling_create_primitive",
		Loop: &Loop{Vars: []LoopVar{{Name: "i", RangeExpr: intRange("1", "10")}}},
	}}
	if _, err := ExpandSteps(steps, value.Map{}, 5); err == nil {
		t.Fatal("expected the max_expanded_steps cap to trigger an error")
	}
}

func TestInterpolate_EscapedBraces(t *testing.T) {
	got, err := interpolate("{{literal}} and {i}", map[string]any{"i": 7})
	if err != nil {
		t.Fatalf("interpolate: %v", err)
	}
	if got != "{literal} and 7" {
		t.Fatalf("got %q", got)
	}
}

func TestInterpolate_UnresolvedPlaceholderErrors(t *testing.T) {
	if _, err := interpolate("{missing}", map[string]any{}); err == nil {
		t.Fatal("expected an error for an unresolved placeholder")
	}
}
