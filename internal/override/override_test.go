package override

import "testing"

func TestResolve_UnconstrainedRuleFires(t *testing.T) {
	e := NewEngine([]Rule{
		{
			Tool: "mesh_bridge_edge_loops",
			Replacements: []Replacement{
				{Tool: "mesh_select", StaticParams: map[string]any{"action": "all"}},
				{Tool: "mesh_bridge_edge_loops", InheritParams: []string{"twist"}},
			},
		},
	})

	calls, ok := e.Resolve("mesh_bridge_edge_loops", map[string]any{"twist": 2}, "")
	if !ok {
		t.Fatal("Resolve() ok = false, want true")
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %+v, want 2", calls)
	}
	if calls[1].Params["twist"] != 2 {
		t.Errorf("calls[1].Params = %+v, want inherited twist=2", calls[1].Params)
	}
	if calls[0].OriginalToolName != "mesh_bridge_edge_loops" {
		t.Errorf("OriginalToolName = %q, want mesh_bridge_edge_loops", calls[0].OriginalToolName)
	}
}

func TestResolve_PatternGatedRuleOnlyFiresOnMatch(t *testing.T) {
	e := NewEngine([]Rule{
		{Tool: "modeling_create_primitive", Pattern: "WHEEL_LIKE", Replacements: []Replacement{
			{Tool: "modeling_create_primitive", StaticParams: map[string]any{"shape": "cylinder"}},
		}},
	})

	if _, ok := e.Resolve("modeling_create_primitive", nil, "TOWER_LIKE"); ok {
		t.Error("rule fired for a non-matching pattern")
	}
	calls, ok := e.Resolve("modeling_create_primitive", nil, "WHEEL_LIKE")
	if !ok || len(calls) != 1 {
		t.Fatalf("Resolve() = %+v, %v, want 1 call, true", calls, ok)
	}
}

func TestResolve_DollarSubstitutionFromOriginalParams(t *testing.T) {
	e := NewEngine([]Rule{
		{Tool: "mesh_inset", Replacements: []Replacement{
			{Tool: "mesh_inset_individual", StaticParams: map[string]any{"thickness": "$thickness"}},
		}},
	})

	calls, ok := e.Resolve("mesh_inset", map[string]any{"thickness": 0.05}, "")
	if !ok {
		t.Fatal("Resolve() ok = false, want true")
	}
	if calls[0].Params["thickness"] != 0.05 {
		t.Errorf("Params = %+v, want thickness resolved from original call", calls[0].Params)
	}
}

func TestResolve_NoRuleReturnsFalse(t *testing.T) {
	e := NewEngine(nil)
	if _, ok := e.Resolve("anything", nil, ""); ok {
		t.Error("Resolve() ok = true, want false with no rules registered")
	}
}
