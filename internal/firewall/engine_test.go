package firewall

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/config"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/toolmeta"
)

func TestRun_BevelOffsetModifiedDownToRatio(t *testing.T) {
	store := toolmeta.NewStore()
	rules := BuiltinRules(store, config.Default())

	calls := []callmodel.Corrected{
		{ToolName: "mesh_bevel", Params: map[string]any{"offset": 1.0, "segments": 3}},
	}
	ctx := scenectx.SceneContext{
		Mode: scenectx.ModeEdit, ActiveObject: "Cube", SelectedObjects: []string{"Cube"},
		Objects: []scenectx.ObjectInfo{{Name: "Cube", Active: true, Dimensions: [3]float64{0.1, 0.2, 0.05}}},
	}

	results := Run(rules, calls, ctx)
	if len(results) != 1 {
		t.Fatalf("results = %+v, want 1", results)
	}
	r := results[0]
	if !r.Allowed || r.Action != ActionModify {
		t.Fatalf("result = %+v, want allowed MODIFY", r)
	}
	if r.ModifiedCall.Params["offset"] != 0.025 {
		t.Errorf("offset = %v, want 0.025", r.ModifiedCall.Params["offset"])
	}
}

func TestRun_MeshToolOutsideEditModeAutoFixes(t *testing.T) {
	store := toolmeta.NewStore()
	rules := BuiltinRules(store, config.Default())

	calls := []callmodel.Corrected{{ToolName: "mesh_extrude_region", Params: map[string]any{}}}
	ctx := scenectx.SceneContext{Mode: scenectx.ModeObject}

	results := Run(rules, calls, ctx)
	r := results[0]
	if r.Action != ActionAutoFix || !r.Allowed {
		t.Fatalf("result = %+v, want allowed AUTO_FIX", r)
	}
	if len(r.PreSteps) != 1 || r.PreSteps[0].Params["mode"] != "EDIT" {
		t.Errorf("PreSteps = %+v, want system_set_mode(mode=EDIT)", r.PreSteps)
	}
}

func TestRun_DestructiveCallOnEmptySceneBlocks(t *testing.T) {
	store := toolmeta.NewStore()
	rules := BuiltinRules(store, config.Default())

	calls := []callmodel.Corrected{
		{ToolName: "scene_delete_object", Params: map[string]any{"name": "Cube"}},
		{ToolName: "mesh_bevel", Params: map[string]any{"offset": 0.01}},
	}
	ctx := scenectx.SceneContext{Mode: scenectx.ModeEdit}

	results := Run(rules, calls, ctx)
	if len(results) != 1 {
		t.Fatalf("results = %+v, want processing to stop after the BLOCK", results)
	}
	if results[0].Allowed || results[0].Action != ActionBlock {
		t.Errorf("result = %+v, want blocked", results[0])
	}
}

func TestRun_BlockDisabledSkipsModeRuleEntirely(t *testing.T) {
	cfg := config.Default()
	cfg.AutoFixModeViolations = false
	cfg.BlockInvalidOperations = false
	rules := BuiltinRules(toolmeta.NewStore(), cfg)

	calls := []callmodel.Corrected{{ToolName: "mesh_extrude_region", Params: map[string]any{}}}
	results := Run(rules, calls, scenectx.SceneContext{Mode: scenectx.ModeObject})
	if results[0].Action != ActionAllow || !results[0].Allowed {
		t.Errorf("result = %+v, want ALLOW when both mode flags are off", results[0])
	}
}

func TestParseCondition_RejectsMalformedExpression(t *testing.T) {
	if _, err := ParseCondition("param:offset >"); err == nil {
		t.Error("ParseCondition() err = nil, want an error for a malformed condition")
	}
}
