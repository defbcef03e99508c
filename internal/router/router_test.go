package router

import (
	"context"
	"testing"
	"time"

	"github.com/pocketomega/router-supervisor/internal/config"
	"github.com/pocketomega/router-supervisor/internal/firewall"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/telemetry"
	"github.com/pocketomega/router-supervisor/internal/toolmeta"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

func fakeSnapshot() scenectx.Snapshot {
	return scenectx.Snapshot{
		Mode:    scenectx.ModeObject,
		Objects: []scenectx.ObjectInfo{{Name: "Cube", Active: true, Dimensions: [3]float64{1, 1, 1}}},
	}
}

type fakeHost struct {
	snap scenectx.Snapshot
}

func (h fakeHost) FetchScene(ctx context.Context) (scenectx.Snapshot, error) {
	return h.snap, nil
}

func newTestSupervisor(t *testing.T, snap scenectx.Snapshot, metas []toolmeta.Meta) *Supervisor {
	t.Helper()
	store := toolmeta.NewStore()
	// toolmeta.Store only loads from disk; tests populate it via Overlay.
	extra := make(map[string]toolmeta.Meta, len(metas))
	for _, m := range metas {
		extra[m.ToolName] = m
	}
	store = store.Overlay(extra)

	analyzer := scenectx.NewAnalyzer(fakeHost{snap: snap}, time.Minute, 8)
	reg := workflow.NewRegistry()

	deps := Deps{
		ToolStore:     store,
		Registry:      reg,
		Analyzer:      analyzer,
		FirewallRules: firewall.BuiltinRules(store, config.Default()),
		Config:        config.Default(),
		Telemetry:     telemetry.NewLogger(nil),
	}
	return NewSupervisor("sess-1", deps)
}

// TestProcessLLMToolCall_ModeAndSelectionAutoFix is S1: mesh_extrude_region
// called from OBJECT mode with nothing selected must come back as
// [system_set_mode(EDIT), mesh_select(all), mesh_extrude_region(...)].
func TestProcessLLMToolCall_ModeAndSelectionAutoFix(t *testing.T) {
	metas := []toolmeta.Meta{{
		ToolName:          "mesh_extrude_region",
		ModeRequired:      scenectx.ModeEdit,
		SelectionRequired: true,
	}}
	snap := scenectx.Snapshot{
		Mode:    scenectx.ModeObject,
		Objects: []scenectx.ObjectInfo{{Name: "Cube", Active: true, Dimensions: [3]float64{1, 1, 1}}},
	}
	sup := newTestSupervisor(t, snap, metas)

	emitted, err := sup.ProcessLLMToolCall(context.Background(), "mesh_extrude_region", map[string]any{"move": []float64{0, 0, 1}}, "extrude the top face")
	if err != nil {
		t.Fatalf("ProcessLLMToolCall: %v", err)
	}
	if len(emitted) != 3 {
		t.Fatalf("emitted = %+v, want 3 calls", emitted)
	}
	if emitted[0].Tool != "system_set_mode" || emitted[0].Params["mode"] != "EDIT" {
		t.Errorf("emitted[0] = %+v, want system_set_mode(mode=EDIT)", emitted[0])
	}
	if emitted[1].Tool != "mesh_select" || emitted[1].Params["action"] != "all" {
		t.Errorf("emitted[1] = %+v, want mesh_select(action=all)", emitted[1])
	}
	if emitted[2].Tool != "mesh_extrude_region" {
		t.Errorf("emitted[2] = %+v, want mesh_extrude_region", emitted[2])
	}
}

// TestProcessLLMToolCall_BevelOffsetClampedByFirewall is S2: a bevel offset
// that would exceed half the object's smallest dimension is clamped before
// it is emitted: the Correction stage's dimension clamp applies the ceiling,
// and the Firewall's bevel MODIFY rule enforces the same ceiling.
func TestProcessLLMToolCall_BevelOffsetClampedByFirewall(t *testing.T) {
	metas := []toolmeta.Meta{{ToolName: "mesh_bevel"}}
	snap := scenectx.Snapshot{
		Mode:            scenectx.ModeEdit,
		ActiveObject:    "Cube",
		SelectedObjects: []string{"Cube"},
		Objects:         []scenectx.ObjectInfo{{Name: "Cube", Active: true, Dimensions: [3]float64{0.1, 0.2, 0.05}}},
	}
	sup := newTestSupervisor(t, snap, metas)

	emitted, err := sup.ProcessLLMToolCall(context.Background(), "mesh_bevel", map[string]any{"offset": 1.0, "segments": 2}, "bevel the edges")
	if err != nil {
		t.Fatalf("ProcessLLMToolCall: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("emitted = %+v, want 1 call", emitted)
	}
	got, _ := emitted[0].Params["offset"].(float64)
	if got != 0.025 {
		t.Errorf("offset = %v, want 0.025 (0.05 min dim * 0.5 bevel_max_ratio)", got)
	}
}

// TestSetGoalAndExecutePendingWorkflow covers the goal-setting side channel:
// SetGoal names a workflow from the prompt, and ExecutePendingWorkflow later
// expands and emits it, clearing the pending state on success.
func TestSetGoalAndExecutePendingWorkflow(t *testing.T) {
	snap := scenectx.Snapshot{
		Mode:    scenectx.ModeObject,
		Objects: []scenectx.ObjectInfo{{Name: "Cube", Active: true, Dimensions: [3]float64{1, 1, 1}}},
	}
	sup := newTestSupervisor(t, snap, nil)

	sup.deps.Registry.RegisterWorkflow(workflow.Def{
		Name:            "picnic_table",
		TriggerKeywords: []string{"picnic", "table"},
		SamplePrompts:   []string{"build me a picnic table"},
		Steps: []workflow.Step{
			{Tool: "mesh_primitive_cube", Params: map[string]any{"size": 1.0}},
		},
	})

	name, _, _ := sup.SetGoal("build me a picnic table outside")
	if name != "picnic_table" {
		t.Fatalf("SetGoal workflow = %q, want picnic_table", name)
	}
	if sup.session.pendingWorkflow != "picnic_table" {
		t.Fatalf("pendingWorkflow = %q, want picnic_table", sup.session.pendingWorkflow)
	}

	emitted, err := sup.ExecutePendingWorkflow(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExecutePendingWorkflow: %v", err)
	}
	// The session is in OBJECT mode, so the Firewall's mesh_* rule prepends
	// the EDIT-mode switch.
	if len(emitted) != 2 || emitted[0].Tool != "system_set_mode" || emitted[0].Params["mode"] != "EDIT" || emitted[1].Tool != "mesh_primitive_cube" {
		t.Fatalf("emitted = %+v, want [system_set_mode(EDIT), mesh_primitive_cube]", emitted)
	}
	if sup.session.pendingWorkflow != "" {
		t.Errorf("pendingWorkflow after execute = %q, want cleared", sup.session.pendingWorkflow)
	}
}

func TestExecutePendingWorkflow_NoneReturnsError(t *testing.T) {
	sup := newTestSupervisor(t, scenectx.Snapshot{Mode: scenectx.ModeObject}, nil)
	if _, err := sup.ExecutePendingWorkflow(context.Background(), nil); err == nil {
		t.Error("ExecutePendingWorkflow with no pending goal = nil error, want an error")
	}
}

func TestGetStatsAndResetStats(t *testing.T) {
	sup := newTestSupervisor(t, scenectx.Snapshot{Mode: scenectx.ModeObject}, nil)
	sup.deps.Telemetry.Record("Intercept", "t", "s", "m", nil)
	if sup.GetStats()["total"] != 1 {
		t.Fatalf("GetStats()[total] = %d, want 1", sup.GetStats()["total"])
	}
	sup.ResetStats()
	if sup.GetStats()["total"] != 0 {
		t.Errorf("GetStats()[total] after reset = %d, want 0", sup.GetStats()["total"])
	}
}
