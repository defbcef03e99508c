package router

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
)

func TestPlanStore_SetGetUpdate(t *testing.T) {
	ps := newPlanStore()
	ps.set("sess-1", []callmodel.Emitted{{Tool: "system_set_mode"}, {Tool: "mesh_select"}})

	got := ps.get("sess-1")
	if len(got) != 2 || got[0].Tool != "system_set_mode" || got[0].Status != "pending" {
		t.Fatalf("get after set = %+v, want two pending entries", got)
	}

	if !ps.update("sess-1", "1", "done", "") {
		t.Fatalf("update on existing call = false, want true")
	}
	got = ps.get("sess-1")
	if got[1].Status != "done" {
		t.Errorf("got[1].Status = %q, want done", got[1].Status)
	}
	if got[0].Status != "pending" {
		t.Errorf("got[0].Status = %q, want untouched pending", got[0].Status)
	}
}

func TestPlanStore_UpdateUnknownSessionOrCallReturnsFalse(t *testing.T) {
	ps := newPlanStore()
	if ps.update("no-such-session", "0", "done", "") {
		t.Error("update on unknown session = true, want false")
	}
	ps.set("sess-1", []callmodel.Emitted{{Tool: "mesh_bevel"}})
	if ps.update("sess-1", "5", "done", "") {
		t.Error("update on unknown call index = true, want false")
	}
}

func TestPlanStore_GetUnknownSessionReturnsNil(t *testing.T) {
	ps := newPlanStore()
	if got := ps.get("missing"); got != nil {
		t.Errorf("get on missing session = %+v, want nil", got)
	}
}

func TestSupervisor_GetPlanAndReportCallStatus(t *testing.T) {
	sup := newTestSupervisor(t, fakeSnapshot(), nil)
	sup.plans.set(sup.sessionID, []callmodel.Emitted{{Tool: "mesh_bevel"}})

	if !sup.ReportCallStatus(0, "done", "clamped offset") {
		t.Fatal("ReportCallStatus = false, want true")
	}
	plan := sup.GetPlan()
	if len(plan) != 1 || plan[0].Status != "done" || plan[0].Detail != "clamped offset" {
		t.Errorf("GetPlan() = %+v, want one done entry", plan)
	}
}
