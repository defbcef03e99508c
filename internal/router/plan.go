package router

import (
	"strconv"
	"sync"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
)

// CallStatus is one entry in a session's emitted call plan: the ordered
// list of calls the Emit stage produced, together with whatever the
// external executor later reports back about each one. Adapted from the
// teacher's internal/plan.PlanStep (there: steps of an agent's own
// execution plan; here: the calls a single process_llm_tool_call or
// execute_pending_workflow invocation emitted).
type CallStatus struct {
	ID     string // the call's position in the emitted list, as a string
	Tool   string
	Status string // "pending" | "done" | "error" | "skipped"
	Detail string
}

// planStore tracks the most recent emitted call plan per session, so a
// caller can report execution results back against the calls the
// Supervisor actually produced. Thread-safe via sync.RWMutex, matching
// the teacher's internal/plan.PlanStore.
type planStore struct {
	mu    sync.RWMutex
	plans map[string][]CallStatus
}

func newPlanStore() *planStore {
	return &planStore{plans: make(map[string][]CallStatus)}
}

// set records a freshly emitted call list as sessionID's current plan,
// every entry starting "pending".
func (ps *planStore) set(sessionID string, emitted []callmodel.Emitted) {
	cp := make([]CallStatus, len(emitted))
	for i, e := range emitted {
		cp[i] = CallStatus{ID: strconv.Itoa(i), Tool: e.Tool, Status: "pending"}
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.plans[sessionID] = cp
}

// update changes one call's status by ID (spec §11: execution feedback
// for multi-call sequences from workflow expansion or overrides).
func (ps *planStore) update(sessionID, stepID, status, detail string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	steps, ok := ps.plans[sessionID]
	if !ok {
		return false
	}
	for i := range steps {
		if steps[i].ID == stepID {
			steps[i].Status = status
			if detail != "" {
				steps[i].Detail = detail
			}
			return true
		}
	}
	return false
}

// get returns a copy of sessionID's current plan, nil if none exists.
func (ps *planStore) get(sessionID string) []CallStatus {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	steps := ps.plans[sessionID]
	if steps == nil {
		return nil
	}
	cp := make([]CallStatus, len(steps))
	copy(cp, steps)
	return cp
}
