package router

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/core"
	"github.com/pocketomega/router-supervisor/internal/ensemble"
	"github.com/pocketomega/router-supervisor/internal/patterndet"
	"github.com/pocketomega/router-supervisor/internal/routererr"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Supervisor owns one session's worth of state and runs process_llm_tool_call
// through the ten-stage pipeline in stages.go (spec §4.13). A Supervisor is
// safe for concurrent use; deps.Registry/ToolStore/Analyzer are expected to
// be shared read-mostly across many Supervisors (spec §5).
type Supervisor struct {
	deps      Deps
	sessionID string

	mu      sync.Mutex
	session sessionState
	plans   *planStore
}

// NewSupervisor creates a Supervisor for sessionID, sharing deps with any
// other session's Supervisor.
func NewSupervisor(sessionID string, deps Deps) *Supervisor {
	return &Supervisor{deps: deps, sessionID: sessionID, plans: newPlanStore()}
}

// GetPlan returns the call plan produced by the session's most recent
// successful emit, with whatever statuses ReportCallStatus has recorded
// against it so far. Returns nil if nothing has been emitted yet.
func (s *Supervisor) GetPlan() []CallStatus {
	return s.plans.get(s.sessionID)
}

// ReportCallStatus lets an external executor record the outcome of one
// call from the session's current plan (spec §11: execution feedback for
// multi-call sequences). callIndex is the call's position in the list
// ProcessLLMToolCall/ExecutePendingWorkflow most recently returned.
func (s *Supervisor) ReportCallStatus(callIndex int, status, detail string) bool {
	return s.plans.update(s.sessionID, strconv.Itoa(callIndex), status, detail)
}

// SetGoal runs the Ensemble Matcher against prompt and, if it names a
// workflow, stores it as the session's pending workflow (spec §4.13/§4.12):
// a subsequent ProcessLLMToolCall or ExecutePendingWorkflow call consumes it.
func (s *Supervisor) SetGoal(prompt string) (string, workflow.Confidence, map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detected patterndet.Detected
	var detectedOK bool
	if s.session.lastPattern != nil {
		detected, detectedOK = *s.session.lastPattern, true
	}

	result := ensemble.Match(s.deps.Registry, prompt, detected, detectedOK, s.deps.Embedder, s.deps.Similarity, ensemble.DefaultSimilarityCut)
	s.session.lastEnsembleResult = &result

	winner := result.WorkflowName
	if winner == "" {
		s.deps.Telemetry.Record("SetGoal", "", s.sessionID, "no workflow matched", nil)
		return "", result.ConfidenceLevel, nil
	}

	s.session.pendingWorkflow = winner
	s.session.pendingModifiers = result.Modifiers
	s.deps.Telemetry.Record("SetGoal", "", s.sessionID, fmt.Sprintf("pending workflow %q (confidence=%s)", winner, result.ConfidenceLevel), nil)
	return winner, result.ConfidenceLevel, result.Modifiers
}

// ClearGoal discards any pending workflow without executing it.
func (s *Supervisor) ClearGoal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.pendingWorkflow = ""
	s.session.pendingModifiers = nil
	s.session.lastEnsembleResult = nil
}

// ProcessLLMToolCall runs the full ten-stage pipeline for a single tool call
// issued by the LLM (spec §4.13). It returns the ordered calls the caller
// should actually execute, or an error if the Firewall stage blocked it.
func (s *Supervisor) ProcessLLMToolCall(ctx context.Context, toolName string, params map[string]any, prompt string) ([]callmodel.Emitted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &requestState{toolName: toolName, params: params, prompt: prompt}
	node := core.NewNode[requestState, pipelinePrep, pipelineExecResult](&callNode{sup: s}, 0)
	action := node.Run(ctx, state)

	if action == core.ActionFailure {
		if state.err != nil {
			return nil, routererr.New("Firewall", routererr.KindFirewallBlock, toolName, state.err)
		}
		return nil, routererr.New("Pipeline", routererr.KindRuntimeExpr, toolName, fmt.Errorf("pipeline failed"))
	}
	return state.emitted, nil
}

// ExecutePendingWorkflow expands and emits the session's pending workflow
// directly, without an inbound tool call to intercept or correct (spec
// §4.13: execute_pending_workflow). It clears the pending workflow and
// modifiers on success, per spec §4.13, but leaves them in place on failure
// so the caller may retry or inspect what was pending.
func (s *Supervisor) ExecutePendingWorkflow(ctx context.Context, variables map[string]any) ([]callmodel.Emitted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.session.pendingWorkflow
	if name == "" {
		return nil, routererr.New("Trigger", routererr.KindUnknownTarget, "", fmt.Errorf("no pending workflow"))
	}

	modifiers := s.session.pendingModifiers
	if len(variables) > 0 {
		merged := cloneVars(modifiers)
		for k, v := range variables {
			merged[k] = v
		}
		modifiers = merged
	}

	confidence := workflow.ConfidenceHigh
	if s.session.lastEnsembleResult != nil {
		confidence = s.session.lastEnsembleResult.ConfidenceLevel
	}

	ps := &pipelineState{
		intercepted:   callmodel.Intercepted{ToolName: name, Source: callmodel.SourceRouter, SessionID: s.sessionID},
		triggeredName: name,
		triggerConf:   confidence,
		modifiers:     modifiers,
	}

	s.stageIntercept(ps)
	s.stageAnalyze(ctx, ps)
	s.stageDetect(ps)
	s.stageExpand(ps)
	if ps.triggeredName == "" {
		return nil, routererr.New("Expand", routererr.KindValidation, name, fmt.Errorf("workflow %q could not be expanded", name))
	}
	s.stageBuild(ps)
	s.stageFirewall(ps)
	s.stageEmit(ps)

	if ps.blocked {
		s.session.pendingWorkflow = name
		return nil, routererr.New("Firewall", routererr.KindFirewallBlock, name, fmt.Errorf("%s", ps.blockMessage))
	}

	s.session.pendingWorkflow = ""
	s.session.pendingModifiers = nil
	s.session.lastEnsembleResult = nil
	return ps.emitted, nil
}

// InvalidateCache drops this session's cached Scene Context, forcing the
// next Analyze stage to re-fetch from the host.
func (s *Supervisor) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Analyzer.Invalidate(s.sessionID)
	s.session.lastContext = nil
}

// GetStats returns the session's telemetry counters.
func (s *Supervisor) GetStats() map[string]int64 {
	return s.deps.Telemetry.Stats()
}

// ResetStats clears the telemetry counters.
func (s *Supervisor) ResetStats() {
	s.deps.Telemetry.Reset()
}

func cloneVars(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
