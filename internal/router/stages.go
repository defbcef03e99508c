package router

import (
	"context"
	"fmt"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/correction"
	"github.com/pocketomega/router-supervisor/internal/firewall"
	"github.com/pocketomega/router-supervisor/internal/patterndet"
	"github.com/pocketomega/router-supervisor/internal/proportion"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// runPipeline executes the ten named stages of spec §4.13 in order,
// mutating ps as it goes. It returns early (ps.blocked=true) the moment the
// Firewall stage blocks a call.
func (s *Supervisor) runPipeline(ctx context.Context, ps *pipelineState) {
	s.stageIntercept(ps)
	s.stageAnalyze(ctx, ps)
	s.stageDetect(ps)
	s.stageCorrect(ps)
	s.stageTrigger(ps)
	s.stageOverride(ps)
	s.stageExpand(ps)
	s.stageBuild(ps)
	s.stageFirewall(ps)
	s.stageEmit(ps)
}

func (s *Supervisor) log(stage, tool, message string) {
	s.deps.Telemetry.Record(stage, tool, s.sessionID, message, nil)
}

// 1. Intercept — record the call, assign a timestamp.
func (s *Supervisor) stageIntercept(ps *pipelineState) {
	ps.intercepted.Timestamp = s.deps.now()
	s.log("Intercept", ps.intercepted.ToolName, "received call")
}

// 2. Analyze — obtain Scene Context (cache-aware).
func (s *Supervisor) stageAnalyze(ctx context.Context, ps *pipelineState) {
	ps.ctx = s.deps.Analyzer.Analyze(ctx, s.sessionID, false)
	s.session.lastContext = &ps.ctx
	s.log("Analyze", ps.intercepted.ToolName, fmt.Sprintf("mode=%s", ps.ctx.Mode))
}

// 3. Detect — obtain the best pattern, if any.
func (s *Supervisor) stageDetect(ps *pipelineState) {
	if ps.ctx.Proportions == nil {
		return
	}
	detected, ok := patterndet.BestMatch(*ps.ctx.Proportions, 0.7)
	ps.pattern, ps.patternOK = detected, ok
	if ok {
		s.session.lastPattern = &detected
		s.log("Detect", ps.intercepted.ToolName, fmt.Sprintf("pattern=%s confidence=%.2f", detected.Type, detected.Confidence))
	}
}

// 4. Correct — Correction Engine pre-steps and clamps.
func (s *Supervisor) stageCorrect(ps *pipelineState) {
	meta, ok := s.deps.ToolStore.Get(ps.intercepted.ToolName)
	corrected, pre := correction.Correct(ps.intercepted.ToolName, ps.intercepted.Params, ps.ctx, meta, ok, s.deps.Config)
	ps.corrected = corrected
	ps.preSteps = pre
	if len(pre) > 0 {
		s.log("Correct", ps.intercepted.ToolName, fmt.Sprintf("%d pre-step(s) injected", len(pre)))
	}
}

// 5. Trigger — pending workflow wins; otherwise a heuristic trigger may
// name one from the detected pattern, unless disabled by config.
func (s *Supervisor) stageTrigger(ps *pipelineState) {
	if s.session.pendingWorkflow != "" {
		ps.triggeredName = s.session.pendingWorkflow
		if s.session.lastEnsembleResult != nil {
			ps.triggerConf = s.session.lastEnsembleResult.ConfidenceLevel
		} else {
			ps.triggerConf = workflow.ConfidenceHigh
		}
		ps.modifiers = s.session.pendingModifiers
		s.log("Trigger", ps.intercepted.ToolName, fmt.Sprintf("pending workflow %q", ps.triggeredName))
		return
	}

	if !s.deps.Config.EnableWorkflowExpansion {
		return
	}
	if ps.patternOK && ps.pattern.IsConfident() && ps.pattern.SuggestedWorkflow != "" {
		if _, ok := s.deps.Registry.Get(ps.pattern.SuggestedWorkflow); ok {
			ps.triggeredName = ps.pattern.SuggestedWorkflow
			ps.triggerConf = workflow.ConfidenceHigh
			s.log("Trigger", ps.intercepted.ToolName, fmt.Sprintf("heuristic workflow %q", ps.triggeredName))
		}
	}
}

// 6. Override — only consulted when no workflow was triggered.
func (s *Supervisor) stageOverride(ps *pipelineState) {
	if ps.triggeredName != "" || s.deps.OverrideEngine == nil || !s.deps.Config.EnableOverrides {
		return
	}
	pattern := ""
	if ps.patternOK {
		pattern = string(ps.pattern.Type)
	}
	calls, ok := s.deps.OverrideEngine.Resolve(ps.corrected.ToolName, ps.corrected.Params, pattern)
	if ok {
		ps.usedOverride = true
		ps.overrideCalls = calls
		s.log("Override", ps.corrected.ToolName, fmt.Sprintf("replaced with %d call(s)", len(calls)))
	}
}

// 7. Expand — if a workflow was triggered, expand it through the Registry,
// applying the Adapter when adaptation is required.
func (s *Supervisor) stageExpand(ps *pipelineState) {
	if ps.triggeredName == "" {
		return
	}

	var dims *proportion.Dims
	if obj, ok := ps.ctx.ActiveObjectInfo(); ok {
		dims = &proportion.Dims{X: obj.Dimensions[0], Y: obj.Dimensions[1], Z: obj.Dimensions[2]}
	}

	result, err := s.deps.Registry.ExpandWorkflow(ps.triggeredName, ps.modifiers, ps.intercepted.Prompt, ps.ctx, dims, nil, s.deps.Config.MaxExpandedSteps)
	if err != nil {
		s.log("Expand", ps.intercepted.ToolName, fmt.Sprintf("expansion failed: %v", err))
		ps.triggeredName = ""
		return
	}

	calls := result.Calls
	if ps.triggerConf != workflow.ConfidenceHigh {
		calls = workflow.AdaptSteps(calls, ps.triggerConf, ps.intercepted.Prompt, s.similarity())
	}

	ps.expandedCalls = make([]callmodel.Corrected, 0, len(calls))
	for _, c := range calls {
		ps.expandedCalls = append(ps.expandedCalls, callmodel.Corrected{
			ToolName:           c.Tool,
			Params:             c.Params,
			CorrectionsApplied: []string{"workflow:" + ps.triggeredName},
			IsInjected:         true,
		})
	}
	s.log("Expand", ps.intercepted.ToolName, fmt.Sprintf("expanded %q into %d call(s)", ps.triggeredName, len(ps.expandedCalls)))

	s.session.pendingWorkflow = ""
}

// 8. Build — pre_steps + (override_tools | expanded_tools | [corrected_call]).
func (s *Supervisor) stageBuild(ps *pipelineState) {
	var body []callmodel.Corrected
	switch {
	case ps.triggeredName != "":
		body = ps.expandedCalls
	case ps.usedOverride:
		body = ps.overrideCalls
	default:
		body = []callmodel.Corrected{ps.corrected}
	}
	ps.built = append(append([]callmodel.Corrected{}, ps.preSteps...), body...)
}

// 9. Firewall — validate each entry in order, simulated-context-aware.
// firewall.Run already returns one Result per call it reached (stopping
// short on a BLOCK), indexed against the original ps.built; this stage
// rebuilds the final ordered list from those results rather than mutating
// ps.built in place, since splicing AUTO_FIX pre-steps into the same slice
// the result indices were computed against would desync them.
func (s *Supervisor) stageFirewall(ps *pipelineState) {
	results := firewall.Run(s.deps.FirewallRules, ps.built, ps.ctx)
	ps.firewall = results

	out := make([]callmodel.Corrected, 0, len(ps.built))
	for i, r := range results {
		if !r.Allowed {
			ps.blocked = true
			ps.blockMessage = r.Message
			s.log("Firewall", ps.built[i].ToolName, fmt.Sprintf("BLOCKED: %s", r.Message))
			ps.built = out
			return
		}
		out = append(out, r.PreSteps...)
		call := ps.built[i]
		if r.ModifiedCall != nil {
			call = *r.ModifiedCall
		}
		out = append(out, call)
	}
	ps.built = out
	s.log("Firewall", ps.intercepted.ToolName, fmt.Sprintf("%d call(s) allowed", len(ps.built)))
}

// 10. Emit — convert to {tool, params} and update statistics.
func (s *Supervisor) stageEmit(ps *pipelineState) {
	if ps.blocked {
		s.deps.Telemetry.Count("blocked")
		return
	}
	ps.emitted = make([]callmodel.Emitted, 0, len(ps.built))
	for _, c := range ps.built {
		ps.emitted = append(ps.emitted, c.ToEmitted())
	}
	s.plans.set(s.sessionID, ps.emitted)
	s.deps.Telemetry.Count("emitted")
	s.log("Emit", ps.intercepted.ToolName, fmt.Sprintf("%d call(s) emitted", len(ps.emitted)))
}

// similarity adapts the injected Embedder/SimilarityFunc pair into the
// string-to-string form workflow.AdaptSteps expects.
func (s *Supervisor) similarity() workflow.Similarity {
	if s.deps.Embedder == nil || s.deps.Similarity == nil {
		return nil
	}
	return func(a, b string) float64 {
		av, ok := s.deps.Embedder.Embed(a)
		if !ok {
			return 0
		}
		bv, ok := s.deps.Embedder.Embed(b)
		if !ok {
			return 0
		}
		return s.deps.Similarity(av, bv)
	}
}
