package router

import (
	"context"
	"fmt"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/core"
)

// requestState is the core.Node State for a single process_llm_tool_call
// invocation: the inputs Prep reads and the outputs Post writes back.
type requestState struct {
	toolName string
	params   map[string]any
	prompt   string

	emitted []callmodel.Emitted
	err     error
}

// pipelinePrep is the single work item callNode.Exec receives; the
// pipeline has no batching, so Prep always returns exactly one.
type pipelinePrep struct {
	toolName string
	params   map[string]any
	prompt   string
}

type pipelineExecResult struct {
	ps pipelineState
}

// callNode adapts the ten-stage pipeline to the teacher's BaseNode
// lifecycle (spec §4.13's Supervisor pipeline, internal/core's
// Prep/Exec/Post shape): Prep captures the inbound call, Exec runs every
// stage, Post commits the result and signals success/failure for routing.
type callNode struct {
	sup *Supervisor
}

func (n *callNode) Prep(state *requestState) []pipelinePrep {
	return []pipelinePrep{{toolName: state.toolName, params: state.params, prompt: state.prompt}}
}

func (n *callNode) Exec(ctx context.Context, prep pipelinePrep) (pipelineExecResult, error) {
	ps := &pipelineState{
		intercepted: callmodel.Intercepted{
			ToolName:  prep.toolName,
			Params:    prep.params,
			Source:    callmodel.SourceLLM,
			Prompt:    prep.prompt,
			SessionID: n.sup.sessionID,
		},
	}
	n.sup.runPipeline(ctx, ps)
	return pipelineExecResult{ps: *ps}, nil
}

func (n *callNode) Post(state *requestState, _ []pipelinePrep, execResults ...pipelineExecResult) core.Action {
	if len(execResults) == 0 {
		state.err = fmt.Errorf("router: pipeline produced no result")
		return core.ActionFailure
	}
	ps := execResults[0].ps
	if ps.blocked {
		state.err = fmt.Errorf("router: firewall blocked the call: %s", ps.blockMessage)
		return core.ActionFailure
	}
	state.emitted = ps.emitted
	return core.ActionSuccess
}

// ExecFallback never needs to run in practice: stageFirewall's BLOCK path
// is reported as a normal Exec return, not an error. It exists to satisfy
// BaseNode and to surface a real failure if a stage ever panics-via-error
// in the future.
func (n *callNode) ExecFallback(err error) pipelineExecResult {
	return pipelineExecResult{ps: pipelineState{blocked: true, blockMessage: err.Error()}}
}
