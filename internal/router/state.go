// Package router implements the Supervisor (spec §4.13): the ten-stage
// process_llm_tool_call pipeline and the goal-setting side channel that
// feeds it a pending workflow.
package router

import (
	"time"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/config"
	"github.com/pocketomega/router-supervisor/internal/ensemble"
	"github.com/pocketomega/router-supervisor/internal/firewall"
	"github.com/pocketomega/router-supervisor/internal/override"
	"github.com/pocketomega/router-supervisor/internal/patterndet"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/telemetry"
	"github.com/pocketomega/router-supervisor/internal/toolmeta"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Deps are the collaborators a Supervisor needs; all are read-mostly after
// load and may be shared across Supervisor instances (spec §5).
type Deps struct {
	ToolStore      *toolmeta.Store
	Registry       *workflow.Registry
	Analyzer       *scenectx.Analyzer
	OverrideEngine *override.Engine
	FirewallRules  []firewall.Rule
	Embedder       ensemble.Embedder
	Similarity     ensemble.SimilarityFunc
	Config         config.Configuration
	Telemetry      *telemetry.Logger
	Now            func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// sessionState is the Supervisor's per-session state (spec §3): it is
// mutated only from within a single Supervisor's own calls, never shared.
type sessionState struct {
	lastContext        *scenectx.SceneContext
	lastPattern        *patterndet.Detected
	pendingWorkflow    string
	pendingModifiers   map[string]any
	lastEnsembleResult *ensemble.Result
}

// pipelineState is the working state threaded through the ten pipeline
// stages for a single process_llm_tool_call invocation.
type pipelineState struct {
	intercepted callmodel.Intercepted

	ctx           scenectx.SceneContext
	pattern       patterndet.Detected
	patternOK     bool
	corrected     callmodel.Corrected
	preSteps      []callmodel.Corrected
	triggeredName string
	triggerConf   workflow.Confidence
	modifiers     map[string]any
	usedOverride  bool
	overrideCalls []callmodel.Corrected
	expandedCalls []callmodel.Corrected
	built         []callmodel.Corrected
	firewall      []firewall.Result
	emitted       []callmodel.Emitted
	blocked       bool
	blockMessage  string
}
