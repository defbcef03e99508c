// Package workflow implements the YAML-defined workflow expansion engine
// (spec §4.3, §4.4, §4.5, §4.11): typed workflow records, loop expansion,
// the canonical registry pipeline, and confidence-based step adaptation.
package workflow

// LoopVar is one variable bound by a step's loop clause. Exactly one of
// RangeExpr / Values is set.
type LoopVar struct {
	Name      string
	RangeExpr *[2]string // inclusive [start, end] expressions
	Values    []any      // literal sequence form
}

// Loop describes a step-level loop (spec §3, §4.3). Vars are iterated in
// natural order — the first entry is the outermost (slowest-advancing)
// index, matching nested-loop semantics.
type Loop struct {
	Vars  []LoopVar
	Group string // non-empty groups interleave with the following step
}

// OnFailure enumerates what happens when a step's underlying tool call
// fails at the external runner (the core only carries the declaration —
// enforcement happens outside the core, per spec §5).
type OnFailure string

const (
	OnFailureSkip     OnFailure = "skip"
	OnFailureAbort    OnFailure = "abort"
	OnFailureContinue OnFailure = "continue"
)

// Step is one entry in a Workflow Definition's step list (spec §3).
// Params holds literal or expression-string values, resolved during
// expansion (resolve.go). Extras carries every unknown boolean field the
// YAML declared — these become semantic parameters for the Adapter
// (spec §4.11, Design Notes "Open schema on steps"). Unrecognized keys
// whose values are not booleans are not kept.
type Step struct {
	Tool              string
	Params            map[string]any
	ID                string
	Description       string
	Condition         string
	Loop              *Loop
	Optional          bool
	DisableAdaptation bool
	Tags              []string
	DependsOn         []string
	Timeout           string
	MaxRetries        int
	RetryDelay        string
	OnFailure         OnFailure
	Priority          int
	Extras            map[string]bool
}

// IsCore reports whether a step is a core step (spec glossary): not
// optional, or optional but opted out of adaptation.
func (s Step) IsCore() bool { return !s.Optional || s.DisableAdaptation }

// ParameterSchema describes one workflow parameter (spec §3).
type ParameterSchema struct {
	Type          string // "float" | "int" | "string" | "bool"
	Default       any
	HasDefault    bool
	Range         *[2]float64
	Enum          []string
	Description   string
	SemanticHints []string
	Group         string
	Computed      string // non-empty = computed parameter
	DependsOn     []string
}

// IsComputed reports whether this parameter is derived from others.
func (p ParameterSchema) IsComputed() bool { return p.Computed != "" }

// Modifier is a phrase-keyed override of workflow variables (spec §3).
type Modifier struct {
	Overrides       map[string]any
	NegativeSignals []string
}

// Def is a parsed, validated Workflow Definition (spec §3).
type Def struct {
	Name            string
	Description     string
	Category        string
	TriggerPattern  string
	TriggerKeywords []string
	SamplePrompts   []string
	Defaults        map[string]any
	Modifiers       map[string]Modifier
	Parameters      map[string]ParameterSchema
	Steps           []Step
}
