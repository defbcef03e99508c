// Package firewall implements the Error Firewall (spec §4.10): every call
// about to be emitted is validated against an ordered rule table, with a
// simulated scene context threaded between calls so later rules see the
// effects of earlier ones.
package firewall

import (
	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
)

// Action is a rule's disposition toward a matching call (spec §4.10).
type Action string

const (
	ActionAllow   Action = "ALLOW"
	ActionBlock   Action = "BLOCK"
	ActionModify  Action = "MODIFY"
	ActionAutoFix Action = "AUTO_FIX"
)

// Violation records a single rule firing against a call.
type Violation struct {
	Rule    string
	Action  Action
	Message string
}

// Result is one call's Firewall Result (spec §3).
type Result struct {
	Action       Action
	Allowed      bool
	Violations   []Violation
	ModifiedCall *callmodel.Corrected
	PreSteps     []callmodel.Corrected
	Message      string
}

// CheckFunc reports whether a rule's condition holds against call in ctx.
// A nil CheckFunc is an unconstrained rule that always fires.
type CheckFunc func(call callmodel.Corrected, ctx scenectx.SceneContext) bool

// ParamLimit resolves the clamp ceiling for a MODIFY rule's bounded
// parameter, given the simulated context at the time the rule fires.
type ParamLimit func(ctx scenectx.SceneContext) (float64, bool)

// PreStepBuilder produces the AUTO_FIX pre-steps for a call, given the
// simulated context at the time the rule fires.
type PreStepBuilder func(call callmodel.Corrected, ctx scenectx.SceneContext) []callmodel.Corrected

// Rule is one Error Firewall rule (spec §4.10).
type Rule struct {
	Name        string
	ToolPattern string // glob, matched against call.ToolName
	Check       CheckFunc
	Action      Action
	Message     string

	// MODIFY: parameter name -> ceiling resolver. The parameter is clamped
	// down to the resolved limit when it exceeds it.
	Limits map[string]ParamLimit

	// AUTO_FIX: builds the pre-steps to prepend before the call.
	PreSteps PreStepBuilder
}
