// Package override implements the Override Engine (spec §4.9): a small
// rule table that replaces a single tool call with a short fixed sequence
// of alternative calls when a (trigger_tool, trigger_pattern) rule fires.
package override

import (
	"strings"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
)

// Replacement is one tool in a rule's expansion. InheritParams names
// original-call params to copy verbatim before StaticParams is applied;
// any string value in StaticParams of the form "$name" is substituted from
// the original call's params at resolve time (spec §4.9).
type Replacement struct {
	Tool           string
	StaticParams   map[string]any
	InheritParams  []string
}

// Rule fires for calls to Tool when the currently detected pattern equals
// Pattern, or for any pattern when Pattern is empty ("unconstrained",
// spec §4.9).
type Rule struct {
	Tool         string
	Pattern      string
	Replacements []Replacement
}

// Engine holds the rule table, keyed by trigger tool since a tool may have
// several rules gated by different patterns.
type Engine struct {
	rules map[string][]Rule
}

// NewEngine builds an Engine from a flat rule list.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{rules: make(map[string][]Rule)}
	for _, r := range rules {
		e.rules[r.Tool] = append(e.rules[r.Tool], r)
	}
	return e
}

// Resolve returns the expanded replacement calls for toolName given the
// original params and the currently detected pattern name (""  if none).
// ok is false when no rule fired, in which case callers fall through to
// normal correction/expansion for this call site.
func (e *Engine) Resolve(toolName string, params map[string]any, pattern string) ([]callmodel.Corrected, bool) {
	for _, rule := range e.rules[toolName] {
		if rule.Pattern != "" && rule.Pattern != pattern {
			continue
		}
		return expand(rule, toolName, params), true
	}
	return nil, false
}

func expand(rule Rule, originalTool string, originalParams map[string]any) []callmodel.Corrected {
	out := make([]callmodel.Corrected, 0, len(rule.Replacements))
	for _, repl := range rule.Replacements {
		params := make(map[string]any, len(repl.InheritParams)+len(repl.StaticParams))
		for _, name := range repl.InheritParams {
			if v, ok := originalParams[name]; ok {
				params[name] = v
			}
		}
		for k, v := range repl.StaticParams {
			params[k] = resolveValue(v, originalParams)
		}
		out = append(out, callmodel.Corrected{
			ToolName:           repl.Tool,
			Params:             params,
			OriginalToolName:   originalTool,
			OriginalParams:     originalParams,
			CorrectionsApplied: []string{"override:" + originalTool},
			IsInjected:         repl.Tool != originalTool,
		})
	}
	return out
}

// resolveValue substitutes a bare "$name" string with originalParams[name];
// any other value (including strings that merely contain a "$") passes
// through unchanged.
func resolveValue(v any, originalParams map[string]any) any {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$") {
		return v
	}
	name := strings.TrimPrefix(s, "$")
	if resolved, ok := originalParams[name]; ok {
		return resolved
	}
	return v
}
