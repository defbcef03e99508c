package firewall

import (
	"path/filepath"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Run validates calls in order against rules, threading a simulated scene
// context between them (spec §4.10). It returns one Result per call that
// was reached; a BLOCK stops processing immediately, so the returned slice
// may be shorter than calls. The simulator starts from base and advances
// after every non-blocked call using its (possibly firewall-modified)
// params.
func Run(rules []Rule, calls []callmodel.Corrected, base scenectx.SceneContext) []Result {
	sim := workflow.NewSimulator(base)
	results := make([]Result, 0, len(calls))

	for _, call := range calls {
		result := evaluate(rules, call, sim.Context())
		results = append(results, result)
		if !result.Allowed {
			break
		}
		effective := call
		if result.ModifiedCall != nil {
			effective = *result.ModifiedCall
		}
		sim.Apply(effective.ToolName, effective.Params)
	}
	return results
}

// evaluate runs every matching rule against one call, applying the first
// BLOCK or AUTO_FIX it finds and accumulating MODIFY clamps from all rules
// that match (spec §4.10 names no explicit priority between simultaneous
// MODIFY rules, so they all apply, in declaration order).
func evaluate(rules []Rule, call callmodel.Corrected, ctx scenectx.SceneContext) Result {
	result := Result{Action: ActionAllow, Allowed: true}
	modified := call

	for _, rule := range rules {
		ok, err := matches(rule.ToolPattern, call.ToolName)
		if err != nil || !ok {
			continue
		}
		if rule.Check != nil && !rule.Check(modified, ctx) {
			continue
		}

		switch rule.Action {
		case ActionAllow:
			// no effect

		case ActionBlock:
			result.Action = ActionBlock
			result.Allowed = false
			result.Message = rule.Message
			result.Violations = append(result.Violations, Violation{Rule: rule.Name, Action: ActionBlock, Message: rule.Message})
			return result

		case ActionModify:
			for name, limit := range rule.Limits {
				ceiling, ok := limit(ctx)
				if !ok {
					continue
				}
				if v, ok := toFloat(modified.Params[name]); ok && v > ceiling {
					modified = modified.WithCorrection("firewall_modify:" + name)
					if modified.Params == nil {
						modified.Params = map[string]any{}
					} else {
						modified.Params = cloneParams(modified.Params)
					}
					modified.Params[name] = ceiling
				}
			}
			result.Action = ActionModify
			result.Violations = append(result.Violations, Violation{Rule: rule.Name, Action: ActionModify, Message: rule.Message})

		case ActionAutoFix:
			if rule.PreSteps != nil {
				result.PreSteps = append(result.PreSteps, rule.PreSteps(modified, ctx)...)
			}
			result.Action = ActionAutoFix
			modified = modified.WithCorrection("firewall_auto_fix:" + rule.Name)
			result.Violations = append(result.Violations, Violation{Rule: rule.Name, Action: ActionAutoFix, Message: rule.Message})
		}
	}

	if result.Action != ActionAllow {
		mc := modified
		result.ModifiedCall = &mc
	}
	return result
}

func matches(pattern, name string) (bool, error) {
	if pattern == "" || pattern == "*" {
		return true, nil
	}
	return filepath.Match(pattern, name)
}

func cloneParams(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
