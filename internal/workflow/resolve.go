package workflow

import (
	"fmt"
	"strings"

	"github.com/pocketomega/router-supervisor/internal/eval"
	"github.com/pocketomega/router-supervisor/internal/proportion"
	"github.com/pocketomega/router-supervisor/internal/value"
)

// calculatePrefix/calculateSuffix mark a step-parameter literal as an
// expression to evaluate against the workflow's resolved variables
// (spec §4.4, §6): "$CALCULATE(expr)".
const (
	calculatePrefix = "$CALCULATE("
	calculateSuffix = ")"
)

// ResolveValue resolves one raw param value. The forms recognised, in
// priority order: "$CALCULATE(expr)" evaluates expr; "$AUTO_*" resolves a
// fixed proportion name against dims; "$name" looks up name directly in
// vars. Anything else (including non-string values) passes through
// unchanged. Lists and maps are resolved recursively so a workflow author
// can nest any of these forms inside a step's structured parameters.
func ResolveValue(raw any, vars value.Map, dims *proportion.Dims) (any, error) {
	switch t := raw.(type) {
	case string:
		return resolveString(t, vars, dims)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			rv, err := ResolveValue(v, vars, dims)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			rv, err := ResolveValue(v, vars, dims)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = rv
		}
		return out, nil
	default:
		return raw, nil
	}
}

func resolveString(s string, vars value.Map, dims *proportion.Dims) (any, error) {
	switch {
	case strings.HasPrefix(s, calculatePrefix) && strings.HasSuffix(s, calculateSuffix):
		expr := strings.TrimSuffix(strings.TrimPrefix(s, calculatePrefix), calculateSuffix)
		v, err := eval.Evaluate(expr, vars)
		if err != nil {
			return nil, fmt.Errorf("$CALCULATE %q: %w", expr, err)
		}
		return v.ToAny(), nil

	case proportion.IsAuto(s):
		v, err := proportion.Resolve(s, dims)
		if err != nil {
			return nil, err
		}
		return v.ToAny(), nil

	case strings.HasPrefix(s, "$") && isBareVarRef(s):
		name := s[1:]
		v, ok := vars[name]
		if !ok {
			return nil, fmt.Errorf("unresolved variable reference %q", s)
		}
		return v.ToAny(), nil

	default:
		return s, nil
	}
}

// isBareVarRef reports whether s (after its leading '$') is a single
// identifier, as opposed to a longer expression that happens to start with
// '$' — those are left alone so stray literal dollar-strings never fail a
// workflow the author never meant to templatize.
func isBareVarRef(s string) bool {
	name := s[1:]
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
