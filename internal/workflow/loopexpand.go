package workflow

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pocketomega/router-supervisor/internal/eval"
	"github.com/pocketomega/router-supervisor/internal/value"
)

// DefaultMaxExpandedSteps is the safety cap on loop expansion (spec §5).
const DefaultMaxExpandedSteps = 2000

// Expanded is one fully loop-expanded, interpolated step, ready for
// per-field $CALCULATE/$AUTO_/$name resolution (resolve.go).
type Expanded struct {
	Tool              string
	ID                string
	Description       string
	Condition         string
	Params            map[string]any
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
	LoopBindings      map[string]any
}

// ExpandSteps expands every loop in def's step list against vars, producing
// a flat, ordered list of Expanded steps. Consecutive steps that declare the
// same non-empty loop group interleave one iteration at a time instead of
// each running to completion before the next starts (spec §3, "group").
func ExpandSteps(steps []Step, vars value.Map, maxExpanded int) ([]Expanded, error) {
	if maxExpanded <= 0 {
		maxExpanded = DefaultMaxExpandedSteps
	}
	var out []Expanded
	for i := 0; i < len(steps); {
		s := steps[i]
		if s.Loop == nil {
			es, err := expandOne(s, nil)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, s.Tool, err)
			}
			out = append(out, es)
			i++
			continue
		}

		run := []Step{s}
		j := i + 1
		if s.Loop.Group != "" {
			for j < len(steps) && steps[j].Loop != nil && steps[j].Loop.Group == s.Loop.Group {
				run = append(run, steps[j])
				j++
			}
		}

		combos, err := combosFor(s.Loop.Vars, vars)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): loop: %w", i, s.Tool, err)
		}

		for _, combo := range combos {
			for _, st := range run {
				es, err := expandOne(st, combo)
				if err != nil {
					return nil, fmt.Errorf("step %d (%s): %w", i, st.Tool, err)
				}
				out = append(out, es)
				if len(out) > maxExpanded {
					return nil, fmt.Errorf("workflow: loop expansion exceeded max_expanded_steps (%d)", maxExpanded)
				}
			}
		}
		i = j
	}
	return out, nil
}

func combosFor(vars []LoopVar, ctx value.Map) ([]map[string]any, error) {
	if len(vars) == 0 {
		return []map[string]any{{}}, nil
	}
	values, err := loopVarValues(vars[0], ctx)
	if err != nil {
		return nil, err
	}
	rest, err := combosFor(vars[1:], ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(values)*len(rest))
	for _, v := range values {
		for _, r := range rest {
			combo := make(map[string]any, len(r)+1)
			combo[vars[0].Name] = v
			for k, rv := range r {
				combo[k] = rv
			}
			out = append(out, combo)
		}
	}
	return out, nil
}

func loopVarValues(lv LoopVar, ctx value.Map) ([]any, error) {
	if lv.RangeExpr != nil {
		start, err := eval.EvaluateAsFloat(lv.RangeExpr[0], ctx)
		if err != nil {
			return nil, fmt.Errorf("loop var %q: start: %w", lv.Name, err)
		}
		end, err := eval.EvaluateAsFloat(lv.RangeExpr[1], ctx)
		if err != nil {
			return nil, fmt.Errorf("loop var %q: end: %w", lv.Name, err)
		}
		lo, hi := int(math.Round(start)), int(math.Round(end))
		values := make([]any, 0, hi-lo+1)
		for x := lo; x <= hi; x++ {
			values = append(values, x)
		}
		return values, nil
	}
	if lv.Values != nil {
		return lv.Values, nil
	}
	return nil, fmt.Errorf("loop var %q declares neither range nor values", lv.Name)
}

func expandOne(s Step, bindings map[string]any) (Expanded, error) {
	interp := func(src string) (string, error) { return interpolate(src, bindings) }

	tool, err := interp(s.Tool)
	if err != nil {
		return Expanded{}, err
	}
	id, err := interp(s.ID)
	if err != nil {
		return Expanded{}, err
	}
	desc, err := interp(s.Description)
	if err != nil {
		return Expanded{}, err
	}
	cond, err := interp(s.Condition)
	if err != nil {
		return Expanded{}, err
	}

	var params map[string]any
	if s.Params != nil {
		rv, err := interpolateAny(s.Params, bindings)
		if err != nil {
			return Expanded{}, err
		}
		params = rv.(map[string]any)
	}

	dependsOn := make([]string, len(s.DependsOn))
	for i, d := range s.DependsOn {
		v, err := interp(d)
		if err != nil {
			return Expanded{}, err
		}
		dependsOn[i] = v
	}

	return Expanded{
		Tool:              tool,
		ID:                id,
		Description:       desc,
		Condition:         cond,
		Params:            params,
		Optional:          s.Optional,
		DisableAdaptation: s.DisableAdaptation,
		Tags:              s.Tags,
		DependsOn:         dependsOn,
		Timeout:           s.Timeout,
		MaxRetries:        s.MaxRetries,
		RetryDelay:        s.RetryDelay,
		OnFailure:         s.OnFailure,
		Priority:          s.Priority,
		Extras:            s.Extras,
		LoopBindings:      bindings,
	}, nil
}

// interpolate substitutes every {name} placeholder in src with the bound
// loop value, treating {{ and }} as escaped literal braces. An unresolved
// placeholder (unknown name) is an error — silently leaving "{i}" in an
// emitted tool call would be worse than failing the expansion (spec §3).
func interpolate(src string, bindings map[string]any) (string, error) {
	if src == "" || !strings.Contains(src, "{") {
		return src, nil
	}
	var b strings.Builder
	i := 0
	for i < len(src) {
		c := src[i]
		if c == '{' {
			if i+1 < len(src) && src[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("interpolate: unterminated placeholder in %q", src)
			}
			name := src[i+1 : i+end]
			v, ok := bindings[name]
			if !ok {
				return "", fmt.Errorf("interpolate: unresolved placeholder {%s}", name)
			}
			b.WriteString(formatLoopValue(v))
			i += end + 1
			continue
		}
		if c == '}' && i+1 < len(src) && src[i+1] == '}' {
			b.WriteByte('}')
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}

func formatLoopValue(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// interpolateAny walks a params value recursively, interpolating every
// string it finds inside strings, lists, and maps.
func interpolateAny(v any, bindings map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		return interpolate(t, bindings)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			rv, err := interpolateAny(val, bindings)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			rv, err := interpolateAny(val, bindings)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}
