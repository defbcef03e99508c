package firewall

import (
	"strconv"
	"strings"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
)

// ParseCondition compiles one condition-DSL string (spec §4.10) into a
// CheckFunc. The grammar is intentionally tiny and unrelated to the
// general expression evaluator in internal/eval: it has its own bareword
// keywords ("no_selection", "no_objects") and a "param:NAME" subject form
// the general grammar has no notion of, so it gets its own minimal parser
// rather than forcing those shapes through the AST evaluator.
//
// Recognized forms: "", "mode == X", "no_selection", "no_objects",
// "param:NAME OP VALUE", "param:NAME > dimension_ratio:FACTOR".
func ParseCondition(expr string) (CheckFunc, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if expr == "no_selection" {
		return func(_ callmodel.Corrected, ctx scenectx.SceneContext) bool { return !ctx.HasSelection() }, nil
	}
	if expr == "no_objects" {
		return func(_ callmodel.Corrected, ctx scenectx.SceneContext) bool { return len(ctx.Objects) == 0 }, nil
	}

	tokens := strings.Fields(expr)
	if len(tokens) != 3 {
		return nil, &ParseError{Expr: expr, Reason: "expected 1 or 3 tokens"}
	}
	subject, op, value := tokens[0], tokens[1], tokens[2]

	if subject == "mode" {
		want := value
		switch op {
		case "==":
			return func(_ callmodel.Corrected, ctx scenectx.SceneContext) bool { return string(ctx.Mode) == want }, nil
		case "!=":
			return func(_ callmodel.Corrected, ctx scenectx.SceneContext) bool { return string(ctx.Mode) != want }, nil
		default:
			return nil, &ParseError{Expr: expr, Reason: "unsupported mode operator " + op}
		}
	}

	if strings.HasPrefix(subject, "param:") {
		name := strings.TrimPrefix(subject, "param:")
		if strings.HasPrefix(value, "dimension_ratio:") {
			factorStr := strings.TrimPrefix(value, "dimension_ratio:")
			factor, err := strconv.ParseFloat(factorStr, 64)
			if err != nil {
				return nil, &ParseError{Expr: expr, Reason: "bad dimension_ratio factor"}
			}
			return paramVsDimensionRatio(name, op, factor), nil
		}
		num, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &ParseError{Expr: expr, Reason: "bad numeric literal " + value}
		}
		return paramVsLiteral(name, op, num), nil
	}

	return nil, &ParseError{Expr: expr, Reason: "unrecognized subject " + subject}
}

func paramVsLiteral(name, op string, want float64) CheckFunc {
	return func(call callmodel.Corrected, _ scenectx.SceneContext) bool {
		got, ok := toFloat(call.Params[name])
		if !ok {
			return false
		}
		return compare(got, op, want)
	}
}

func paramVsDimensionRatio(name, op string, factor float64) CheckFunc {
	return func(call callmodel.Corrected, ctx scenectx.SceneContext) bool {
		got, ok := toFloat(call.Params[name])
		if !ok {
			return false
		}
		obj, ok := ctx.ActiveObjectInfo()
		if !ok {
			return false
		}
		limit := minOf3(obj.Dimensions[0], obj.Dimensions[1], obj.Dimensions[2]) * factor
		return compare(got, op, limit)
	}
}

func compare(got float64, op string, want float64) bool {
	switch op {
	case "==":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	case ">=":
		return got >= want
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// ParseError reports a malformed condition string.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string { return "firewall: bad condition " + strconv.Quote(e.Expr) + ": " + e.Reason }
