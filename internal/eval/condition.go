package eval

import (
	"strings"

	"github.com/pocketomega/router-supervisor/internal/value"
)

// Condition evaluates expr as a boolean gate with the fail-open semantics
// workflows depend on (spec §4.1): an empty, unparsable, or otherwise
// unevaluatable expression never blocks a step — it defaults to true so
// workflows keep executing in unexpected scene states. The sole carve-out
// is the literal pattern "not <name>" where <name> is absent from ctx: the
// missing name is treated as true, so the negation is false.
func Condition(expr string, ctx value.Map) bool {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return true
	}

	n, err := Parse(expr)
	if err != nil {
		return true
	}

	v, err := evalNode(n, ctx)
	if err == nil {
		return v.Truthy()
	}

	if u, ok := n.(unaryExpr); ok && u.op == "not" {
		if nr, ok := u.x.(nameRef); ok {
			if _, present := ctx[nr.name]; !present {
				return false // unknown name treated as true, negated
			}
		}
	}

	return true
}
