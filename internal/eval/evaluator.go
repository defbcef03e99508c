// Package eval implements the safe expression/condition evaluator shared by
// the workflow expansion engine and the condition gate (spec §4.1). It is a
// hand-rolled recursive-descent parser and tree-walking evaluator over a
// closed AST — no node kind exists that could reach host eval, dynamic
// import, or attribute/subscript access, so there is nothing to sandbox at
// call time beyond "only evaluate what Parse returned".
package eval

import (
	"fmt"
	"math"

	"github.com/pocketomega/router-supervisor/internal/value"
)

// Evaluate parses and evaluates expr against ctx, returning a Value.
func Evaluate(expr string, ctx value.Map) (value.Value, error) {
	n, err := Parse(expr)
	if err != nil {
		return value.Value{}, err
	}
	return evalNode(n, ctx)
}

// EvaluateAsBool evaluates expr and coerces the result to bool using
// numeric truthiness. Errors propagate — this is the non-fail-open form;
// Condition (condition.go) wraps this with fail-open semantics.
func EvaluateAsBool(expr string, ctx value.Map) (bool, error) {
	v, err := Evaluate(expr, ctx)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// EvaluateAsFloat evaluates expr and coerces the result to float64.
// Truthy non-numeric values coerce to 1/0; errors propagate.
func EvaluateAsFloat(expr string, ctx value.Map) (float64, error) {
	v, err := Evaluate(expr, ctx)
	if err != nil {
		return 0, err
	}
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	if v.Truthy() {
		return 1, nil
	}
	return 0, nil
}

// EvaluateSafe evaluates expr and swallows any error, returning def instead.
func EvaluateSafe(expr string, ctx value.Map, def value.Value) value.Value {
	v, err := Evaluate(expr, ctx)
	if err != nil {
		return def
	}
	return v
}

func evalNode(n node, ctx value.Map) (value.Value, error) {
	switch t := n.(type) {
	case numberLit:
		return value.Number(t.v), nil
	case stringLit:
		return value.String(t.v), nil
	case boolLit:
		return value.Bool(t.v), nil
	case nameRef:
		v, ok := ctx[t.name]
		if !ok {
			return value.Value{}, fmt.Errorf("eval: unknown name %q", t.name)
		}
		return v, nil
	case unaryExpr:
		return evalUnary(t, ctx)
	case binaryExpr:
		return evalBinary(t, ctx)
	case compareExpr:
		return evalCompare(t, ctx)
	case boolOp:
		return evalBoolOp(t, ctx)
	case ternary:
		cv, err := evalNode(t.cond, ctx)
		if err != nil {
			return value.Value{}, err
		}
		if cv.Truthy() {
			return evalNode(t.then, ctx)
		}
		return evalNode(t.els, ctx)
	case callExpr:
		return evalCall(t, ctx)
	}
	return value.Value{}, fmt.Errorf("eval: blocked or unknown AST node %T", n)
}

func evalUnary(t unaryExpr, ctx value.Map) (value.Value, error) {
	xv, err := evalNode(t.x, ctx)
	if err != nil {
		return value.Value{}, err
	}
	switch t.op {
	case "not":
		return value.Bool(!xv.Truthy()), nil
	case "+":
		f, ok := xv.AsFloat()
		if !ok {
			return value.Value{}, fmt.Errorf("eval: unary + requires a number")
		}
		return value.Number(f), nil
	case "-":
		f, ok := xv.AsFloat()
		if !ok {
			return value.Value{}, fmt.Errorf("eval: unary - requires a number")
		}
		return value.Number(-f), nil
	}
	return value.Value{}, fmt.Errorf("eval: unknown unary operator %q", t.op)
}

func evalBinary(t binaryExpr, ctx value.Map) (value.Value, error) {
	lv, err := evalNode(t.l, ctx)
	if err != nil {
		return value.Value{}, err
	}
	rv, err := evalNode(t.r, ctx)
	if err != nil {
		return value.Value{}, err
	}

	if t.op == "+" && lv.IsString() && rv.IsString() {
		return value.String(lv.Str() + rv.Str()), nil
	}

	lf, lok := lv.AsFloat()
	rf, rok := rv.AsFloat()
	if !lok || !rok {
		return value.Value{}, fmt.Errorf("eval: operator %q requires numeric operands", t.op)
	}

	switch t.op {
	case "+":
		return value.Number(lf + rf), nil
	case "-":
		return value.Number(lf - rf), nil
	case "*":
		return value.Number(lf * rf), nil
	case "/":
		if rf == 0 {
			return value.Value{}, fmt.Errorf("eval: division by zero")
		}
		return value.Number(lf / rf), nil
	case "//":
		if rf == 0 {
			return value.Value{}, fmt.Errorf("eval: division by zero")
		}
		return value.Number(math.Floor(lf / rf)), nil
	case "%":
		if rf == 0 {
			return value.Value{}, fmt.Errorf("eval: division by zero")
		}
		return value.Number(math.Mod(lf, rf)), nil
	case "**":
		return value.Number(math.Pow(lf, rf)), nil
	}
	return value.Value{}, fmt.Errorf("eval: unknown binary operator %q", t.op)
}

func evalCompare(t compareExpr, ctx value.Map) (value.Value, error) {
	vals := make([]value.Value, len(t.operands))
	for i, o := range t.operands {
		v, err := evalNode(o, ctx)
		if err != nil {
			return value.Value{}, err
		}
		vals[i] = v
	}
	for i, op := range t.ops {
		ok, err := compareOne(vals[i], op, vals[i+1])
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func compareOne(l value.Value, op string, r value.Value) (bool, error) {
	switch op {
	case "==":
		return l.Equal(r), nil
	case "!=":
		return !l.Equal(r), nil
	}
	// Ordering comparisons: numeric or lexicographic string.
	if l.IsString() && r.IsString() {
		switch op {
		case "<":
			return l.Str() < r.Str(), nil
		case "<=":
			return l.Str() <= r.Str(), nil
		case ">":
			return l.Str() > r.Str(), nil
		case ">=":
			return l.Str() >= r.Str(), nil
		}
	}
	lf, lok := l.AsFloat()
	rf, rok := r.AsFloat()
	if !lok || !rok {
		return false, fmt.Errorf("eval: operator %q requires comparable operands", op)
	}
	switch op {
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return false, fmt.Errorf("eval: unknown comparison operator %q", op)
}

func evalBoolOp(t boolOp, ctx value.Map) (value.Value, error) {
	var last value.Value
	for _, part := range t.parts {
		v, err := evalNode(part, ctx)
		if err != nil {
			return value.Value{}, err
		}
		last = v
		if t.op == "or" && v.Truthy() {
			return v, nil
		}
		if t.op == "and" && !v.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func evalCall(t callExpr, ctx value.Map) (value.Value, error) {
	if !allowedFuncs[t.fn] {
		return value.Value{}, fmt.Errorf("eval: call to disallowed function %q", t.fn)
	}
	args := make([]float64, len(t.args))
	for i, a := range t.args {
		av, err := evalNode(a, ctx)
		if err != nil {
			return value.Value{}, err
		}
		f, ok := av.AsFloat()
		if !ok {
			return value.Value{}, fmt.Errorf("eval: %s() requires numeric arguments", t.fn)
		}
		args[i] = f
	}
	return callBuiltin(t.fn, args)
}

func callBuiltin(name string, a []float64) (value.Value, error) {
	arity1 := func(f func(float64) float64) (value.Value, error) {
		if len(a) != 1 {
			return value.Value{}, fmt.Errorf("eval: %s() takes exactly 1 argument", name)
		}
		return value.Number(f(a[0])), nil
	}
	switch name {
	case "abs":
		return arity1(math.Abs)
	case "round":
		return arity1(math.Round)
	case "trunc":
		return arity1(math.Trunc)
	case "floor":
		return arity1(math.Floor)
	case "ceil":
		return arity1(math.Ceil)
	case "sqrt":
		return arity1(math.Sqrt)
	case "exp":
		return arity1(math.Exp)
	case "log":
		return arity1(math.Log)
	case "log10":
		return arity1(math.Log10)
	case "sin":
		return arity1(math.Sin)
	case "cos":
		return arity1(math.Cos)
	case "tan":
		return arity1(math.Tan)
	case "asin":
		return arity1(math.Asin)
	case "acos":
		return arity1(math.Acos)
	case "atan":
		return arity1(math.Atan)
	case "degrees":
		return arity1(func(r float64) float64 { return r * 180 / math.Pi })
	case "radians":
		return arity1(func(d float64) float64 { return d * math.Pi / 180 })
	case "min":
		if len(a) == 0 {
			return value.Value{}, fmt.Errorf("eval: min() requires at least 1 argument")
		}
		m := a[0]
		for _, v := range a[1:] {
			if v < m {
				m = v
			}
		}
		return value.Number(m), nil
	case "max":
		if len(a) == 0 {
			return value.Value{}, fmt.Errorf("eval: max() requires at least 1 argument")
		}
		m := a[0]
		for _, v := range a[1:] {
			if v > m {
				m = v
			}
		}
		return value.Number(m), nil
	case "pow":
		if len(a) != 2 {
			return value.Value{}, fmt.Errorf("eval: pow() takes exactly 2 arguments")
		}
		return value.Number(math.Pow(a[0], a[1])), nil
	case "atan2":
		if len(a) != 2 {
			return value.Value{}, fmt.Errorf("eval: atan2() takes exactly 2 arguments")
		}
		return value.Number(math.Atan2(a[0], a[1])), nil
	case "hypot":
		if len(a) != 2 {
			return value.Value{}, fmt.Errorf("eval: hypot() takes exactly 2 arguments")
		}
		return value.Number(math.Hypot(a[0], a[1])), nil
	}
	return value.Value{}, fmt.Errorf("eval: call to disallowed function %q", name)
}
