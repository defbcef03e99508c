package eval

import (
	"fmt"
	"sort"

	"github.com/pocketomega/router-supervisor/internal/value"
)

// Computed describes a single computed-parameter declaration: Name is
// bound to the result of evaluating Expr once every entry in DependsOn has
// been resolved (either a base variable or another Computed entry).
type Computed struct {
	Name      string
	Expr      string
	DependsOn []string
}

// ResolveComputed topologically sorts decl by DependsOn and evaluates each
// expression in order, with prior results visible in scope (spec §4.1,
// resolve_computed_parameters). base supplies the non-computed variables.
// Returns an error on a dependency cycle, an undeclared dependency, or any
// expression evaluation failure — computed-parameter resolution is not
// fail-open (only Condition is).
func ResolveComputed(base value.Map, decl []Computed) (value.Map, error) {
	byName := make(map[string]Computed, len(decl))
	for _, c := range decl {
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("eval: computed parameter %q declared more than once", c.Name)
		}
		byName[c.Name] = c
	}

	order, err := topoSort(byName, base)
	if err != nil {
		return nil, err
	}

	out := base.Clone()
	for _, name := range order {
		c := byName[name]
		v, err := Evaluate(c.Expr, out)
		if err != nil {
			return nil, fmt.Errorf("eval: computed parameter %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// topoSort returns computed-parameter names in dependency order using
// recursive depth-first search with a recursion-stack cycle check.
func topoSort(byName map[string]Computed, base value.Map) ([]string, error) {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS stack
		black = 2 // fully resolved
	)
	color := make(map[string]int, len(byName))
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		c, isComputed := byName[name]
		if !isComputed {
			if _, ok := base[name]; ok {
				return nil // base variable, not a graph node
			}
			return fmt.Errorf("eval: computed parameter depends on undeclared name %q", name)
		}
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("eval: cyclic computed-parameter dependency involving %q", name)
		}
		color[name] = gray
		for _, dep := range c.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, name)
		return nil
	}

	// Stable iteration order for determinism regardless of map ordering.
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}
