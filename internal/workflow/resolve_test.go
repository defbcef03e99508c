package workflow

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/proportion"
	"github.com/pocketomega/router-supervisor/internal/value"
)

func TestResolveValue_Calculate(t *testing.T) {
	vars := value.Map{"x": value.Number(4)}
	got, err := ResolveValue("$CALCULATE(x * 2)", vars, nil)
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != 8.0 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveValue_Auto(t *testing.T) {
	dims := &proportion.Dims{X: 1, Y: 2, Z: 4}
	got, err := ResolveValue("$AUTO_BEVEL", value.Map{}, dims)
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != 0.05 {
		t.Fatalf("got %v, want 0.05", got)
	}
}

func TestResolveValue_BareVariable(t *testing.T) {
	vars := value.Map{"leg_angle_left": value.Number(0)}
	got, err := ResolveValue("$leg_angle_left", vars, nil)
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != 0.0 {
		t.Fatalf("got %v", got)
	}
}

func TestResolveValue_UnresolvedVariableErrors(t *testing.T) {
	if _, err := ResolveValue("$missing", value.Map{}, nil); err == nil {
		t.Fatal("expected an error for an unresolved variable reference")
	}
}

func TestResolveValue_PlainStringPassesThrough(t *testing.T) {
	got, err := ResolveValue("Leg_FL", value.Map{}, nil)
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "Leg_FL" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveValue_RecursesIntoListsAndMaps(t *testing.T) {
	vars := value.Map{"x": value.Number(2)}
	raw := map[string]any{
		"rotation": []any{0, "$CALCULATE(x * 3)", 0},
		"nested":   map[string]any{"v": "$x"},
	}
	got, err := ResolveValue(raw, vars, nil)
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	m := got.(map[string]any)
	rotation := m["rotation"].([]any)
	if rotation[1] != 6.0 {
		t.Fatalf("got rotation=%v", rotation)
	}
	nested := m["nested"].(map[string]any)
	if nested["v"] != 2.0 {
		t.Fatalf("got nested=%v", nested)
	}
}
