package eval

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/value"
)

func TestFlattenDimensions(t *testing.T) {
	ctx := value.Map{"dimensions": value.Vector([]float64{2, 5, 3})}
	out := FlattenDimensions(ctx)

	if got := out["width"].Num(); got != 2 {
		t.Errorf("width = %v, want 2", got)
	}
	if got := out["height"].Num(); got != 5 {
		t.Errorf("height = %v, want 5", got)
	}
	if got := out["depth"].Num(); got != 3 {
		t.Errorf("depth = %v, want 3", got)
	}
	if got := out["min_dim"].Num(); got != 2 {
		t.Errorf("min_dim = %v, want 2", got)
	}
	if got := out["max_dim"].Num(); got != 5 {
		t.Errorf("max_dim = %v, want 5", got)
	}
	if _, exists := ctx["width"]; exists {
		t.Error("FlattenDimensions must not mutate its input")
	}
}

func TestFlattenDimensions_NonVectorIsNoop(t *testing.T) {
	ctx := value.Map{"dimensions": value.String("not a vector")}
	out := FlattenDimensions(ctx)
	if _, exists := out["width"]; exists {
		t.Error("expected no width binding for a non-vector dimensions entry")
	}
}

func TestFlattenProportions(t *testing.T) {
	ctx := value.Map{"mode": value.String("OBJECT")}
	proportions := value.Map{
		"is_flat":       value.Bool(true),
		"dominant_axis": value.String("x"),
	}
	out := FlattenProportions(ctx, proportions)

	if got := out["proportions_is_flat"]; !got.BoolVal() {
		t.Error("expected proportions_is_flat to be true")
	}
	if got := out["proportions_dominant_axis"].Str(); got != "x" {
		t.Errorf("proportions_dominant_axis = %q, want %q", got, "x")
	}
	if out["mode"].Str() != "OBJECT" {
		t.Error("FlattenProportions must preserve existing context entries")
	}
}

func TestFlattenProportions_EmptyIsNoop(t *testing.T) {
	ctx := value.Map{"mode": value.String("OBJECT")}
	out := FlattenProportions(ctx, nil)
	if len(out) != 1 {
		t.Errorf("expected no new bindings, got %+v", out)
	}
}
