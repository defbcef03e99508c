package proportion

import "testing"

func TestResolve_ScalarFormula(t *testing.T) {
	dims := &Dims{X: 0.1, Y: 0.2, Z: 0.05}
	v, err := Resolve("$AUTO_BEVEL", dims)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.05 * 0.05 // min(dims) * 0.05
	if f, _ := v.AsFloat(); abs(f-want) > 1e-9 {
		t.Errorf("got %v, want %v", f, want)
	}
}

func TestResolve_VectorFormula(t *testing.T) {
	dims := &Dims{X: 1, Y: 2, Z: 3}
	v, err := Resolve("$AUTO_SCALE_SMALL", dims)
	if err != nil {
		t.Fatal(err)
	}
	got := v.VectorVal()
	want := []float64{0.8, 1.6, 2.4}
	for i := range want {
		if abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestResolve_FallbackWithoutDims(t *testing.T) {
	v, err := Resolve("$AUTO_BEVEL", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsString() || v.Str() != "$AUTO_BEVEL" {
		t.Errorf("expected literal fallback, got %v", v)
	}
}

func TestResolve_UnknownName(t *testing.T) {
	dims := &Dims{X: 1, Y: 1, Z: 1}
	if _, err := Resolve("$AUTO_NOPE", dims); err == nil {
		t.Errorf("expected error for unknown $AUTO_ name")
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
