package patterndet

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/scenectx"
)

func TestDetect_TowerLike(t *testing.T) {
	p := scenectx.DeriveProportions(1, 1, 10) // tall, thin tower
	d, ok := BestMatch(p, 0.5)
	if !ok || d.Type != TowerLike {
		t.Fatalf("expected TOWER_LIKE, got %+v (ok=%v)", d, ok)
	}
	if d.SuggestedWorkflow != "tower_workflow" {
		t.Errorf("unexpected suggested workflow %q", d.SuggestedWorkflow)
	}
}

func TestDetect_TableLike(t *testing.T) {
	p := scenectx.DeriveProportions(2, 1, 0.05)
	d, ok := BestMatch(p, 0.5)
	if !ok || d.Type != TableLike {
		t.Fatalf("expected TABLE_LIKE, got %+v (ok=%v)", d, ok)
	}
}

func TestDetect_NoMatchBelowThreshold(t *testing.T) {
	p := scenectx.DeriveProportions(1, 1, 1) // perfect cube isn't flat/tall/wide
	_, ok := BestMatch(p, 0.9)
	if ok {
		t.Errorf("expected no match above threshold 0.9")
	}
}

func TestIsConfident(t *testing.T) {
	d := Detected{Confidence: 0.71}
	if !d.IsConfident() {
		t.Errorf("0.71 should be confident")
	}
	d.Confidence = 0.7
	if d.IsConfident() {
		t.Errorf("0.7 should not be confident (strictly greater than)")
	}
}
