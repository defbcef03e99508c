package ensemble

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

func picnicDef() workflow.Def {
	return workflow.Def{
		Name: "picnic_table",
		Modifiers: map[string]workflow.Modifier{
			"straight legs": {Overrides: map[string]any{"leg_angle_left": 0.0, "leg_angle_right": 0.0}},
			"round top":     {Overrides: map[string]any{"top_shape": "round"}, NegativeSignals: []string{"square"}},
		},
	}
}

func TestExtractModifiers_LiteralFallbackWhenNoEmbedder(t *testing.T) {
	overrides := ExtractModifiers(picnicDef(), "I want a picnic table with straight legs please", nil, nil, DefaultSimilarityCut)
	if overrides["leg_angle_left"] != 0.0 {
		t.Errorf("overrides = %+v, want straight legs overrides", overrides)
	}
}

func TestExtractModifiers_NegativeSignalBlocksPhrase(t *testing.T) {
	overrides := ExtractModifiers(picnicDef(), "a round but actually square top please", nil, nil, DefaultSimilarityCut)
	if len(overrides) != 0 {
		t.Errorf("overrides = %+v, want empty: negative signal 'square' should block 'round top'", overrides)
	}
}

func TestExtractModifiers_NoModifiersDeclaredReturnsEmpty(t *testing.T) {
	overrides := ExtractModifiers(workflow.Def{Name: "x"}, "anything", nil, nil, DefaultSimilarityCut)
	if len(overrides) != 0 {
		t.Errorf("overrides = %+v, want empty map", overrides)
	}
}

func TestExtractModifiers_EmbeddingPathPicksBestScoringPair(t *testing.T) {
	def := picnicDef()
	embed := fakeEmbedder{vectors: map[string][]float64{
		"straight legs":                           {1, 0},
		"round top":                                {0, 1},
		"legs":                                     {1, 0},
		"straight":                                 {0.9, 0.1},
		"table":                                    {0, 0.1},
	}}
	overrides := ExtractModifiers(def, "straight legs table", embed, dotSimilarity, 0.5)
	if overrides["leg_angle_left"] != 0.0 {
		t.Errorf("overrides = %+v, want straight legs overrides via embedding match", overrides)
	}
}

func TestNGrams_CoversLengthsOneToThree(t *testing.T) {
	grams := nGrams("a b c", 1, 3)
	want := []string{"a", "b", "c", "a b", "b c", "a b c"}
	if len(grams) != len(want) {
		t.Fatalf("nGrams = %v, want %v", grams, want)
	}
	for i, g := range want {
		if grams[i] != g {
			t.Errorf("nGrams[%d] = %q, want %q", i, grams[i], g)
		}
	}
}
