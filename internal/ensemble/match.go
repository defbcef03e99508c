package ensemble

import (
	"github.com/pocketomega/router-supervisor/internal/patterndet"
	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Match runs all three matchers against the registry's definitions, picks a
// winner, and extracts its modifier overrides for prompt (spec §4.12). embed
// and sim may both be nil: the semantic matcher then contributes no votes
// and modifier extraction falls back to literal substring matching.
func Match(reg *workflow.Registry, prompt string, detected patterndet.Detected, detectedOK bool, embed Embedder, sim SimilarityFunc, modifierThreshold float64) Result {
	defs := reg.All()

	var votes []MatcherResult
	votes = append(votes, KeywordMatch(defs, prompt)...)
	votes = append(votes, SemanticMatch(defs, prompt, embed, sim)...)
	votes = append(votes, PatternMatch(detected, detectedOK, func(name string) bool {
		_, ok := reg.Get(name)
		return ok
	})...)

	result := Aggregate(votes)
	if result.WorkflowName == "" {
		return result
	}
	if def, ok := reg.Get(result.WorkflowName); ok {
		result.Modifiers = ExtractModifiers(def, prompt, embed, sim, modifierThreshold)
	}
	return result
}
