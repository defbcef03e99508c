package ensemble

import (
	"strings"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Embedder is the injected "embed(text) -> vector" external collaborator
// (spec §6). The Ensemble Matcher never talks to a concrete embedding
// service directly; it depends on this interface so tests can supply a
// deterministic fake.
type Embedder interface {
	Embed(text string) ([]float64, bool)
}

// SimilarityFunc is the injected "similarity(vector_a, vector_b) -> number"
// external collaborator (spec §6), decoupled from any one vector math
// library.
type SimilarityFunc func(a, b []float64) float64

// SemanticMatch scores every definition by the similarity between an
// embedding of prompt and an embedding of the definition's aggregated text
// (name, description, sample prompts, trigger keywords). Returns nil when
// no embedder/similarity function was injected, since semantic matching has
// no literal fallback worth trusting.
func SemanticMatch(defs []workflow.Def, prompt string, embed Embedder, sim SimilarityFunc) []MatcherResult {
	if embed == nil || sim == nil {
		return nil
	}
	promptVec, ok := embed.Embed(prompt)
	if !ok {
		return nil
	}
	var out []MatcherResult
	for _, d := range defs {
		text := aggregateText(d)
		if text == "" {
			continue
		}
		defVec, ok := embed.Embed(text)
		if !ok {
			continue
		}
		score := sim(promptVec, defVec)
		if score <= 0 {
			continue
		}
		out = append(out, MatcherResult{
			MatcherName:  "semantic",
			WorkflowName: d.Name,
			Confidence:   score,
			Weight:       SemanticWeight,
		})
	}
	return out
}

func aggregateText(d workflow.Def) string {
	parts := make([]string, 0, 2+len(d.SamplePrompts)+len(d.TriggerKeywords))
	parts = append(parts, d.Name, d.Description)
	parts = append(parts, d.SamplePrompts...)
	parts = append(parts, d.TriggerKeywords...)
	return strings.TrimSpace(strings.Join(parts, " "))
}
