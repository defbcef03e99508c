package ensemble

import (
	"strings"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// KeywordMatch scans every definition's trigger_keywords for substring hits
// against prompt; confidence is hit density (hits / total keywords), capped
// at 1 (spec §4.12).
func KeywordMatch(defs []workflow.Def, prompt string) []MatcherResult {
	lower := strings.ToLower(prompt)
	var out []MatcherResult
	for _, d := range defs {
		if len(d.TriggerKeywords) == 0 {
			continue
		}
		hits := 0
		for _, k := range d.TriggerKeywords {
			if k != "" && strings.Contains(lower, strings.ToLower(k)) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		confidence := float64(hits) / float64(len(d.TriggerKeywords))
		if confidence > 1 {
			confidence = 1
		}
		out = append(out, MatcherResult{
			MatcherName:  "keyword",
			WorkflowName: d.Name,
			Confidence:   confidence,
			Weight:       KeywordWeight,
			Metadata:     map[string]any{"hits": hits, "total": len(d.TriggerKeywords)},
		})
	}
	return out
}
