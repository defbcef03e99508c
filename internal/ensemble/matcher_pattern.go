package ensemble

import "github.com/pocketomega/router-supervisor/internal/patterndet"

// PatternMatch turns a Pattern Detector result into a single-vote matcher
// result (spec §4.12): the pattern matcher only ever votes for the
// detector's own suggested workflow, weighted low (0.15) since a structural
// pattern match is a much weaker signal than keyword or semantic agreement.
func PatternMatch(detected patterndet.Detected, detectedOK bool, knownWorkflow func(name string) bool) []MatcherResult {
	if !detectedOK || detected.SuggestedWorkflow == "" {
		return nil
	}
	if knownWorkflow != nil && !knownWorkflow(detected.SuggestedWorkflow) {
		return nil
	}
	return []MatcherResult{{
		MatcherName:  "pattern",
		WorkflowName: detected.SuggestedWorkflow,
		Confidence:   detected.Confidence,
		Weight:       PatternWeight,
		Metadata:     map[string]any{"pattern_type": string(detected.Type), "rules": detected.Rules},
	}}
}
