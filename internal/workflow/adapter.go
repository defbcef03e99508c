package workflow

import "strings"

// Confidence mirrors the Ensemble Matcher's confidence level (spec §4.9),
// consumed here to decide how aggressively optional steps get filtered.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNone   Confidence = "NONE"
)

// DefaultSimilarityThreshold gates the third relevance-cascade level (spec
// §4.9's similarity_threshold, reused here for step-description relevance).
const DefaultSimilarityThreshold = 0.70

// Similarity scores how related two phrases are, in [0, 1]. The ensemble
// package's semantic matcher backs this in the live pipeline; tests and
// deployments without an embedding service pass nil, which disables the
// third cascade level without failing adaptation outright.
type Similarity func(a, b string) float64

// AdaptSteps implements the confidence-based step adaptation of spec §4.11:
// HIGH keeps every step (FULL), LOW and NONE keep only core steps
// (CORE_ONLY), and MEDIUM runs each optional step through the three-level
// relevance cascade (FILTERED). Core steps are never dropped.
func AdaptSteps(calls []Call, confidence Confidence, prompt string, sim Similarity) []Call {
	if confidence == ConfidenceHigh {
		return calls
	}

	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		if c.IsCore {
			out = append(out, c)
			continue
		}
		if confidence == ConfidenceMedium && isRelevant(c, prompt, sim) {
			out = append(out, c)
		}
		// LOW and NONE drop every optional step.
	}
	return out
}

// isRelevant runs the three-level cascade for one optional step: tag
// substring match, then semantic-parameter keyword match (stripping the
// add_/include_ prefix convention), then description similarity.
func isRelevant(c Call, prompt string, sim Similarity) bool {
	promptLower := strings.ToLower(prompt)
	if promptLower == "" {
		return false
	}

	for _, tag := range c.Tags {
		if tag != "" && strings.Contains(promptLower, strings.ToLower(tag)) {
			return true
		}
	}

	for key, enabled := range c.Extras {
		keyword := strings.TrimPrefix(key, "add_")
		keyword = strings.TrimPrefix(keyword, "include_")
		keyword = strings.ReplaceAll(keyword, "_", " ")
		if keyword == "" {
			continue
		}
		present := strings.Contains(promptLower, strings.ToLower(keyword))
		// A positive extra is relevant when its keyword is present; a
		// negative one is relevant when its keyword is absent (spec §4.11).
		if enabled == present {
			return true
		}
	}

	if sim != nil && c.Description != "" {
		if sim(prompt, c.Description) >= DefaultSimilarityThreshold {
			return true
		}
	}

	return false
}
