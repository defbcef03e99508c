package ensemble

import (
	"sort"
	"strings"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// ExtractModifiers picks the single best-matching modifier phrase declared
// on def for prompt and returns its overrides (spec §4.12). With an
// embedder/similarity pair injected, every 1-to-3-word n-gram of prompt is
// compared against every modifier phrase and the globally highest-scoring
// pair wins, provided it clears threshold. Without one, the extraction
// falls back to literal substring containment. A phrase is never chosen if
// one of its negative_signals also appears in prompt.
func ExtractModifiers(def workflow.Def, prompt string, embed Embedder, sim SimilarityFunc, threshold float64) map[string]any {
	if len(def.Modifiers) == 0 {
		return map[string]any{}
	}
	lower := strings.ToLower(prompt)
	phrases := sortedModifierNames(def.Modifiers)

	eligible := func(phrase string) bool {
		for _, neg := range def.Modifiers[phrase].NegativeSignals {
			if neg != "" && strings.Contains(lower, strings.ToLower(neg)) {
				return false
			}
		}
		return true
	}

	if embed != nil && sim != nil {
		grams := nGrams(prompt, 1, 3)
		bestPhrase := ""
		bestScore := threshold
		for _, phrase := range phrases {
			if !eligible(phrase) {
				continue
			}
			phraseVec, ok := embed.Embed(phrase)
			if !ok {
				continue
			}
			for _, gram := range grams {
				gramVec, ok := embed.Embed(gram)
				if !ok {
					continue
				}
				score := sim(phraseVec, gramVec)
				if score >= bestScore {
					bestScore = score
					bestPhrase = phrase
				}
			}
		}
		if bestPhrase != "" {
			return cloneOverrides(def.Modifiers[bestPhrase].Overrides)
		}
		return map[string]any{}
	}

	for _, phrase := range phrases {
		if eligible(phrase) && strings.Contains(lower, strings.ToLower(phrase)) {
			return cloneOverrides(def.Modifiers[phrase].Overrides)
		}
	}
	return map[string]any{}
}

func sortedModifierNames(mods map[string]workflow.Modifier) []string {
	names := make([]string, 0, len(mods))
	for name := range mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneOverrides(overrides map[string]any) map[string]any {
	out := make(map[string]any, len(overrides))
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// nGrams returns every contiguous word run of length minN..maxN in text.
func nGrams(text string, minN, maxN int) []string {
	words := strings.Fields(text)
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}
	return out
}
