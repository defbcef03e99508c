package ensemble

import (
	"sort"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

// Aggregate combines every matcher's votes into one Result (spec §4.12):
// per-workflow scores are the sum of weight*confidence across all matchers,
// boosted by PatternBoost when the pattern matcher agrees with the
// candidate, then bucketed into a workflow.Confidence level. A runner-up
// scoring within CompositionThreshold of the winner marks composition mode.
func Aggregate(votes []MatcherResult) Result {
	type tally struct {
		score        float64
		patternFired bool
	}
	sums := make(map[string]*tally)
	var names []string
	for _, v := range votes {
		if v.WorkflowName == "" {
			continue
		}
		t, ok := sums[v.WorkflowName]
		if !ok {
			t = &tally{}
			sums[v.WorkflowName] = t
			names = append(names, v.WorkflowName)
		}
		t.score += v.Weight * v.Confidence
		if v.MatcherName == "pattern" {
			t.patternFired = true
		}
	}
	for _, name := range names {
		if sums[name].patternFired {
			sums[name].score *= PatternBoost
		}
	}

	sort.Strings(names) // deterministic tie-break before stable score sort
	sort.SliceStable(names, func(i, j int) bool {
		return sums[names[i]].score > sums[names[j]].score
	})

	if len(names) == 0 {
		return Result{ConfidenceLevel: workflow.ConfidenceNone, Votes: votes, Modifiers: map[string]any{}}
	}

	winner := names[0]
	result := Result{
		WorkflowName:    winner,
		Score:           sums[winner].score,
		ConfidenceLevel: confidenceLevel(sums[winner].score),
		Votes:           votes,
		Modifiers:       map[string]any{},
	}
	result.RequiresAdaptation = result.ConfidenceLevel != workflow.ConfidenceHigh

	if len(names) > 1 {
		runnerUp := names[1]
		if sums[winner].score-sums[runnerUp].score <= CompositionThreshold {
			result.CompositionMode = true
			result.ExtraWorkflows = []string{runnerUp}
		}
	}
	return result
}
