package ensemble

import (
	"testing"

	"github.com/pocketomega/router-supervisor/internal/workflow"
)

func TestAggregate_SumsWeightedVotesAcrossMatchers(t *testing.T) {
	votes := []MatcherResult{
		{MatcherName: "keyword", WorkflowName: "picnic_table", Confidence: 1.0, Weight: KeywordWeight},
		{MatcherName: "semantic", WorkflowName: "picnic_table", Confidence: 0.5, Weight: SemanticWeight},
	}
	result := Aggregate(votes)

	want := KeywordWeight*1.0 + SemanticWeight*0.5
	if result.WorkflowName != "picnic_table" {
		t.Fatalf("WorkflowName = %q, want picnic_table", result.WorkflowName)
	}
	if abs(result.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
	if result.ConfidenceLevel != workflow.ConfidenceMedium {
		t.Errorf("ConfidenceLevel = %v, want Medium for score %v", result.ConfidenceLevel, want)
	}
	if !result.RequiresAdaptation {
		t.Errorf("RequiresAdaptation = false, want true below HighCut")
	}
}

func TestAggregate_PatternBoostAppliesOnlyToAgreeingWorkflow(t *testing.T) {
	votes := []MatcherResult{
		{MatcherName: "keyword", WorkflowName: "picnic_table", Confidence: 1.0, Weight: KeywordWeight},
		{MatcherName: "pattern", WorkflowName: "picnic_table", Confidence: 1.0, Weight: PatternWeight},
	}
	result := Aggregate(votes)
	want := (KeywordWeight + PatternWeight) * PatternBoost
	if abs(result.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v (boosted)", result.Score, want)
	}
}

func TestAggregate_NoVotesYieldsNoneConfidence(t *testing.T) {
	result := Aggregate(nil)
	if result.WorkflowName != "" {
		t.Errorf("WorkflowName = %q, want empty", result.WorkflowName)
	}
	if result.ConfidenceLevel != workflow.ConfidenceNone {
		t.Errorf("ConfidenceLevel = %v, want None", result.ConfidenceLevel)
	}
}

func TestAggregate_CloseRunnerUpTriggersCompositionMode(t *testing.T) {
	votes := []MatcherResult{
		{MatcherName: "keyword", WorkflowName: "chair", Confidence: 1.0, Weight: 0.5},
		{MatcherName: "keyword", WorkflowName: "bench", Confidence: 0.9, Weight: 0.5},
	}
	result := Aggregate(votes)
	if !result.CompositionMode {
		t.Fatalf("CompositionMode = false, want true: scores %v and %v are within %v", 0.5, 0.45, CompositionThreshold)
	}
	if len(result.ExtraWorkflows) != 1 || result.ExtraWorkflows[0] != "bench" {
		t.Errorf("ExtraWorkflows = %v, want [bench]", result.ExtraWorkflows)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
