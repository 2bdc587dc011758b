package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicEvaluatorDeterministic(t *testing.T) {
	evaluator := HeuristicEvaluator{}
	objectives := []string{"Ask clarifying questions", "Demonstrate empathy"}
	utterance := "Could you tell me more about what happened? I'm sorry this is frustrating."

	first := evaluator.Evaluate(context.Background(), objectives, utterance, "")
	second := evaluator.Evaluate(context.Background(), objectives, utterance, "")

	assert.Equal(t, first, second)
}

func TestHeuristicEvaluatorClarifying(t *testing.T) {
	evaluator := HeuristicEvaluator{}
	objectives := []string{"Ask clarifying questions to understand the problem"}

	// "?", "could you", "tell me more" and "what happened" all match
	rich := evaluator.Evaluate(context.Background(), objectives,
		"Could you tell me more about what happened?", "")
	require.Len(t, rich, 1)
	assert.True(t, rich[0].Achieved)
	assert.Equal(t, 0.9, rich[0].Confidence)

	// "which" and "?" match
	pair := evaluator.Evaluate(context.Background(), objectives,
		"Which model is it?", "")
	require.Len(t, pair, 1)
	assert.True(t, pair[0].Achieved)
	assert.Equal(t, 0.75, pair[0].Confidence)

	// "which" alone stays below the achievement threshold
	single := evaluator.Evaluate(context.Background(), objectives,
		"Which model is it", "")
	require.Len(t, single, 1)
	assert.False(t, single[0].Achieved)
	assert.Equal(t, 0.4, single[0].Confidence)

	none := evaluator.Evaluate(context.Background(), objectives,
		"Hello there.", "")
	require.Len(t, none, 1)
	assert.False(t, none[0].Achieved)
	assert.Equal(t, 0.1, none[0].Confidence)
}

func TestHeuristicEvaluatorOneResultPerObjective(t *testing.T) {
	evaluator := HeuristicEvaluator{}
	objectives := []string{
		"Ask clarifying questions",
		"Demonstrate empathy",
		"Offer a concrete solution",
		"Maintain a professional tone",
	}

	results := evaluator.Evaluate(context.Background(), objectives,
		"I'm sorry, that sounds frustrating. Let me offer a refund, thank you.", "")
	require.Len(t, results, len(objectives))
}

func TestScoreSignalsNeverAchievesBelowThreshold(t *testing.T) {
	for matched := 0; matched <= 5; matched++ {
		result := scoreSignals(matched)
		if result.Achieved {
			assert.Greater(t, result.Confidence, AchievementThreshold,
				"matched=%d", matched)
		} else {
			assert.LessOrEqual(t, result.Confidence, AchievementThreshold,
				"matched=%d", matched)
		}
	}
}

type stubCompleter struct {
	out string
	err error
}

func (s stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.out, s.err
}

func TestAIEvaluatorParsesAssessment(t *testing.T) {
	evaluator := NewAIEvaluator(stubCompleter{out: "```json\n" + `{
	  "achievements": [
	    {"objective_index": 0, "achieved": true, "confidence": 0.85, "evidence": "asked questions"},
	    {"objective_index": 1, "achieved": false, "confidence": 0.2, "evidence": "no empathy shown"}
	  ]
	}` + "\n```"})

	results := evaluator.Evaluate(context.Background(),
		[]string{"Ask clarifying questions", "Demonstrate empathy"}, "hi", "hello")

	require.Len(t, results, 2)
	assert.True(t, results[0].Achieved)
	assert.Equal(t, 0.85, results[0].Confidence)
	assert.Equal(t, "asked questions", results[0].Evidence)
	assert.False(t, results[1].Achieved)
	assert.Equal(t, 0.2, results[1].Confidence)
}

func TestAIEvaluatorClampsConfidence(t *testing.T) {
	evaluator := NewAIEvaluator(stubCompleter{out: `{
	  "achievements": [
	    {"objective_index": 0, "achieved": true, "confidence": 1.7, "evidence": "x"}
	  ]
	}`})

	results := evaluator.Evaluate(context.Background(), []string{"Anything"}, "hi", "hello")

	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Confidence)
}

func TestAIEvaluatorFallsBackOnGarbage(t *testing.T) {
	objectives := []string{"Ask clarifying questions"}
	utterance := "Could you tell me more about what happened?"

	evaluator := NewAIEvaluator(stubCompleter{out: "I cannot assess that."})
	want := HeuristicEvaluator{}.Evaluate(context.Background(), objectives, utterance, "")

	assert.Equal(t, want, evaluator.Evaluate(context.Background(), objectives, utterance, ""))
}

func TestAIEvaluatorFallsBackOnError(t *testing.T) {
	objectives := []string{"Demonstrate empathy"}
	utterance := "I'm sorry, that sounds awful."

	evaluator := NewAIEvaluator(stubCompleter{err: errors.New("upstream unavailable")})
	want := HeuristicEvaluator{}.Evaluate(context.Background(), objectives, utterance, "")

	assert.Equal(t, want, evaluator.Evaluate(context.Background(), objectives, utterance, ""))
}

func TestAIEvaluatorFallsBackOnPartialCoverage(t *testing.T) {
	objectives := []string{"Ask clarifying questions", "Demonstrate empathy"}
	utterance := "Which model is it?"

	evaluator := NewAIEvaluator(stubCompleter{out: `{
	  "achievements": [
	    {"objective_index": 0, "achieved": true, "confidence": 0.9, "evidence": "x"}
	  ]
	}`})
	want := HeuristicEvaluator{}.Evaluate(context.Background(), objectives, utterance, "")

	assert.Equal(t, want, evaluator.Evaluate(context.Background(), objectives, utterance, ""))
}

func TestParseAssessmentRejectsOutOfRangeIndex(t *testing.T) {
	_, err := parseAssessment(`{
	  "achievements": [
	    {"objective_index": 5, "achieved": true, "confidence": 0.9, "evidence": "x"}
	  ]
	}`, 1)
	assert.Error(t, err)
}
