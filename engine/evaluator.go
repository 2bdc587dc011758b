package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// AchievementThreshold is the confidence an objective result must exceed for
// the engine to record the objective as achieved.
const AchievementThreshold = 0.7

// ObjectiveResult scores one objective for one student utterance.
type ObjectiveResult struct {
	Achieved   bool    `json:"achieved"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence,omitempty"`
}

// ObjectiveEvaluator scores a student utterance against the scenario's
// objective list. Implementations are total: they return exactly one result
// per objective, in input order, and never fail (the AI-backed implementation
// falls back to the heuristic one internally).
type ObjectiveEvaluator interface {
	Evaluate(ctx context.Context, objectives []string, utterance, reply string) []ObjectiveResult
}

// HeuristicEvaluator is a deterministic signal-based scorer for environments
// without a dialogue generator. Each objective's wording selects a signal
// group, and confidence is a step function of how many distinct signals of
// that group appear in the utterance. A single incidental keyword stays below
// the achievement threshold.
type HeuristicEvaluator struct{}

// signalGroups maps objective wording cues to the conversational signals that
// demonstrate the objective.
var signalGroups = []struct {
	name    string
	cues    []string
	signals []string
}{
	{
		name: "clarifying",
		cues: []string{"question", "clarify", "listen"},
		signals: []string{
			"?", "could you", "can you tell me", "what exactly", "what happened",
			"tell me more", "help me understand", "when did", "how did", "which",
		},
	},
	{
		name: "empathy",
		cues: []string{"empath", "understanding", "feel"},
		signals: []string{
			"i understand", "i'm sorry", "i am sorry", "sorry", "i hear you",
			"that sounds", "i appreciate", "i can see", "must be frustrating",
		},
	},
	{
		name: "solution",
		cues: []string{"solution", "offer", "solve", "resolve", "fix"},
		signals: []string{
			"i can", "we can", "let me", "i will", "i'll", "offer", "refund",
			"replace", "solution", "option", "here's what",
		},
	},
	{
		name: "deescalation",
		cues: []string{"de-escalat", "escalat", "tense", "conflict", "calm"},
		signals: []string{
			"i apologize", "let's work together", "we'll get this sorted",
			"i assure you", "take a moment", "completely understandable",
			"you're right", "my priority",
		},
	},
	{
		name: "professional",
		cues: []string{"professional", "demeanor", "courteous", "polite", "tone"},
		signals: []string{
			"please", "thank you", "thanks", "certainly", "of course",
			"happy to", "glad to", "welcome",
		},
	},
}

// genericSignals is the fallback group for objectives whose wording matches
// no cue.
var genericSignals = []string{
	"help", "please", "thank", "understand", "sorry", "problem", "question",
	"solution", "?",
}

func (HeuristicEvaluator) Evaluate(_ context.Context, objectives []string, utterance, _ string) []ObjectiveResult {
	results := make([]ObjectiveResult, len(objectives))
	lower := strings.ToLower(utterance)

	for i, objective := range objectives {
		signals := signalsFor(objective)
		matched := 0
		for _, signal := range signals {
			if strings.Contains(lower, signal) {
				matched++
			}
		}
		results[i] = scoreSignals(matched)
	}
	return results
}

func signalsFor(objective string) []string {
	lower := strings.ToLower(objective)
	for _, group := range signalGroups {
		for _, cue := range group.cues {
			if strings.Contains(lower, cue) {
				return group.signals
			}
		}
	}
	return genericSignals
}

// scoreSignals turns a distinct-signal count into a result. Two independent
// signals are required before the confidence clears the achievement
// threshold.
func scoreSignals(matched int) ObjectiveResult {
	switch {
	case matched >= 3:
		return ObjectiveResult{Achieved: true, Confidence: 0.9, Evidence: "multiple matching signals"}
	case matched == 2:
		return ObjectiveResult{Achieved: true, Confidence: 0.75, Evidence: "matching signals"}
	case matched == 1:
		return ObjectiveResult{Achieved: false, Confidence: 0.4, Evidence: "single signal only"}
	default:
		return ObjectiveResult{Achieved: false, Confidence: 0.1, Evidence: "no clear evidence yet"}
	}
}

// AIEvaluator asks the dialogue generator to assess the utterance and parses
// its structured verdict. Any failure, including unparseable output, falls
// back to the heuristic scorer.
type AIEvaluator struct {
	Completer Completer
	fallback  HeuristicEvaluator
}

func NewAIEvaluator(completer Completer) *AIEvaluator {
	return &AIEvaluator{Completer: completer}
}

const assessmentSystemPrompt = "You are an educational assessment AI. Respond only with valid JSON."

func assessmentPrompt(objectives []string, utterance, reply string) string {
	lines := make([]string, len(objectives))
	for i, objective := range objectives {
		lines[i] = fmt.Sprintf("%d. %s", i+1, objective)
	}

	return fmt.Sprintf(`Analyze this student response for learning objective achievement:

LEARNING OBJECTIVES:
%s

STUDENT MESSAGE: "%s"

CHARACTER REPLY: "%s"

For each learning objective, determine if the student demonstrated that skill.
Respond with only a JSON object:
{
  "achievements": [
    {"objective_index": 0, "achieved": true/false, "confidence": 0.0-1.0, "evidence": "brief explanation"}
  ]
}
Include exactly one entry per objective, in order.`, strings.Join(lines, "\n"), utterance, reply)
}

func (e *AIEvaluator) Evaluate(ctx context.Context, objectives []string, utterance, reply string) []ObjectiveResult {
	if len(objectives) == 0 {
		return nil
	}
	if e.Completer == nil {
		return e.fallback.Evaluate(ctx, objectives, utterance, reply)
	}

	raw, err := e.Completer.Complete(ctx, assessmentSystemPrompt, assessmentPrompt(objectives, utterance, reply))
	if err != nil {
		log.Printf("Objective assessment failed, using heuristic fallback: %v", err)
		return e.fallback.Evaluate(ctx, objectives, utterance, reply)
	}

	results, err := parseAssessment(raw, len(objectives))
	if err != nil {
		log.Printf("Unparseable objective assessment, using heuristic fallback: %v", err)
		return e.fallback.Evaluate(ctx, objectives, utterance, reply)
	}
	return results
}

func parseAssessment(raw string, objectiveCount int) ([]ObjectiveResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Achievements []struct {
			ObjectiveIndex int     `json:"objective_index"`
			Achieved       bool    `json:"achieved"`
			Confidence     float64 `json:"confidence"`
			Evidence       string  `json:"evidence"`
		} `json:"achievements"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	results := make([]ObjectiveResult, objectiveCount)
	seen := 0
	for _, entry := range payload.Achievements {
		if entry.ObjectiveIndex < 0 || entry.ObjectiveIndex >= objectiveCount {
			continue
		}
		confidence := entry.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		results[entry.ObjectiveIndex] = ObjectiveResult{
			Achieved:   entry.Achieved,
			Confidence: confidence,
			Evidence:   entry.Evidence,
		}
		seen++
	}
	if seen < objectiveCount {
		return nil, fmt.Errorf("assessment covered %d of %d objectives", seen, objectiveCount)
	}
	return results, nil
}
