package engine

import (
	"context"
	"fmt"
	"strings"

	"roleplay/models"
)

// DialogueGenerator produces in-character text for a scenario. Implementations
// may fail or time out; the engine always substitutes a fallback line, so a
// generator outage never reaches the student.
type DialogueGenerator interface {
	// GenerateOpening produces the character's first line of a new session.
	GenerateOpening(ctx context.Context, scenario *models.Scenario) (string, error)

	// GenerateReply produces the character's reply to the student's latest
	// utterance, given the transcript so far (without the utterance itself).
	GenerateReply(ctx context.Context, scenario *models.Scenario, history []models.Message, utterance string) (string, error)
}

// Completer is the raw single-shot completion capability used by the
// AI-backed objective evaluator.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// BuildSystemPrompt renders the persona instructions for a scenario.
func BuildSystemPrompt(scenario *models.Scenario) string {
	objectives := scenario.Objectives()
	lines := make([]string, len(objectives))
	for i, objective := range objectives {
		lines[i] = fmt.Sprintf("%d. %s", i+1, objective)
	}

	return fmt.Sprintf(`You are a %s in a professional roleplay training scenario.

SCENARIO DETAILS:
- Title: %s
- Description: %s
- Learning Objective: %s
- Your Character: %s
- Tone: %s
- Context: %s

LEARNING OBJECTIVES TO HELP STUDENT ACHIEVE:
%s

INSTRUCTIONS:
1. Stay completely in character as %s
2. Maintain a %s tone throughout the conversation
3. Create realistic, challenging scenarios that help students practice the learning objectives
4. Provide constructive feedback when students demonstrate good skills
5. Gradually escalate difficulty to help students grow
6. Keep responses conversational and engaging (2-4 sentences typical)
7. Don't break character or mention that you're an AI
8. Focus on helping students achieve the learning objectives through practice

IMPORTANT: Respond only as %s. Do not provide meta-commentary or break character. Keep responses natural and conversational.`,
		scenario.CharacterName,
		scenario.Title,
		scenario.Description,
		scenario.Objective,
		scenario.CharacterName,
		scenario.CharacterTone,
		scenario.CharacterContext,
		strings.Join(lines, "\n"),
		scenario.CharacterName,
		scenario.CharacterTone,
		scenario.CharacterName,
	)
}

// BuildOpeningPrompt renders the prompt used to generate the character's
// first line of a session.
func BuildOpeningPrompt(scenario *models.Scenario) string {
	return fmt.Sprintf(`You are a %s in a roleplay training scenario. Generate an engaging opening message to start the training session.

SCENARIO DETAILS:
- Title: %s
- Description: %s
- Your Character: %s
- Tone: %s
- Context: %s

Generate a natural, engaging opening message that:
1. Stays in character as %s
2. Sets up the training scenario naturally
3. Invites the student to begin practicing
4. Uses a %s tone

Keep it conversational and under 100 words.`,
		scenario.CharacterName,
		scenario.Title,
		scenario.Description,
		scenario.CharacterName,
		scenario.CharacterTone,
		scenario.CharacterContext,
		scenario.CharacterName,
		scenario.CharacterTone,
	)
}

// FormatTranscript renders the conversation history for prompting.
func FormatTranscript(scenario *models.Scenario, history []models.Message) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	for _, msg := range history {
		speaker := "Student"
		if msg.Role == models.MessageRoleCharacter {
			speaker = scenario.CharacterName
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, msg.Content)
	}
	return b.String()
}

// FallbackOpening is the templated greeting used when the generator is
// unavailable for a new session.
func FallbackOpening(scenario *models.Scenario) string {
	return fmt.Sprintf("Hello! I'm your %s. I'm ready to help you practice %s. How can I assist you today?",
		scenario.CharacterName, strings.ToLower(scenario.Title))
}

// FallbackReply is the apologetic line used when the generator fails mid-turn.
const FallbackReply = "I apologize, but I'm experiencing some technical difficulties. Please try again, and I'll do my best to help you with your training."

// EstimateTokens gives a rough token count for a message (word count * 1.3).
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return (words*13 + 9) / 10
}
