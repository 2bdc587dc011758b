package ai

import (
	"context"
	"fmt"
	"strings"

	"roleplay/engine"
	"roleplay/models"

	"google.golang.org/genai"
)

// Gemini generates in-character dialogue and assessment completions through
// the Gemini API. Implements engine.DialogueGenerator and engine.Completer.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// GenerateOpening produces the character's first line for a new session.
func (g *Gemini) GenerateOpening(ctx context.Context, scenario *models.Scenario) (string, error) {
	return g.generate(ctx, "", engine.BuildOpeningPrompt(scenario))
}

// GenerateReply produces the character's next line given the transcript so
// far and the student's latest utterance.
func (g *Gemini) GenerateReply(ctx context.Context, scenario *models.Scenario, history []models.Message, utterance string) (string, error) {
	var prompt strings.Builder
	if transcript := engine.FormatTranscript(scenario, history); transcript != "" {
		prompt.WriteString("CONVERSATION HISTORY:\n")
		prompt.WriteString(transcript)
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Current Student Message: %s\n\nPlease respond as the character:", utterance)

	return g.generate(ctx, engine.BuildSystemPrompt(scenario), prompt.String())
}

// Complete runs a single-shot completion, used for objective assessment.
func (g *Gemini) Complete(ctx context.Context, system, prompt string) (string, error) {
	return g.generate(ctx, system, prompt)
}

func (g *Gemini) generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("no response generated")
	}
	return text, nil
}
