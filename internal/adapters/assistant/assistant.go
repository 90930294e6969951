// Package assistant provides app.Responder implementations.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/taskcollab/internal/domain"
	"google.golang.org/genai"
)

// PlaceholderReply is returned by Placeholder for every prompt.
const PlaceholderReply = "I'll help with that (placeholder reply)"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// systemPrompt frames the assistant inside the board tool.
const systemPrompt = "You are the Task Collab assistant. Help the user plan, break down and prioritise kanban tasks. Keep answers short."

// Placeholder replies with a fixed message.
type Placeholder struct{}

// Reply implements app.Responder.
func (Placeholder) Reply(context.Context, []domain.ChatMessage, string) (string, error) {
	return PlaceholderReply, nil
}

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini replies through the Gemini API.
type Gemini struct {
	generate generateFunc
	model    string
}

// NewGemini creates a Gemini responder.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models.GenerateContent, model), nil
}

func newGemini(generate generateFunc, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{generate: generate, model: model}
}

// Reply implements app.Responder.
func (g *Gemini) Reply(ctx context.Context, history []domain.ChatMessage, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if msg.Role == domain.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := g.generate(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty reply")
	}
	return text, nil
}
