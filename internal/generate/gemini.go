package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates messages with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &GenerationError{Reason: "gemini API key is empty"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns the provider and model.
func (g *Gemini) Name() string { return ProviderGemini + "/" + g.model }

// Complete sends the prompt and returns the text of the first candidate.
func (g *Gemini) Complete(ctx context.Context, p Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.Temperature),
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), cfg)
	if err != nil {
		return "", classifyGemini(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := "gemini returned an empty response"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = fmt.Sprintf("gemini blocked the prompt (%s)", resp.PromptFeedback.BlockReason)
		}
		return "", &GenerationError{Reason: reason}
	}
	return text, nil
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &RateLimitError{Provider: ProviderGemini, Err: err}
		}
		return &GenerationError{Reason: fmt.Sprintf("gemini API error %d", apiErr.Code), Err: err}
	}
	return classify(ProviderGemini, err)
}
