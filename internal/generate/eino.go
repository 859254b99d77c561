package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultMaxTokens = 512

// ChatBackend adapts an eino chat model. It serves the OpenAI and Anthropic
// providers.
type ChatBackend struct {
	provider string
	model    string
	chat     model.BaseChatModel
}

// NewOpenAI creates an OpenAI chat backend.
func NewOpenAI(ctx context.Context, modelName, apiKey string) (*ChatBackend, error) {
	if apiKey == "" {
		return nil, &GenerationError{Reason: "openai API key is empty"}
	}
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &ChatBackend{provider: ProviderOpenAI, model: modelName, chat: chat}, nil
}

// NewAnthropic creates an Anthropic chat backend.
func NewAnthropic(ctx context.Context, modelName, apiKey string) (*ChatBackend, error) {
	if apiKey == "" {
		return nil, &GenerationError{Reason: "anthropic API key is empty"}
	}
	chat, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create anthropic client: %w", err)
	}
	return &ChatBackend{provider: ProviderAnthropic, model: modelName, chat: chat}, nil
}

// NewChatBackend wraps an arbitrary eino chat model.
func NewChatBackend(provider, modelName string, chat model.BaseChatModel) *ChatBackend {
	return &ChatBackend{provider: provider, model: modelName, chat: chat}
}

// Name returns the provider and model.
func (c *ChatBackend) Name() string { return c.provider + "/" + c.model }

// Complete sends a system and a user message and returns the reply text.
func (c *ChatBackend) Complete(ctx context.Context, p Prompt) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if p.System != "" {
		messages = append(messages, schema.SystemMessage(p.System))
	}
	messages = append(messages, schema.UserMessage(p.User))

	opts := []model.Option{model.WithTemperature(p.Temperature)}
	if p.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.MaxTokens))
	}

	reply, err := c.chat.Generate(ctx, messages, opts...)
	if err != nil {
		return "", classify(c.provider, err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", &GenerationError{Reason: c.provider + " returned an empty response"}
	}
	return strings.TrimSpace(reply.Content), nil
}
