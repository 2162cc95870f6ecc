package narrative

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements TextGenerator on any OpenAI-compatible chat
// completion endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a generator. baseURL may be empty for the
// default OpenAI endpoint; set it to point at a compatible provider.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate runs one chat completion and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrative: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
