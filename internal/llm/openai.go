package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client *openai.Client
	model  string
	opts   GenerationOptions
}

func NewOpenAIClient(apiKey string, model string, baseURL string, opts GenerationOptions) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIClient{
		client: client,
		model:  model,
		opts:   opts,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	// temperature is omitempty in the request type; 0 would fall back to the server default.
	temperature := c.opts.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: temperature,
		MaxTokens:   c.opts.MaxOutputTokens,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no response choices")
}
