package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  string
	opts   GenerationOptions
}

func NewClaudeClient(apiKey string, model string, baseURL string, opts GenerationOptions) *ClaudeClient {
	var clientOpts []anthropic.ClientOption
	if baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(baseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, clientOpts...),
		model:  model,
		opts:   opts,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.opts.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens:   c.opts.MaxOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response content")
}
