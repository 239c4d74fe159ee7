package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiSDKClient goes through the official Go SDK instead of the raw REST call.
type GeminiSDKClient struct {
	client *genai.Client
	model  string
	opts   GenerationOptions
}

func NewGeminiSDKClient(ctx context.Context, apiKey, model, baseURL string, opts GenerationOptions) (*GeminiSDKClient, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(baseURL))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &GeminiSDKClient{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (c *GeminiSDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.opts.Temperature)
	model.SetMaxOutputTokens(int32(c.opts.MaxOutputTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", nil
}

func (c *GeminiSDKClient) Close() error {
	return c.client.Close()
}
