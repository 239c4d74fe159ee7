package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the generateContent REST endpoint directly so the request body
// stays exactly {contents, generationConfig}.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	opts       GenerationOptions
}

func NewGeminiClient(apiKey, model, baseURL string, opts GenerationOptions, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse keeps every level optional; the service omits content on safety blocks
// and text on non-text parts.
type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// firstText returns candidates[0].content.parts[0].text if every level is present.
func (r *geminiResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return "", false
	}
	return *content.Parts[0].Text, true
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
}

// Generate returns the first candidate's text, or "" when the response carries none.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.opts.Temperature,
			MaxOutputTokens: c.opts.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	text, _ := parsed.firstText()
	return text, nil
}
