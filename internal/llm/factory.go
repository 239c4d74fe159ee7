package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rs/zerolog/log"
)

const defaultOllamaURL = "http://localhost:11434"

// NewClient builds the provider named in cfg. apiKey overrides cfg.APIKey when non-empty.
func NewClient(ctx context.Context, cfg config.OracleConfig, apiKey string) (LLMClient, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	opts := GenerationOptions{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	provider := strings.ToLower(cfg.Provider)

	if apiKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("provider %q requires an api key", provider)
	}

	switch provider {
	case "gemini":
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		return NewGeminiClient(apiKey, cfg.Model, cfg.BaseURL, opts, timeout), nil

	case "gemini-sdk":
		return NewGeminiSDKClient(ctx, apiKey, cfg.Model, cfg.BaseURL, opts)

	case "openai":
		return NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL, opts), nil

	case "claude":
		return NewClaudeClient(apiKey, cfg.Model, cfg.BaseURL, opts), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		log.Debug().Str("base_url", baseURL).Msg("using ollama through its OpenAI-compatible API")

		// ollama ignores the key but the client wants one
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL, opts), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
