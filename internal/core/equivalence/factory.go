package equivalence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/llm"
)

// New builds the configured LLM client and wraps it in an Oracle.
func New(ctx context.Context, cfg config.OracleConfig, apiKey string, logger zerolog.Logger) (*Oracle, error) {
	client, err := llm.NewClient(ctx, cfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oracle client: %w", err)
	}
	return NewOracle(client, cfg, logger), nil
}
