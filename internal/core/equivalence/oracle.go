package equivalence

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/llm"
)

// Oracle asks an LLM whether two addresses name the same physical location.
// It never returns an error: a failed call is logged and counts as "no".
type Oracle struct {
	LLM     llm.LLMClient
	Prompt  string
	Timeout time.Duration
	Logger  zerolog.Logger

	calls    int
	failures int
}

func NewOracle(llmClient llm.LLMClient, cfg config.OracleConfig, logger zerolog.Logger) *Oracle {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = config.DefaultPrompt
	}
	return &Oracle{
		LLM:     llmClient,
		Prompt:  prompt,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		Logger:  logger,
	}
}

// Compare issues exactly one request for the pair.
func (o *Oracle) Compare(ctx context.Context, a, b string) model.Verdict {
	o.calls++

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	reply, err := o.LLM.Generate(ctx, fmt.Sprintf(o.Prompt, a, b))
	v := model.Verdict{Match: err == nil && IsAffirmative(reply), Err: err}
	if !v.OK() {
		o.failures++
		o.Logger.Warn().Err(err).Str("address_a", a).Str("address_b", b).Msg("equivalence oracle call failed")
	}
	return v
}

func (o *Oracle) Matches(ctx context.Context, a, b string) bool {
	return o.Compare(ctx, a, b).Match
}

// Close releases the underlying client when it holds a connection.
func (o *Oracle) Close() error {
	if c, ok := o.LLM.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Calls and Failures count requests since the oracle was built.
func (o *Oracle) Calls() int    { return o.calls }
func (o *Oracle) Failures() int { return o.failures }

// IsAffirmative reads a yes/no reply: anything starting with 'y' after trimming is yes.
func IsAffirmative(reply string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "y")
}
