//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/equivalence"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/match"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
)

func liveOracle(t *testing.T) *equivalence.Oracle {
	_ = godotenv.Load("../../.env")

	cfg := config.Default()
	cfg.ApplyEnv()
	if cfg.Oracle.APIKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY / ORACLE_API_KEY not set")
	}

	oracle, err := equivalence.New(context.Background(), cfg.Oracle, "", zerolog.Nop())
	require.NoError(t, err)
	return oracle
}

func TestLiveOracleVerdicts(t *testing.T) {
	oracle := liveOracle(t)
	ctx := context.Background()

	assert.True(t, oracle.Matches(ctx,
		"1600 Amphitheatre Pkwy, Mountain View, CA 94043",
		"1600 Amphitheatre Parkway, Mountain View, California 94043"))
	assert.False(t, oracle.Matches(ctx,
		"350 5th Ave Apt 12B, New York, NY 10118",
		"350 5th Ave Apt 14C, New York, NY 10118"))
	assert.Zero(t, oracle.Failures())
}

func TestLiveReconcile(t *testing.T) {
	oracle := liveOracle(t)

	primary := []model.PrimaryRecord{
		{Address: "1600 Amphitheatre Pkwy, Mountain View, CA 94043", Phone: "6502530000"},
		{Address: "1 Infinite Loop, Cupertino, CA 95014", Phone: "4089961010"},
		{Address: "1600 Amphitheatre Pkwy, Mountain View, CA 94043", Phone: "6502530000"},
	}
	reference := []model.ReferenceRecord{
		{Address: "1600 Amphitheatre Parkway, Mountain View, California", Phone: "6502530000", OriginSheet: "CargoVan"},
	}

	out, summary := match.NewEngine(oracle, zerolog.Nop()).Reconcile(context.Background(), primary, reference)

	require.Len(t, out, 1)
	assert.Equal(t, "1 Infinite Loop, Cupertino, CA 95014", out[0].Address)
	assert.Equal(t, model.ColorPink, out[0].Color)
	assert.Equal(t, 2, summary.Unique)
}
