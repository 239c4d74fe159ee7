package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/match"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/workbook"
)

// Reconciler wires the loader, the matching engine and the report writer for one
// configuration. Each run gets its own engine state.
type Reconciler struct {
	Loader         *workbook.Loader
	Oracle         match.Matcher
	Config         *config.Config
	Logger         zerolog.Logger
	RunIDGenerator func() string
}

type RunResult struct {
	RunID      string               `json:"run_id"`
	Records    []model.OutputRecord `json:"records"`
	Summary    match.Summary        `json:"summary"`
	OutputPath string               `json:"output_path,omitempty"`
	Elapsed    time.Duration        `json:"elapsed_ns"`
}

func NewReconciler(cfg *config.Config, oracle match.Matcher, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		Loader: workbook.NewLoader(cfg.Input),
		Oracle: oracle,
		Config: cfg,
		Logger: logger,
		RunIDGenerator: func() string {
			return uuid.New().String()
		},
	}
}

// Run loads both workbooks from disk, reconciles them and saves the report to
// Config.Output.Path. Load and write failures abort the run.
func (r *Reconciler) Run(ctx context.Context, primaryPath, referencePath string) (*RunResult, error) {
	r.Logger.Info().Str("primary", primaryPath).Str("reference", referencePath).Msg("loading workbooks")

	primary, err := r.Loader.LoadPrimary(primaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load primary workbook: %w", err)
	}
	reference, err := r.Loader.LoadReference(referencePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference workbook: %w", err)
	}

	result := r.Reconcile(ctx, primary, reference)

	path := r.Config.Output.Path
	r.Logger.Info().Str("run_id", result.RunID).Str("path", path).Msg("writing report")
	if err := workbook.NewReportWriter(r.Config.Output.Sheet, result.RunID).Write(path, result.Records); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	result.OutputPath = path

	return result, nil
}

// RunStreams is Run for uploaded workbooks; the report goes to out.
func (r *Reconciler) RunStreams(ctx context.Context, primaryIn, referenceIn io.Reader, out io.Writer) (*RunResult, error) {
	result, err := r.ReconcileStreams(ctx, primaryIn, referenceIn)
	if err != nil {
		return nil, err
	}
	if err := workbook.NewReportWriter(r.Config.Output.Sheet, result.RunID).WriteTo(out, result.Records); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return result, nil
}

// ReconcileStreams loads both uploads and reconciles them without writing a report.
func (r *Reconciler) ReconcileStreams(ctx context.Context, primaryIn, referenceIn io.Reader) (*RunResult, error) {
	primary, err := r.Loader.LoadPrimaryFrom(primaryIn, "primary")
	if err != nil {
		return nil, fmt.Errorf("failed to load primary workbook: %w", err)
	}
	reference, err := r.Loader.LoadReferenceFrom(referenceIn, "reference")
	if err != nil {
		return nil, fmt.Errorf("failed to load reference workbook: %w", err)
	}
	return r.Reconcile(ctx, primary, reference), nil
}

func (r *Reconciler) Reconcile(ctx context.Context, primary []model.PrimaryRecord, reference []model.ReferenceRecord) *RunResult {
	runID := r.RunIDGenerator()
	logger := r.Logger.With().Str("run_id", runID).Logger()

	engine := match.NewEngine(r.Oracle, logger)
	engine.ProgressEvery = r.Config.Run.ProgressEvery

	logger.Info().
		Int("primary_rows", len(primary)).
		Int("reference_rows", len(reference)).
		Msg("comparing addresses")

	start := time.Now()
	records, summary := engine.Reconcile(ctx, primary, reference)
	elapsed := time.Since(start)

	logger.Info().
		Int("unique", summary.Unique).
		Int("matched", summary.Matched).
		Int("unmatched", summary.Unmatched).
		Int("comparisons", summary.Comparisons).
		Dur("elapsed", elapsed).
		Msg("reconciliation finished")

	return &RunResult{
		RunID:   runID,
		Records: records,
		Summary: summary,
		Elapsed: elapsed,
	}
}
