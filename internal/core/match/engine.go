// Package match reconciles primary addresses against a reference list using an
// equivalence oracle.
package match

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
)

// Matcher answers whether two addresses denote the same location.
type Matcher interface {
	Matches(ctx context.Context, a, b string) bool
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(ctx context.Context, a, b string) bool

func (f MatcherFunc) Matches(ctx context.Context, a, b string) bool {
	return f(ctx, a, b)
}

type Summary struct {
	PrimaryRows int `json:"primary_rows"`
	Skipped     int `json:"skipped"`
	Unique      int `json:"unique"`
	Matched     int `json:"matched"`
	Unmatched   int `json:"unmatched"`
	Comparisons int `json:"comparisons"`
}

// decision is the full outcome for one unique primary address, matched or not.
type decision struct {
	phone    string
	matched  bool
	matchRow int
	captured []string
	color    model.Color
}

type Engine struct {
	Oracle        Matcher
	Logger        zerolog.Logger
	ProgressEvery int
}

func NewEngine(oracle Matcher, logger zerolog.Logger) *Engine {
	return &Engine{
		Oracle:        oracle,
		Logger:        logger,
		ProgressEvery: 25,
	}
}

// Reconcile returns one record per unique primary address that no reference row matches,
// in first-occurrence order. Matched addresses are dropped whatever their colour.
func (e *Engine) Reconcile(ctx context.Context, primary []model.PrimaryRecord, reference []model.ReferenceRecord) ([]model.OutputRecord, Summary) {
	seen := make(map[string]struct{}, len(primary))
	out := make([]model.OutputRecord, 0)
	summary := Summary{PrimaryRows: len(primary)}

	for _, rec := range primary {
		if rec.Address == "" {
			summary.Skipped++
			continue
		}
		if _, dup := seen[rec.Address]; dup {
			summary.Skipped++
			continue
		}
		seen[rec.Address] = struct{}{}
		summary.Unique++

		d, compared := e.decide(ctx, rec, reference)
		summary.Comparisons += compared

		if d.matched {
			summary.Matched++
			e.Logger.Debug().
				Str("address", rec.Address).
				Str("reference_address", reference[d.matchRow].Address).
				Str("sheet", reference[d.matchRow].OriginSheet).
				Str("color", d.color.String()).
				Msg("address matched")
		} else {
			summary.Unmatched++
			out = append(out, model.OutputRecord{
				Address: rec.Address,
				Phones:  d.phone,
				Color:   d.color,
			})
		}

		if e.ProgressEvery > 0 && summary.Unique%e.ProgressEvery == 0 {
			e.Logger.Info().
				Int("unique", summary.Unique).
				Int("matched", summary.Matched).
				Int("unmatched", summary.Unmatched).
				Int("comparisons", summary.Comparisons).
				Msg("reconciliation progress")
		}
	}

	return out, summary
}

// decide scans reference in order and stops at the first row the oracle accepts.
// It returns the decision and how many oracle calls were made.
func (e *Engine) decide(ctx context.Context, rec model.PrimaryRecord, reference []model.ReferenceRecord) (decision, int) {
	d := decision{
		phone:    strings.TrimSpace(rec.Phone),
		matchRow: -1,
	}

	compared := 0
	for i, ref := range reference {
		compared++
		if e.Oracle.Matches(ctx, rec.Address, ref.Address) {
			d.matched = true
			d.matchRow = i
			d.captured = append(d.captured, ref.Phone)
			break
		}
	}

	d.color = PhoneColor(d.matched, d.phone, d.captured)
	return d, compared
}

// PhoneColor is black only for a match with exactly one captured phone equal to the
// primary phone; every other case is pink.
func PhoneColor(matched bool, primaryPhone string, captured []string) model.Color {
	if !matched || len(captured) != 1 {
		return model.ColorPink
	}
	if captured[0] == primaryPhone {
		return model.ColorBlack
	}
	return model.ColorPink
}
