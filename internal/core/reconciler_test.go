package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/match"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/workbook"
)

func saveSheets(t *testing.T, name string, sheets map[string][][]interface{}, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			row := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Input.ReferenceSheets = []string{"CargoVan", "卡车"}
	cfg.Output.Path = filepath.Join(t.TempDir(), "report.xlsx")
	return cfg
}

func fixtures(t *testing.T) (string, string) {
	primary := saveSheets(t, "primary.xlsx", map[string][][]interface{}{
		"LAX": {
			{"processed_address", "Merged Mobiles"},
			{"1 Elm St Apt 2", "111"},
			{"9 Pine Rd", "222"},
			{"1 Elm St Apt 2", "111"},
			{"5 Birch Ln", " 333 "},
		},
	}, "LAX")
	reference := saveSheets(t, "reference.xlsx", map[string][][]interface{}{
		"CargoVan": {
			{"Pickup Address*", "Phone Number*"},
			{"1 Elm Street #2", "111"},
		},
		"卡车": {
			{"Pickup Address*", "Phone Number*"},
			{"77 Cedar Ct", "444"},
		},
	}, "CargoVan", "卡车")
	return primary, reference
}

// elmMatcher only considers the two spellings of 1 Elm St equivalent.
var elmMatcher = match.MatcherFunc(func(ctx context.Context, a, b string) bool {
	return a == "1 Elm St Apt 2" && b == "1 Elm Street #2"
})

func TestRunWritesUnmatchedReport(t *testing.T) {
	cfg := testConfig(t)
	primary, reference := fixtures(t)

	r := NewReconciler(cfg, elmMatcher, zerolog.Nop())
	r.RunIDGenerator = func() string { return "run-42" }

	result, err := r.Run(context.Background(), primary, reference)
	require.NoError(t, err)

	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, cfg.Output.Path, result.OutputPath)
	assert.Equal(t, []model.OutputRecord{
		{Address: "9 Pine Rd", Phones: "222", Color: model.ColorPink},
		{Address: "5 Birch Ln", Phones: "333", Color: model.ColorPink},
	}, result.Records)
	assert.Equal(t, 3, result.Summary.Unique)
	assert.Equal(t, 1, result.Summary.Matched)
	// Elm: 1 call; Pine and Birch: 2 each
	assert.Equal(t, 5, result.Summary.Comparisons)

	f, err := excelize.OpenFile(cfg.Output.Path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(cfg.Output.Sheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"address", "phone numbers", "color"},
		{"9 Pine Rd", "222", "pink"},
		{"5 Birch Ln", "333", "pink"},
	}, rows)
}

func TestRunLoadErrorAbortsWithoutOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.ReferenceSheets = []string{"CargoVan", "Missing"}
	primary, reference := fixtures(t)

	_, err := NewReconciler(cfg, elmMatcher, zerolog.Nop()).Run(context.Background(), primary, reference)

	var loadErr *workbook.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "Missing", loadErr.Sheet)
	_, statErr := os.Stat(cfg.Output.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunWriteError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Path = filepath.Join(t.TempDir(), "no", "such", "dir", "out.xlsx")
	primary, reference := fixtures(t)

	_, err := NewReconciler(cfg, elmMatcher, zerolog.Nop()).Run(context.Background(), primary, reference)

	var writeErr *workbook.WriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestRunStreams(t *testing.T) {
	cfg := testConfig(t)
	primaryPath, referencePath := fixtures(t)
	primary, err := os.Open(primaryPath)
	require.NoError(t, err)
	defer primary.Close()
	reference, err := os.Open(referencePath)
	require.NoError(t, err)
	defer reference.Close()

	var out bytes.Buffer
	result, err := NewReconciler(cfg, elmMatcher, zerolog.Nop()).RunStreams(context.Background(), primary, reference, &out)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.NotEmpty(t, result.RunID)

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(cfg.Output.Sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
