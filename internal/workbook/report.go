package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
)

const defaultSheet = "Sheet1"

var reportHeader = []interface{}{"address", "phone numbers", "color"}

var fontColors = map[model.Color]string{
	model.ColorBlack: "#000000",
	model.ColorPink:  "#FF00FF",
}

// ReportWriter serialises output records to a single-sheet workbook with one font colour
// per row. The header row carries no style.
type ReportWriter struct {
	Sheet string
	RunID string
}

func NewReportWriter(sheet, runID string) *ReportWriter {
	return &ReportWriter{Sheet: sheet, RunID: runID}
}

func (w *ReportWriter) Write(path string, records []model.OutputRecord) error {
	f, err := w.build(records)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// WriteTo streams the workbook instead of saving it to disk.
func (w *ReportWriter) WriteTo(out io.Writer, records []model.OutputRecord) error {
	f, err := w.build(records)
	if err != nil {
		return &WriteError{Path: "<stream>", Err: err}
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return &WriteError{Path: "<stream>", Err: err}
	}
	return nil
}

func (w *ReportWriter) build(records []model.OutputRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := w.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Unmatched addresses",
		Creator:     "addrecon",
		Identifier:  w.RunID,
		Description: "Primary addresses with no equivalent in the reference workbook",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &reportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	styles := make(map[model.Color]int, len(fontColors))
	for color, hex := range fontColors {
		id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: hex}})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s style: %w", color, err)
		}
		styles[color] = id
	}

	for i, rec := range records {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []interface{}{rec.Address, rec.Phones, rec.Color.String()}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		// anything that is not black is pink
		style, ok := styles[rec.Color]
		if !ok {
			style = styles[model.ColorPink]
		}
		if err := f.SetRowStyle(sheet, rowNum, rowNum, style); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style row %d: %w", rowNum, err)
		}
	}

	return f, nil
}
