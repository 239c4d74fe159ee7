package workbook

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/model"
)

// Loader reads the primary and reference tables out of .xlsx workbooks.
// Every cell is read as its displayed text.
type Loader struct {
	Input config.InputConfig
}

func NewLoader(cfg config.InputConfig) *Loader {
	return &Loader{Input: cfg}
}

func (l *Loader) LoadPrimary(path string) ([]model.PrimaryRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return l.primary(f, path)
}

// LoadPrimaryFrom reads an uploaded workbook; name is used only in errors.
func (l *Loader) LoadPrimaryFrom(r io.Reader, name string) ([]model.PrimaryRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	defer f.Close()
	return l.primary(f, name)
}

func (l *Loader) LoadReference(path string) ([]model.ReferenceRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return l.reference(f, path)
}

func (l *Loader) LoadReferenceFrom(r io.Reader, name string) ([]model.ReferenceRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	defer f.Close()
	return l.reference(f, name)
}

func (l *Loader) primary(f *excelize.File, name string) ([]model.PrimaryRecord, error) {
	rows, err := readColumns(f, name, l.Input.PrimarySheet, l.Input.PrimaryAddressColumn, l.Input.PrimaryPhoneColumn)
	if err != nil {
		return nil, err
	}

	records := make([]model.PrimaryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.PrimaryRecord{Address: row[0], Phone: row[1]})
	}
	return records, nil
}

// reference concatenates the configured sheets in order, keeping row order inside each.
func (l *Loader) reference(f *excelize.File, name string) ([]model.ReferenceRecord, error) {
	var records []model.ReferenceRecord
	for _, sheet := range l.Input.ReferenceSheets {
		rows, err := readColumns(f, name, sheet, l.Input.ReferenceAddressColumn, l.Input.ReferencePhoneColumn)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			records = append(records, model.ReferenceRecord{
				Address:     row[0],
				Phone:       row[1],
				OriginSheet: sheet,
			})
		}
	}
	return records, nil
}

// readColumns returns, for every non-blank data row of sheet, the values of columns in the
// order requested. The first row is the header.
func readColumns(f *excelize.File, name, sheet string, columns ...string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, &LoadError{Path: name, Sheet: sheet, Err: err}
	}
	if idx == -1 {
		return nil, &LoadError{Path: name, Sheet: sheet}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Path: name, Sheet: sheet, Err: err}
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := headerMap[h]; !dup {
			headerMap[h] = i
		}
	}

	indices := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := headerMap[col]
		if !ok {
			return nil, &LoadError{Path: name, Sheet: sheet, Column: col}
		}
		indices[i] = pos
	}

	if len(rows) < 2 {
		return nil, nil
	}

	var out [][]string
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		values := make([]string, len(indices))
		for i, pos := range indices {
			if pos < len(row) {
				values[i] = row[pos]
			}
		}
		out = append(out, values)
	}
	return out, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
