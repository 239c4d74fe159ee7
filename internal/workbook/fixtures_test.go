package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetFixture struct {
	name string
	rows [][]interface{}
}

// writeWorkbook saves the given sheets, in order, to a fresh .xlsx under t.TempDir().
func writeWorkbook(t *testing.T, sheets ...sheetFixture) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
