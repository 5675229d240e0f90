package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetData struct {
	name string
	rows [][]any
}

// writeWorkbook saves the sheets, in order, to a temporary xlsx file and returns its path.
func writeWorkbook(t *testing.T, sheets ...sheetData) string {
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
		for r := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &s.rows[r]))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// fakeWorkbook serves rows from memory and records whether it was closed.
type fakeWorkbook struct {
	sheets   []string
	rows     map[string][]Row
	rowsErr  error
	date1904 bool
	closed   bool
}

func (wb *fakeWorkbook) SheetList() []string { return wb.sheets }

func (wb *fakeWorkbook) Rows(sheet string) ([]Row, error) {
	if wb.rowsErr != nil {
		return nil, wb.rowsErr
	}
	return wb.rows[sheet], nil
}

func (wb *fakeWorkbook) Date1904() bool { return wb.date1904 }

func (wb *fakeWorkbook) Close() error {
	wb.closed = true
	return nil
}

func textRow(sheet string, index int, values ...string) Row {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Raw: v, Text: v}
	}
	return Row{Sheet: sheet, Index: index, Cells: cells}
}
