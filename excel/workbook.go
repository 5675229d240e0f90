package excel

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Source locates the workbook, either a file path or an already opened reader.
type Source struct {
	Path   string
	Reader io.Reader
}

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Reader != nil {
		return "<reader>"
	}
	return ""
}

func (s Source) empty() bool {
	return s.Path == "" && s.Reader == nil
}

// Workbook is what the binder needs from a spreadsheet library.
type Workbook interface {
	// SheetList returns the sheet names in workbook order.
	SheetList() []string
	// Rows returns every row of the sheet top to bottom, blank rows included,
	// so that Row.Index equals the position in the slice.
	Rows(sheet string) ([]Row, error)
	// Date1904 reports whether serial dates count from 1904.
	Date1904() bool
	Close() error
}

// Opener opens the workbook named by the source.
type Opener func(src Source) (Workbook, error)

type xlsxWorkbook struct {
	f        *excelize.File
	date1904 bool
}

// OpenWorkbook opens an xlsx workbook with excelize. It is the default Opener.
func OpenWorkbook(src Source) (Workbook, error) {
	var (
		f   *excelize.File
		err error
	)
	if src.Reader != nil {
		f, err = excelize.OpenReader(src.Reader)
	} else {
		f, err = excelize.OpenFile(src.Path)
	}
	if err != nil {
		return nil, err
	}
	wb := &xlsxWorkbook{f: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (wb *xlsxWorkbook) SheetList() []string {
	return wb.f.GetSheetList()
}

func (wb *xlsxWorkbook) Date1904() bool {
	return wb.date1904
}

func (wb *xlsxWorkbook) Close() error {
	log.Tracef("the xlsx file will be closed")
	return wb.f.Close()
}

// Rows reads the sheet twice: once raw for numbers and dates, once formatted for text.
func (wb *xlsxWorkbook) Rows(sheet string) ([]Row, error) {
	rawRows, err := wb.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	textRows, err := wb.f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(rawRows))
	for idx, raw := range rawRows {
		var text []string
		if idx < len(textRows) {
			text = textRows[idx]
		}
		width := len(raw)
		if len(text) > width {
			width = len(text)
		}
		cells := make([]Cell, width)
		for col := range cells {
			if col < len(raw) {
				cells[col].Raw = raw[col]
			}
			if col < len(text) {
				cells[col].Text = text[col]
			}
			if cells[col].Blank() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(col+1, idx+1)
			if err != nil {
				return nil, err
			}
			if cells[col].Type, err = wb.f.GetCellType(sheet, name); err != nil {
				return nil, err
			}
		}
		rows[idx] = Row{Sheet: sheet, Index: idx, Cells: cells}
	}
	return rows, nil
}

// blank reports whether the row has no value in any cell.
func blank(r Row) bool {
	for _, c := range r.Cells {
		if !c.Blank() {
			return false
		}
	}
	return true
}
