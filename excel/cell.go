package excel

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultDateLayouts are tried, in order, when a time field is read from a text cell.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// Cell is one value of a row as reported by the workbook.
type Cell struct {
	// Raw is the stored value without number formatting, e.g. "45021" for a date.
	Raw string
	// Text is the value as displayed, with the cell's number format applied.
	Text string
	// Type is the cell type recorded in the workbook, CellTypeUnset for plain numbers.
	Type excelize.CellType
}

// Blank reports whether the cell holds no value.
func (c Cell) Blank() bool {
	return c.Raw == "" && c.Text == ""
}

// Row is an ordered sequence of cells of one sheet.
type Row struct {
	Sheet string
	// Index is the zero-based row number within the sheet.
	Index int
	Cells []Cell
}

// Cell returns the cell at the zero-based column, a blank cell when the row is shorter.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[col]
}

// coercer converts cells into field values.
type coercer struct {
	trim     bool
	date1904 bool
	layouts  []string
}

// convert the cell to a string field, the displayed text is used
func (cv coercer) toString(c Cell) (string, error) {
	if cv.trim {
		return strings.TrimSpace(c.Text), nil
	}
	return c.Text, nil
}

// convert the cell to an integer field, integral floats such as "3.0" are accepted
func (cv coercer) toInt64(c Cell) (int64, error) {
	if c.Blank() {
		return 0, nil
	}
	str := strings.TrimSpace(c.Raw)
	if intValue, err := strconv.ParseInt(str, 10, 64); err == nil {
		return intValue, nil
	}
	floatValue, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errors.New("failed to convert to a int")
	}
	if floatValue != math.Trunc(floatValue) {
		return 0, errors.New("not an integral value")
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if floatValue >= math.MaxInt64 || floatValue < math.MinInt64 {
		return 0, errors.New("value out of int64 range")
	}
	return int64(floatValue), nil
}

// convert the cell to an unsigned integer field, negative values are rejected
func (cv coercer) toUint64(c Cell) (uint64, error) {
	if c.Blank() {
		return 0, nil
	}
	str := strings.TrimSpace(c.Raw)
	if uintValue, err := strconv.ParseUint(str, 10, 64); err == nil {
		return uintValue, nil
	}
	floatValue, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errors.New("failed to convert to a uint")
	}
	if floatValue != math.Trunc(floatValue) {
		return 0, errors.New("not an integral value")
	}
	// float64(math.MaxUint64) rounds up to 2^64
	if floatValue < 0 || floatValue >= math.MaxUint64 {
		return 0, errors.New("value out of uint64 range")
	}
	return uint64(floatValue), nil
}

// convert the cell to a float field
func (cv coercer) toFloat64(c Cell) (float64, error) {
	if c.Blank() {
		return 0, nil
	}
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
	if err != nil {
		return 0, errors.New("failed to convert to a float")
	}
	return floatValue, nil
}

// convert the cell to a bool field, boolean cells are stored as 1 and 0
func (cv coercer) toBool(c Cell) (bool, error) {
	if c.Blank() {
		return false, nil
	}
	switch strings.ToUpper(strings.TrimSpace(c.Raw)) {
	case "TRUE", "1":
		return true, nil
	case "FALSE", "0":
		return false, nil
	}
	return false, errors.New("failed to convert to a bool")
}

// convert the cell to a time.Time field. Numbers are serial dates, text is parsed with the layouts.
func (cv coercer) toTime(c Cell) (time.Time, error) {
	if c.Blank() {
		return time.Time{}, nil
	}
	str := strings.TrimSpace(c.Raw)
	if c.Type != excelize.CellTypeSharedString && c.Type != excelize.CellTypeInlineString {
		if floatValue, err := strconv.ParseFloat(str, 64); err == nil {
			toTime, err := excelize.ExcelDateToTime(floatValue, cv.date1904)
			if err != nil {
				return time.Time{}, errors.New("failed to convert to a time")
			}
			return toTime, nil
		}
	}
	layouts := cv.layouts
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, layout := range layouts {
		if toTime, err := time.Parse(layout, str); err == nil {
			return toTime, nil
		}
	}
	return time.Time{}, errors.New("failed to convert to a time")
}

// cellName converts zero-based coordinates to a name like "B3", used in messages only.
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "R" + strconv.Itoa(row+1) + "C" + strconv.Itoa(col+1)
	}
	return name
}
