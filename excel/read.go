package excel

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// selection picks either everything or one entry by index or, for sheets, by name.
type selection struct {
	one   bool
	index int
	name  string
}

// Config describes one binding of workbook rows to records of type T.
//
// Config is a value: every method returns an updated copy and leaves the receiver
// unchanged, so a partly built Config can be shared and specialised freely.
type Config[T any] struct {
	schema  *Schema[T]
	source  Source
	sheet   selection
	row     selection
	skip    int
	mapping FieldMapping
	dst     *[]T
	trim    bool
	layouts []string
	logger  log.FieldLogger
	open    Opener
}

// For starts a configuration producing records of type T described by schema.
// Use SchemaOf[T]() to derive the schema from the struct fields.
func For[T any](schema *Schema[T]) Config[T] {
	return Config[T]{schema: schema, trim: true}
}

// From reads the workbook at path.
func (c Config[T]) From(path string) Config[T] {
	c.source = Source{Path: path}
	return c
}

// FromReader reads the workbook from r, which is consumed by Execute.
func (c Config[T]) FromReader(r io.Reader) Config[T] {
	c.source = Source{Reader: r}
	return c
}

// AllSheets reads every sheet in workbook order. This is the default.
func (c Config[T]) AllSheets() Config[T] {
	c.sheet = selection{}
	return c
}

// Sheet reads only the sheet at the zero-based index.
func (c Config[T]) Sheet(index int) Config[T] {
	c.sheet = selection{one: true, index: index}
	return c
}

// SheetNamed reads only the sheet with the given name.
func (c Config[T]) SheetNamed(name string) Config[T] {
	c.sheet = selection{one: true, name: name}
	return c
}

// AllRows reads every non-blank row of each selected sheet. This is the default.
func (c Config[T]) AllRows() Config[T] {
	c.row = selection{}
	return c
}

// Row reads only the row at the zero-based index of each selected sheet.
func (c Config[T]) Row(index int) Config[T] {
	c.row = selection{one: true, index: index}
	return c
}

// SkipRows ignores the first n non-blank rows of each sheet when all rows are read, e.g. a header.
func (c Config[T]) SkipRows(n int) Config[T] {
	c.skip = n
	return c
}

// WithMapping sets the field name to column index mapping. The map is copied.
func (c Config[T]) WithMapping(m FieldMapping) Config[T] {
	c.mapping = m.clone()
	return c
}

// Into appends the records to *dst instead of returning a fresh slice.
// A nil dst is rejected at once.
func (c Config[T]) Into(dst *[]T) (Config[T], error) {
	if dst == nil {
		return c, configError("provided collection must not be nil")
	}
	c.dst = dst
	return c, nil
}

// TrimSpace controls whether text is trimmed before it is stored in a string field.
func (c Config[T]) TrimSpace(trim bool) Config[T] {
	c.trim = trim
	return c
}

// DateLayouts sets the layouts used to parse time fields from text cells.
func (c Config[T]) DateLayouts(layouts ...string) Config[T] {
	c.layouts = append([]string(nil), layouts...)
	return c
}

// WithLogger replaces the standard logrus logger.
func (c Config[T]) WithLogger(logger log.FieldLogger) Config[T] {
	c.logger = logger
	return c
}

// WithOpener replaces the excelize backed workbook opener.
func (c Config[T]) WithOpener(open Opener) Config[T] {
	c.open = open
	return c
}

// Execute binds the selected rows. See Bind.
func (c Config[T]) Execute() ([]T, error) {
	return Bind(c)
}

// ReadFromSheet reads every row of the named sheet after the header row into T,
// deriving the schema from the struct fields. The first non-blank row is the header.
func ReadFromSheet[T any](filepath string, sheetName string, mapping FieldMapping) ([]T, error) {
	return For(SchemaOf[T]()).From(filepath).SheetNamed(sheetName).SkipRows(1).WithMapping(mapping).Execute()
}

// Bind opens the workbook and builds one T per selected row, in sheet then row order.
//
// Either every row is bound or an error is returned and nothing is appended to the
// collection given to Into. The workbook is closed before Bind returns.
func Bind[T any](c Config[T]) ([]T, error) {
	logger := c.logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	items := c.mapping.Items()
	binders := make([]fieldBinder[T], len(items))
	for i, item := range items {
		binder, err := c.schema.lookup(item.FieldName)
		if err != nil {
			return nil, err
		}
		binders[i] = binder
	}

	open := c.open
	if open == nil {
		open = OpenWorkbook
	}
	wb, err := open(c.source)
	if err != nil {
		return nil, &SourceError{Path: c.source.String(), Err: err}
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			logger.WithField("file", c.source.String()).Warnf("there is a mistake when file close: %v", cerr)
		}
	}()
	logger.WithField("file", c.source.String()).Debugf("workbook opened")

	sheets, err := c.sheets(wb)
	if err != nil {
		return nil, err
	}
	rows, err := c.rows(wb, sheets)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"sheets": sheets, "rows": len(rows)}).Debugf("rows selected")

	cv := coercer{trim: c.trim, date1904: wb.Date1904(), layouts: c.layouts}
	innerItems := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		for i, mapped := range items {
			if err := setField(&item, binders[i], mapped, row, cv, c.schema.typeName); err != nil {
				return nil, err
			}
		}
		innerItems = append(innerItems, item)
	}

	if c.dst != nil {
		*c.dst = append(*c.dst, innerItems...)
		return *c.dst, nil
	}
	return innerItems, nil
}

func setField[T any](item *T, binder fieldBinder[T], mapped FieldMappingItem, row Row, cv coercer, typeName string) error {
	if binder.assign == nil {
		return &FieldError{Type: typeName, Field: mapped.FieldName, Err: ErrAccess}
	}
	cell := row.Cell(mapped.ColIndex)
	if err := binder.assign(item, cell, cv); err != nil {
		value := cell.Raw
		if value == "" {
			value = cell.Text
		}
		return &CoercionError{
			Sheet: row.Sheet,
			Row:   row.Index,
			Col:   mapped.ColIndex,
			Field: mapped.FieldName,
			Value: value,
			Err:   err,
		}
	}
	return nil
}

func (c Config[T]) validate() error {
	switch {
	case c.schema == nil:
		return configError("target type is not set")
	case c.source.empty():
		return configError("source is not set")
	case c.mapping == nil:
		return configError("field mapping is not set")
	case c.sheet.one && c.sheet.name == "" && c.sheet.index < 0:
		return configError("sheet index %d is negative", c.sheet.index)
	case c.row.one && c.row.index < 0:
		return configError("row index %d is negative", c.row.index)
	case c.skip < 0:
		return configError("skipped row count %d is negative", c.skip)
	}
	for name, col := range c.mapping {
		if col < 0 {
			return configError("cell index %d of field %s is negative", col, name)
		}
	}
	return nil
}

// sheets resolves the sheet selection to sheet names.
func (c Config[T]) sheets(wb Workbook) ([]string, error) {
	list := wb.SheetList()
	if !c.sheet.one {
		return list, nil
	}
	if c.sheet.name != "" {
		for _, name := range list {
			if name == c.sheet.name {
				return []string{name}, nil
			}
		}
		return nil, configError("no sheet named %q in %s", c.sheet.name, c.source)
	}
	if c.sheet.index >= len(list) {
		return nil, configError("sheet index %d is out of the sheet count %d", c.sheet.index, len(list))
	}
	return []string{list[c.sheet.index]}, nil
}

// rows applies the row selection to every sheet and concatenates the result.
func (c Config[T]) rows(wb Workbook, sheets []string) ([]Row, error) {
	var selected []Row
	for _, sheet := range sheets {
		sheetRows, err := wb.Rows(sheet)
		if err != nil {
			return nil, &SourceError{Path: c.source.String(), Err: fmt.Errorf("sheet %s: %w", sheet, err)}
		}
		if c.row.one {
			if c.row.index < len(sheetRows) {
				selected = append(selected, sheetRows[c.row.index])
			} else {
				selected = append(selected, Row{Sheet: sheet, Index: c.row.index})
			}
			continue
		}
		skipped := 0
		for _, row := range sheetRows {
			if blank(row) {
				continue
			}
			if skipped < c.skip {
				skipped++
				continue
			}
			selected = append(selected, row)
		}
	}
	return selected, nil
}
