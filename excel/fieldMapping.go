package excel

import "sort"

// FieldMapping maps the field name of the record to the zero-based column index of the sheet.
type FieldMapping map[string]int

// FieldMappingItem is one resolved entry of a FieldMapping.
type FieldMappingItem struct {
	// the fieldName of the struct represent the row.
	FieldName string
	// the index of the cell in the row.
	ColIndex int
}

// Items returns the entries sorted by field name so errors are reported deterministically.
func (m FieldMapping) Items() []FieldMappingItem {
	items := make([]FieldMappingItem, 0, len(m))
	for name, col := range m {
		items = append(items, FieldMappingItem{FieldName: name, ColIndex: col})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].FieldName < items[j].FieldName
	})
	return items
}

func (m FieldMapping) clone() FieldMapping {
	if m == nil {
		return nil
	}
	c := make(FieldMapping, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
