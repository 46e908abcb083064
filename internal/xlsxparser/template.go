package xlsxparser

import (
	"fmt"
	"strings"
)

// =============================================================================
// SYNONYM TEMPLATE
// =============================================================================
//
// A synonym template is a workbook whose first sheet lists one raw header
// spelling per row:
//
//   | Column A        | Column B             | Column C | Column D        |
//   |-----------------|----------------------|----------|-----------------|
//   | Canonical Field | Raw Header           | Required | Pattern         |
//   | NDC             | Material Number      | yes      |                 |
//   | Qty             | Units Shipped        |          | \bunits?\b      |
//   | Seller          | Distributor Name     |          |                 |
//
// A row may leave Raw Header blank to only set Required or Pattern.

// TemplateColumns defines which columns in the template hold which data.
// Column indices are 0-based (A=0, B=1, ...).
type TemplateColumns struct {
	FieldColumn    int
	HeaderColumn   int
	RequiredColumn int
	PatternColumn  int

	// DataStartRow is the first row holding data (0-based). Row 0 is the
	// template's own header row.
	DataStartRow int
}

// DefaultTemplateColumns returns the A-D layout shown above.
func DefaultTemplateColumns() TemplateColumns {
	return TemplateColumns{
		FieldColumn:    0, // Column A
		HeaderColumn:   1, // Column B
		RequiredColumn: 2, // Column C
		PatternColumn:  3, // Column D
		DataStartRow:   1, // Row 2
	}
}

// TemplateRow is one parsed template row.
type TemplateRow struct {
	Field     string
	RawHeader string
	Required  bool
	Pattern   string

	// Row is the 1-based sheet row, for error messages.
	Row int
}

// ParseTemplate reads a synonym template using DefaultTemplateColumns.
func ParseTemplate(templatePath string) ([]TemplateRow, error) {
	return ParseTemplateWithConfig(templatePath, DefaultTemplateColumns())
}

// ParseTemplateWithConfig reads a synonym template with a custom layout.
func ParseTemplateWithConfig(templatePath string, columns TemplateColumns) ([]TemplateRow, error) {
	rows, err := ReadRows(templatePath, "")
	if err != nil {
		return nil, err
	}

	var out []TemplateRow
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		parsed := TemplateRow{
			Field:     getCell(columns.FieldColumn),
			RawHeader: getCell(columns.HeaderColumn),
			Required:  normalizeRequired(getCell(columns.RequiredColumn)),
			Pattern:   getCell(columns.PatternColumn),
			Row:       i + 1,
		}
		if parsed.Field == "" {
			return nil, fmt.Errorf("row %d: canonical field is empty", i+1)
		}

		out = append(out, parsed)
	}

	return out, nil
}

// normalizeRequired interprets the Required column. Anything not clearly
// affirmative is treated as not required.
func normalizeRequired(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "required", "req", "r", "yes", "y", "true", "1", "mandatory", "x":
		return true
	default:
		return false
	}
}
