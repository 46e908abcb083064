// =============================================================================
// Vendor File Processor - Spreadsheet Reader
// =============================================================================
//
// This module reads vendor spreadsheets into raw tables. Two workbook
// variants are supported:
//   - .xlsx (Office Open XML) via excelize       (this file)
//   - .xls  (BIFF, Excel 97-2003) via extrame/xls (legacy.go)
//
// It also reads XLSX synonym templates, which let operators maintain the
// header synonym table in a spreadsheet instead of YAML (template.go).
//
// SHEET SELECTION:
//   Vendor exports almost always carry their data on the first sheet. A
//   specific sheet can be selected by name through Options.Sheet.
//
// CELL VALUES:
//   Cells are read with their display formatting applied, which is what a
//   person looking at the sheet sees. Date-formatted cells are the exception:
//   their serial value is converted to YYYY-MM-DD, since short display
//   formats such as "01-15-24" do not say which part is the year.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/xuri/excelize/v2"
)

// Options controls which sheet is read.
type Options struct {
	// Sheet is the sheet name to read. Empty means the first sheet.
	Sheet string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an .xlsx workbook and returns its selected sheet as a table.
// The first non-empty row of the sheet is the header row.
func Parse(filePath string, opts Options) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, opts)
}

// ParseReader is Parse for an in-memory workbook, such as an upload.
func ParseReader(r io.Reader, name string, opts Options) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, name, opts)
}

func parseFile(f *excelize.File, source string, opts Options) (*types.Table, error) {
	rows, err := readRows(f, opts.Sheet)
	if err != nil {
		return nil, err
	}
	return types.NewTable(source, trimLeadingBlankRows(rows))
}

// ReadRows returns every row of a sheet without header handling.
func ReadRows(filePath, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readRows(f, sheet)
}

// readRows resolves the sheet name and reads all of its rows.
func readRows(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
	}

	if err := convertDateCells(f, sheet, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// =============================================================================
// DATE CELLS
// =============================================================================

// dateLayout is the rendering of converted date cells.
const dateLayout = "2006-01-02"

// convertDateCells rewrites every non-empty cell whose number format is a
// date format with its calendar date. Cells holding text are left alone.
func convertDateCells(f *excelize.File, sheet string, rows [][]string) error {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dateStyles := make(map[int]bool)

	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}

			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil || styleID == 0 {
				continue
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = isDateStyle(f, styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				continue
			}

			raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[r][c] = t.Format(dateLayout)
		}
	}

	return nil
}

// isDateStyle reports whether a cell style formats numbers as dates.
func isDateStyle(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}

	// Built-in date formats: 14-17 and 22 (m/d/yy variants), 27-31, 34-36
	// and 50-58 (East Asian dates). 18-21 and 45-47 are times of day.
	n := style.NumFmt
	return (n >= 14 && n <= 17) || n == 22 ||
		(n >= 27 && n <= 31) || (n >= 34 && n <= 36) || (n >= 50 && n <= 58)
}

// formatLiterals matches quoted text, bracketed sections ("[$-409]",
// "[Red]") and escaped characters in a number format code.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// isDateFormat reports whether a custom number format code contains a day
// or year token.
func isDateFormat(code string) bool {
	code = strings.ToLower(formatLiterals.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "dy")
}

// trimLeadingBlankRows drops empty rows above the header. Some vendor
// exports leave a blank line or two before the header row.
func trimLeadingBlankRows(rows [][]string) [][]string {
	for len(rows) > 0 && isRowEmpty(rows[0]) {
		rows = rows[1:]
	}
	return rows
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
