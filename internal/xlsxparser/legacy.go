package xlsxparser

import (
	"fmt"

	"github.com/extrame/xls"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
)

// legacyCharset is the code page passed to the BIFF reader for strings that
// are not stored as UTF-16.
const legacyCharset = "utf-8"

// ParseLegacy reads an .xls (BIFF) workbook and returns its selected sheet
// as a table.
func ParseLegacy(filePath string, opts Options) (table *types.Table, err error) {
	// The BIFF reader panics on some truncated or mislabeled files.
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("malformed xls workbook: %v", r)
		}
	}()

	wb, err := xls.Open(filePath, legacyCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet, err := selectLegacySheet(wb, opts.Sheet)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}

	return types.NewTable(filePath, trimLeadingBlankRows(rows))
}

func selectLegacySheet(wb *xls.WorkBook, name string) (*xls.WorkSheet, error) {
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if name == "" {
		return wb.GetSheet(0), nil
	}
	for i := 0; i < wb.NumSheets(); i++ {
		if sheet := wb.GetSheet(i); sheet != nil && sheet.Name == name {
			return sheet, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}
