// =============================================================================
// Vendor File Processor - Output Writers
// =============================================================================
//
// This module persists a batch session:
//
//   | Output             | Format | Columns                           |
//   |--------------------|--------|-----------------------------------|
//   | combined table     | CSV    | canonical fields, schema order    |
//   | combined table     | XLSX   | same, typed cells                 |
//   | mapping artifact   | CSV    | File + one column per field       |
//   | processing log     | text   | one line per file                 |
//
// Writers take an io.Writer where possible; WriteFile wraps them for paths.
//
// =============================================================================

package writer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/xuri/excelize/v2"
)

// CombinedSheet is the sheet name of the XLSX export.
const CombinedSheet = "Combined"

// =============================================================================
// CSV OUTPUTS
// =============================================================================

// WriteCombinedCSV writes records under the canonical header row.
func WriteCombinedCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Fields); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Values()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMapping writes the mapping artifact.
func WriteMapping(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write mapping rows: %w", err)
	}
	return nil
}

// WriteLog writes one line per entry.
func WriteLog(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile creates path (and its directory) and hands it to fn.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// =============================================================================
// XLSX OUTPUT
// =============================================================================

// WriteCombinedXLSX writes records to a workbook at path. Quantities and
// prices are numeric cells; N/A prices and null dates stay text and blank.
func WriteCombinedXLSX(path string, records []types.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CombinedSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(types.Fields))
	for i, name := range types.Fields {
		header[i] = name
	}
	if err := f.SetSheetRow(CombinedSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(CombinedSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(rec)
		if err := f.SetSheetRow(CombinedSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func xlsxRow(rec types.Record) []interface{} {
	var price interface{} = types.NotApplicable
	if rec.Price.Valid {
		price = rec.Price.Amount.InexactFloat64()
	}

	return []interface{}{
		rec.NDC,
		rec.Name,
		rec.Form,
		rec.PackSize,
		rec.Manufacturer,
		rec.Qty,
		price,
		rec.Platform,
		rec.Seller,
		rec.PurchaseDate.String(),
		rec.InvoiceNumber,
	}
}
