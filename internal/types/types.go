// =============================================================================
// Vendor File Processor - Shared Types
// =============================================================================
//
// This package contains the canonical record types shared by the normalizer,
// the processor, the batch session and the writers. Keeping them here avoids
// import cycles between those packages.
//
// SENTINELS:
//   - Price.Valid == false renders as "N/A" (price unknown, never zero)
//   - Date.Valid == false renders as ""    (date unknown, never the epoch)
//   - NDC "INVALID"                         (identifier could not be formed)
//
// =============================================================================

package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CANONICAL FIELD NAMES
// =============================================================================

// Canonical field names. The order of Fields is the output column order.
const (
	FieldNDC           = "NDC"
	FieldName          = "Name"
	FieldForm          = "Form"
	FieldPackSize      = "Pack Size"
	FieldManufacturer  = "Manufacturer"
	FieldQty           = "Qty"
	FieldPrice         = "Purchased Price"
	FieldPlatform      = "Platform"
	FieldSeller        = "Seller"
	FieldPurchaseDate  = "Date of Purchase"
	FieldInvoiceNumber = "Invoice Number"
)

// Fields is the canonical schema in output order.
var Fields = []string{
	FieldNDC,
	FieldName,
	FieldForm,
	FieldPackSize,
	FieldManufacturer,
	FieldQty,
	FieldPrice,
	FieldPlatform,
	FieldSeller,
	FieldPurchaseDate,
	FieldInvoiceNumber,
}

// InvalidNDC is the per-row sentinel for an identifier that cannot be
// formatted as 5-4-2.
const InvalidNDC = "INVALID"

// NotApplicable is how an unknown price is rendered.
const NotApplicable = "N/A"

// DateLayout is the rendering layout for purchase dates.
const DateLayout = "2006-01-02"

// =============================================================================
// VALUE TYPES
// =============================================================================

// Price is a decimal purchase price or the "not applicable" sentinel.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

// NewPrice returns a valid price.
func NewPrice(d decimal.Decimal) Price {
	return Price{Amount: d, Valid: true}
}

// String renders the price, or "N/A" when unknown.
func (p Price) String() string {
	if !p.Valid {
		return NotApplicable
	}
	return p.Amount.String()
}

// Date is a calendar date or null.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// String renders the date as YYYY-MM-DD, or "" when null.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one standardized row. Its fields mirror Fields one to one.
type Record struct {
	NDC           string
	Name          string
	Form          string
	PackSize      string
	Manufacturer  string
	Qty           int64
	Price         Price
	Platform      string
	Seller        string
	PurchaseDate  Date
	InvoiceNumber string

	// SourceRow is the 1-based row number in the source file, header included.
	SourceRow int
}

// Values renders the record in canonical column order.
func (r Record) Values() []string {
	return []string{
		r.NDC,
		r.Name,
		r.Form,
		r.PackSize,
		r.Manufacturer,
		strconv.FormatInt(r.Qty, 10),
		r.Price.String(),
		r.Platform,
		r.Seller,
		r.PurchaseDate.String(),
		r.InvoiceNumber,
	}
}

// RecordSet is the standardized table produced for one file.
type RecordSet struct {
	// SourceFile is the base name of the file the rows came from.
	SourceFile string

	Records []Record
}

// Len returns the number of rows.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// =============================================================================
// RAW TABLE
// =============================================================================

// Table is a raw tabular file as loaded by a reader: the header row exactly
// as found and the data rows below it. Every row has len(Headers) cells.
type Table struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers are the raw column names, untrimmed.
	Headers []string

	// Rows are the data rows in source order.
	Rows [][]string

	// RowNumbers holds the 1-based source record of each row (header is 1).
	RowNumbers []int

	// OverflowCells counts non-blank cells that sat beyond the last header
	// column and were dropped.
	OverflowCells int
}

// Cell returns the value at row i, column j, or "" when out of range.
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.Rows) || j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// RowNumber returns the source record number of row i.
func (t *Table) RowNumber(i int) int {
	if i >= 0 && i < len(t.RowNumbers) {
		return t.RowNumbers[i]
	}
	return i + 2
}

// NewTable builds a Table from raw rows where rows[0] is the header row.
// Blank data rows are dropped and short rows are padded so every row has
// one cell per header. Cells past the last header have no column to land
// in; they are cut and counted in OverflowCells.
func NewTable(source string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers := append([]string(nil), rows[0]...)
	t := &Table{
		SourceFile: source,
		Headers:    headers,
		Rows:       make([][]string, 0, len(rows)-1),
		RowNumbers: make([]int, 0, len(rows)-1),
	}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(headers))
		copy(cells, row)
		if len(row) > len(headers) {
			for _, extra := range row[len(headers):] {
				if strings.TrimSpace(extra) != "" {
					t.OverflowCells++
				}
			}
		}
		t.Rows = append(t.Rows, cells)
		t.RowNumbers = append(t.RowNumbers, i+2)
	}

	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
