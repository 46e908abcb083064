// =============================================================================
// Vendor File Processor - Processor Module
// =============================================================================
//
// This module contains the per-file pipeline. It takes one vendor file from
// raw bytes to a standardized record set.
//
// PROCESSING PIPELINE:
//   1. Load the file through the ingestion adapter
//   2. Resolve raw headers to canonical fields
//   3. Normalize every canonical column for every row
//   4. Derive the platform tag from the file name
//   5. Compute the missing required fields from the mapping
//   6. Build the log entry
//
// Only step 1 can fail a file. Unresolved fields and malformed cells resolve
// to sentinels and never abort the remaining rows or columns.
//
// CONCURRENCY:
//   A Processor holds only read-only state and can process many files
//   concurrently.
//
// =============================================================================

package processor

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
	"github.com/ginjaninja78/vendor-file-processor/internal/normalize"
	"github.com/ginjaninja78/vendor-file-processor/internal/resolver"
	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/rs/zerolog"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Records is the standardized table, or nil if ingestion failed.
	Records *types.RecordSet

	// Log is the per-file log entry.
	Log LogEntry

	// Mapping is the column mapping. It is empty if ingestion failed.
	Mapping resolver.Mapping

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// Success reports whether the file produced a record set.
func (r Result) Success() bool {
	return r.Records != nil
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows read from the file.
	RowsProcessed int

	// FieldsResolved is the number of canonical fields bound to a column.
	FieldsResolved int

	// InvalidIdentifiers is the number of rows whose NDC is INVALID.
	InvalidIdentifiers int

	// UnknownPrices is the number of rows whose price is N/A.
	UnknownPrices int

	// NullDates is the number of rows without a purchase date.
	NullDates int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor runs the per-file pipeline.
type Processor struct {
	registry *schema.Registry
	resolver *resolver.Resolver
	adapter  *ingest.Adapter
	logger   zerolog.Logger
}

// New creates a Processor.
func New(registry *schema.Registry, adapter *ingest.Adapter, logger zerolog.Logger) *Processor {
	return &Processor{
		registry: registry,
		resolver: resolver.New(registry),
		adapter:  adapter,
		logger:   logger,
	}
}

// Registry returns the schema registry the processor resolves against.
func (p *Processor) Registry() *schema.Registry {
	return p.registry
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Process runs the pipeline for one file. It never returns an error: an
// ingestion failure is reported through Result.Log and a nil record set.
func (p *Processor) Process(path string) Result {
	startTime := time.Now()
	fileName := filepath.Base(path)
	log := p.logger.With().Str("file", fileName).Logger()

	result := Result{FilePath: path}

	// =========================================================================
	// STEP 1: INGEST
	// =========================================================================

	table, err := p.adapter.Load(path)
	if err != nil {
		result.Log = failureEntry(fileName, err)
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error().Err(err).Str("status", string(result.Log.Status)).Msg("File skipped")
		return result
	}

	log.Debug().
		Int("columns", len(table.Headers)).
		Int("rows", len(table.Rows)).
		Msg("Loaded file")
	if table.OverflowCells > 0 {
		log.Debug().
			Int("cells", table.OverflowCells).
			Msg("Dropped cells beyond the last header column")
	}

	// =========================================================================
	// STEP 2: RESOLVE COLUMNS
	// =========================================================================

	mapping := p.resolver.Resolve(table.Headers)
	result.Mapping = mapping
	result.Stats.FieldsResolved = mapping.Resolved()

	for _, field := range mapping.Fields() {
		if b, ok := mapping.Get(field); ok {
			log.Debug().
				Str("field", field).
				Str("column", b.Header).
				Str("method", b.Method).
				Msg("Resolved column")
		}
	}

	// =========================================================================
	// STEP 3-4: NORMALIZE
	// =========================================================================

	platform := p.adapter.Platform(path)
	records := p.normalizeRows(table, mapping, platform)

	result.Records = &types.RecordSet{SourceFile: fileName, Records: records}
	result.Stats.RowsProcessed = len(records)
	for _, rec := range records {
		if rec.NDC == types.InvalidNDC {
			result.Stats.InvalidIdentifiers++
		}
		if !rec.Price.Valid {
			result.Stats.UnknownPrices++
		}
		if !rec.PurchaseDate.Valid {
			result.Stats.NullDates++
		}
	}

	// =========================================================================
	// STEP 5-6: REPORT
	// =========================================================================

	missing := mapping.Missing(p.registry)
	result.Log = LogEntry{
		File:    fileName,
		Status:  StatusProcessed,
		Missing: missing,
	}
	if len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("Required fields unresolved")
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	log.Info().
		Int("rows", result.Stats.RowsProcessed).
		Int("resolved", result.Stats.FieldsResolved).
		Int("invalid_ndc", result.Stats.InvalidIdentifiers).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("Processed file")

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// normalizeRows builds one canonical record per source row, in source order.
func (p *Processor) normalizeRows(table *types.Table, mapping resolver.Mapping, platform string) []types.Record {
	column := func(field string) int {
		if b, ok := mapping.Get(field); ok {
			return b.Index
		}
		return -1
	}

	var (
		ndcCol      = column(types.FieldNDC)
		nameCol     = column(types.FieldName)
		formCol     = column(types.FieldForm)
		packCol     = column(types.FieldPackSize)
		mfrCol      = column(types.FieldManufacturer)
		qtyCol      = column(types.FieldQty)
		priceCol    = column(types.FieldPrice)
		sellerCol   = column(types.FieldSeller)
		dateCol     = column(types.FieldPurchaseDate)
		invoiceCol  = column(types.FieldInvoiceNumber)
		ndcFallback []int
	)

	// Second tier for the identifier: only when no column resolved.
	if ndcCol < 0 {
		ndcFallback = fallbackColumns(table.Headers, p.registry.IdentifierFallback())
	}

	records := make([]types.Record, len(table.Rows))
	for i := range table.Rows {
		cell := func(col int) string {
			if col < 0 {
				return ""
			}
			return table.Cell(i, col)
		}

		rawNDC := cell(ndcCol)
		if ndcCol < 0 {
			rawNDC = firstValue(table, i, ndcFallback)
		}

		records[i] = types.Record{
			NDC:           normalize.NDC(rawNDC),
			Name:          normalize.Text(cell(nameCol)),
			Form:          normalize.Text(cell(formCol)),
			PackSize:      normalize.Text(cell(packCol)),
			Manufacturer:  normalize.Text(cell(mfrCol)),
			Qty:           normalize.Quantity(cell(qtyCol)),
			Price:         normalize.Price(cell(priceCol)),
			Platform:      platform,
			Seller:        normalize.Text(cell(sellerCol)),
			PurchaseDate:  normalize.PurchaseDate(cell(dateCol)),
			InvoiceNumber: normalize.InvoiceNumber(cell(invoiceCol)),
			SourceRow:     table.RowNumber(i),
		}
	}

	return records
}

// fallbackColumns returns the column positions of the fallback names present
// in headers, in list order. Header names are compared trimmed.
func fallbackColumns(headers []string, names []string) []int {
	position := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if _, seen := position[h]; !seen {
			position[h] = i
		}
	}

	var cols []int
	for _, name := range names {
		if i, ok := position[strings.TrimSpace(name)]; ok {
			cols = append(cols, i)
		}
	}
	return cols
}

// firstValue returns the first non-blank value among cols in row i.
func firstValue(table *types.Table, i int, cols []int) string {
	for _, col := range cols {
		if v := strings.TrimSpace(table.Cell(i, col)); v != "" {
			return v
		}
	}
	return ""
}
