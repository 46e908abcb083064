// =============================================================================
// Vendor File Processor - File Ingestion Adapter
// =============================================================================
//
// The adapter turns a file path into a raw table. It picks a reader from the
// file extension (a closed set) and wraps reader failures so the caller can
// tell the two file-scoped failure kinds apart:
//
//   | Extension | Reader                 | Failure kinds             |
//   |-----------|------------------------|---------------------------|
//   | .csv      | csvparser (delimited)  | ReadError                 |
//   | .xlsx     | xlsxparser (excelize)  | ReadError                 |
//   | .xls      | xlsxparser (BIFF)      | ReadError                 |
//   | other     | none                   | ErrUnsupportedFormat      |
//
// Neither failure is session-fatal; the batch continues with other files.
//
// =============================================================================

package ingest

import (
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/csvparser"
	"github.com/ginjaninja78/vendor-file-processor/internal/normalize"
	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/ginjaninja78/vendor-file-processor/internal/xlsxparser"
)

// Supported extensions, lower-case.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

// SupportedExtensions is the closed set of readable extensions.
var SupportedExtensions = []string{ExtCSV, ExtXLSX, ExtXLS}

// Options configures the readers.
type Options struct {
	// CSV controls delimited-text decoding.
	CSV csvparser.Settings

	// Sheet selects a workbook sheet by name. Empty means the first sheet.
	Sheet string
}

// DefaultOptions returns comma-delimited UTF-8 and the first sheet.
func DefaultOptions() Options {
	return Options{CSV: csvparser.DefaultSettings()}
}

// Adapter loads vendor files.
type Adapter struct {
	opts     Options
	registry *schema.Registry
}

// New returns an adapter. The registry supplies the known-vendor table
// used for platform detection.
func New(registry *schema.Registry, opts Options) *Adapter {
	return &Adapter{opts: opts, registry: registry}
}

// Extension returns the lower-cased extension of path.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	switch Extension(path) {
	case ExtCSV, ExtXLSX, ExtXLS:
		return true
	default:
		return false
	}
}

// Load reads path into a raw table. It returns a *FormatError (matching
// ErrUnsupportedFormat) before touching the file when the extension is not
// supported, and a *ReadError when the reader fails.
func (a *Adapter) Load(path string) (*types.Table, error) {
	ext := Extension(path)

	var (
		table *types.Table
		err   error
	)
	switch ext {
	case ExtCSV:
		table, err = csvparser.Parse(path, a.opts.CSV)
	case ExtXLSX:
		table, err = xlsxparser.Parse(path, xlsxparser.Options{Sheet: a.opts.Sheet})
	case ExtXLS:
		table, err = xlsxparser.ParseLegacy(path, xlsxparser.Options{Sheet: a.opts.Sheet})
	default:
		return nil, &FormatError{Path: path, Extension: ext}
	}

	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return table, nil
}

// Platform derives the platform tag for a file from its base name.
func (a *Adapter) Platform(path string) string {
	return normalize.Platform(filepath.Base(path), a.registry.KnownVendor)
}
