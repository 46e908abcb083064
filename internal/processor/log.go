package processor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
)

// Status is the outcome of one file's pass.
type Status string

// File statuses.
const (
	StatusProcessed   Status = "processed"
	StatusUnsupported Status = "unsupported"
	StatusReadError   Status = "read_error"
)

// LogEntry is the per-file processing log record.
type LogEntry struct {
	// File is the base name of the processed file.
	File string

	// Status is the outcome.
	Status Status

	// Missing lists the required fields that were not resolved. Only set
	// for processed files.
	Missing []string

	// Err is the ingestion error for failed files.
	Err error
}

// String renders the human-readable log line:
//
//	Processed: vendor.csv | Missing: Name, Qty
//	Processed: vendor.csv | Missing: None
//	Unsupported file format: vendor.pdf
//	Error reading vendor.csv: <cause>
func (e LogEntry) String() string {
	switch e.Status {
	case StatusProcessed:
		missing := "None"
		if len(e.Missing) > 0 {
			missing = strings.Join(e.Missing, ", ")
		}
		return fmt.Sprintf("Processed: %s | Missing: %s", e.File, missing)
	case StatusUnsupported:
		return fmt.Sprintf("Unsupported file format: %s", e.File)
	default:
		var re *ingest.ReadError
		cause := e.Err
		if errors.As(e.Err, &re) {
			cause = re.Err
		}
		return fmt.Sprintf("Error reading %s: %v", e.File, cause)
	}
}

// failureEntry classifies an ingestion error.
func failureEntry(fileName string, err error) LogEntry {
	status := StatusReadError
	if ingest.IsUnsupportedFormat(err) {
		status = StatusUnsupported
	}
	return LogEntry{File: fileName, Status: status, Err: err}
}
