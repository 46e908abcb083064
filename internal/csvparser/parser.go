// =============================================================================
// Vendor File Processor - CSV Parser Module
// =============================================================================
//
// This module reads delimited-text vendor files into raw tables. Vendor
// exports differ in:
//   - delimiter (comma, pipe, tab, semicolon)
//   - character encoding (UTF-8 with or without BOM, Windows-1252, Latin-1)
//   - quoting discipline (stray quotes inside unquoted fields)
//   - row width (trailing columns dropped on some rows)
//
// All of these are tolerated. Header cells are returned exactly as found so
// the column mapping can be audited against the file.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Settings controls how a delimited file is decoded.
type Settings struct {
	// Delimiter is the field separator. Accepts a single character or one
	// of "tab", "pipe", "semicolon". Default: ","
	Delimiter string

	// Encoding is a WHATWG encoding label ("utf-8", "windows-1252",
	// "iso-8859-1", "utf-16le", ...). Default: "utf-8". A byte order mark
	// always takes precedence over this setting.
	Encoding string
}

// DefaultSettings returns comma-delimited UTF-8.
func DefaultSettings() Settings {
	return Settings{Delimiter: ",", Encoding: "utf-8"}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the raw table.
func Parse(filePath string, settings Settings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings)
}

// ParseReader reads delimited text from r. name is recorded as the table's
// source.
func ParseReader(r io.Reader, name string, settings Settings) (*types.Table, error) {
	decoded, err := decodingReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return types.NewTable(name, allRows)
}

// decodingReader wraps r so it yields UTF-8. A BOM selects UTF-8 or UTF-16
// regardless of label and is stripped.
func decodingReader(r io.Reader, label string) (io.Reader, error) {
	var enc encoding.Encoding = unicode.UTF8
	if label != "" && !strings.EqualFold(label, "utf-8") && !strings.EqualFold(label, "utf8") {
		e, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
		}
		enc = e
	}

	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch strings.ToLower(settings.Delimiter) {
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "|", "pipe":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true
}

// ValidateSettings reports settings that Parse would reject.
func ValidateSettings(settings Settings) error {
	if settings.Encoding != "" && !strings.EqualFold(settings.Encoding, "utf-8") && !strings.EqualFold(settings.Encoding, "utf8") {
		if _, err := htmlindex.Get(settings.Encoding); err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", settings.Encoding, err)
		}
	}
	if len(settings.Delimiter) > 1 {
		switch strings.ToLower(settings.Delimiter) {
		case "\\t", "tab", "pipe", "semicolon":
		default:
			return fmt.Errorf("delimiter %q must be a single character", settings.Delimiter)
		}
	}
	return nil
}
