// =============================================================================
// Vendor File Processor - Value Normalizer
// =============================================================================
//
// This module coerces raw vendor cell values into canonical values. There is
// one function per canonical field type:
//
//   | Function       | Field(s)                                 | Fallback      |
//   |----------------|------------------------------------------|---------------|
//   | NDC            | NDC                                      | "INVALID"     |
//   | Quantity       | Qty                                      | 0             |
//   | Price          | Purchased Price                          | N/A sentinel  |
//   | PurchaseDate   | Date of Purchase                         | null date     |
//   | InvoiceNumber  | Invoice Number                           | ""            |
//   | Text           | Name, Form, Pack Size, Manufacturer, ... | ""            |
//   | Platform       | Platform (from the file name)            | ""            |
//
// TOTALITY:
//   Every function accepts any string and returns a defined value. A single
//   malformed cell must never abort the rest of the file, so there are no
//   error returns here.
//
// IDEMPOTENCE:
//   Feeding a normalized value back in yields the same value.
//
// =============================================================================

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/shopspring/decimal"
)

// NDCDigits is the length of a canonical NDC in digits.
const NDCDigits = 11

// =============================================================================
// IDENTIFIER
// =============================================================================

// NDC keeps only the digits of value, left-pads them with zeros to 11 and
// formats them as 5-4-2 (DDDDD-DDDD-DD). Values with more than 11 digits
// cannot be formatted and become types.InvalidNDC.
//
// EXAMPLES:
//   "12345678901"   -> "12345-6789-01"
//   "123"           -> "00000-0001-23"
//   "00000-0001-23" -> "00000-0001-23"
//   "123456789012"  -> "INVALID"
//   "INVALID"       -> "INVALID"
func NDC(value string) string {
	if strings.TrimSpace(value) == types.InvalidNDC {
		return types.InvalidNDC
	}

	digits := ExtractDigits(value)
	if len(digits) < NDCDigits {
		digits = PadLeft(digits, NDCDigits, '0')
	}
	if len(digits) != NDCDigits {
		return types.InvalidNDC
	}
	return digits[:5] + "-" + digits[5:9] + "-" + digits[9:]
}

// IsFormattedNDC reports whether value is already in 5-4-2 form.
func IsFormattedNDC(value string) bool {
	return formattedNDC.MatchString(value)
}

var formattedNDC = regexp.MustCompile(`^\d{5}-\d{4}-\d{2}$`)

// =============================================================================
// QUANTITY
// =============================================================================

// Quantity parses value as a number and rounds it to a whole quantity.
// Halves round to even ("2.5" -> 2, "3.5" -> 4). Blank, unparseable,
// NaN, infinite and out-of-range values become 0.
func Quantity(value string) int64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	f = math.RoundToEven(f)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// =============================================================================
// PRICE
// =============================================================================

// currencyNoise matches the characters stripped before parsing a price.
var currencyNoise = regexp.MustCompile(`[\$,]`)

// Price strips "$" and "," and surrounding whitespace, then parses the
// rest as a decimal. Anything unparseable, including blanks, yields the
// not-applicable sentinel, which is distinct from a zero price.
//
// EXAMPLES:
//   "$1,234.50" -> 1234.50
//   "0"         -> 0
//   "N/A"       -> N/A
func Price(value string) types.Price {
	s := strings.TrimSpace(currencyNoise.ReplaceAllString(value, ""))
	if s == "" {
		return types.Price{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return types.Price{}
	}
	return types.NewPrice(d)
}

// =============================================================================
// DATE
// =============================================================================

// PurchaseDate parses value with a best-effort multi-format parser and keeps
// only the calendar date. Ambiguous numeric dates are read month first
// ("01/02/2024" is January 2). Unparseable values yield a null date.
func PurchaseDate(value string) types.Date {
	s := strings.TrimSpace(value)
	if s == "" {
		return types.Date{}
	}

	t, ok := parseDate(s)
	if !ok {
		return types.Date{}
	}
	return types.NewDate(t)
}

func parseDate(s string) (t time.Time, ok bool) {
	// dateparse can panic on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err == nil {
		return parsed, true
	}

	for _, layout := range shortDateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// shortDateLayouts are spreadsheet display formats dateparse does not
// accept, e.g. "01-15-24" from a CSV saved out of Excel.
var shortDateLayouts = []string{"01-02-06", "1-2-06"}

// =============================================================================
// TEXT
// =============================================================================

// floatArtifact matches a pure integer that was rendered as a float
// upstream, e.g. "98765.0".
var floatArtifact = regexp.MustCompile(`^-?\d+\.0$`)

// InvoiceNumber renders an invoice identifier as text and removes a
// trailing ".0" when the whole value is a number that went through a float
// ("98765.0" -> "98765"). Alphanumeric values such as "INV-99.0" are kept.
func InvoiceNumber(value string) string {
	s := strings.TrimSpace(value)
	if floatArtifact.MatchString(s) {
		return strings.TrimSuffix(s, ".0")
	}
	return s
}

// Text trims surrounding whitespace.
func Text(value string) string {
	return strings.TrimSpace(value)
}

// Platform derives the platform tag from a file name: a known vendor file
// name maps to its fixed tag, otherwise the first whitespace-delimited
// token is lower-cased ("CVS jan.csv" -> "cvs", "CVS_jan.csv" ->
// "cvs_jan.csv"). knownVendor may be nil.
func Platform(fileName string, knownVendor func(string) (string, bool)) string {
	if knownVendor != nil {
		if tag, ok := knownVendor(fileName); ok {
			return tag
		}
	}

	tokens := strings.Fields(fileName)
	if len(tokens) == 0 {
		return ""
	}
	return strings.ToLower(tokens[0])
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ExtractDigits returns only the ASCII digits of value, in order.
func ExtractDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}
