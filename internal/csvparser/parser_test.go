package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReader(t *testing.T) {
	input := "NDC Number, Name ,Qty\n" +
		"12345678901,Amoxicillin,5\n" +
		"\n" +
		"  ,  ,  \n" +
		"555,\"Ibuprofen, 200mg\"\n"

	table, err := ParseReader(strings.NewReader(input), "vendor.csv", DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, "vendor.csv", table.SourceFile)
	assert.Equal(t, []string{"NDC Number", " Name ", "Qty"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"12345678901", "Amoxicillin", "5"}, table.Rows[0])
	assert.Equal(t, []string{"555", "Ibuprofen, 200mg", ""}, table.Rows[1])
	assert.Equal(t, 2, table.RowNumber(0))
	assert.Equal(t, 4, table.RowNumber(1))
}

func TestParseReaderStripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfNDC,Qty\n1,2\n"

	table, err := ParseReader(strings.NewReader(input), "bom.csv", DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "NDC", table.Headers[0])
}

func TestParseReaderWindows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid as UTF-8.
	input := "Name,Qty\nCaf\xe9 Pharma,1\n"

	table, err := ParseReader(strings.NewReader(input), "legacy.csv", Settings{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Café Pharma", table.Cell(0, 0))
}

func TestParseReaderDelimiters(t *testing.T) {
	tests := []struct {
		delimiter string
		input     string
	}{
		{"tab", "NDC\tQty\n1\t2\n"},
		{"\\t", "NDC\tQty\n1\t2\n"},
		{"pipe", "NDC|Qty\n1|2\n"},
		{";", "NDC;Qty\n1;2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.delimiter, func(t *testing.T) {
			table, err := ParseReader(strings.NewReader(tt.input), "x.csv", Settings{Delimiter: tt.delimiter})
			require.NoError(t, err)
			assert.Equal(t, []string{"NDC", "Qty"}, table.Headers)
			assert.Equal(t, "2", table.Cell(0, 1))
		})
	}
}

func TestParseReaderLazyQuotes(t *testing.T) {
	input := "Name,Pack Size\nTylenol 5\" strip,100\n"

	table, err := ParseReader(strings.NewReader(input), "x.csv", DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, `Tylenol 5" strip`, table.Cell(0, 0))
}

func TestParseEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Parse(path, DefaultSettings())
	assert.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), DefaultSettings())
	assert.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(DefaultSettings()))
	assert.NoError(t, ValidateSettings(Settings{Delimiter: "tab", Encoding: "latin1"}))
	assert.Error(t, ValidateSettings(Settings{Delimiter: "::"}))
	assert.Error(t, ValidateSettings(Settings{Encoding: "klingon"}))

	_, err := ParseReader(strings.NewReader("a\n"), "x.csv", Settings{Encoding: "klingon"})
	assert.Error(t, err)
}
