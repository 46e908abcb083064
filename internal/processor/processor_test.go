package processor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor() *Processor {
	registry := schema.Default()
	return New(registry, ingest.New(registry, ingest.DefaultOptions()), zerolog.Nop())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessEndToEnd(t *testing.T) {
	path := writeFile(t, "CVS_jan.csv",
		"Item,DrugName,QTY,Invoice Date,Invoice No.\n"+
			"123456789012,Amoxicillin,5,2024-01-15,INV-99.0\n")

	res := newProcessor().Process(path)
	require.True(t, res.Success())
	require.Equal(t, 1, res.Records.Len())

	rec := res.Records.Records[0]
	assert.Equal(t, "cvs_jan.csv", rec.Platform)
	assert.Equal(t, types.InvalidNDC, rec.NDC)
	assert.Equal(t, "Amoxicillin", rec.Name)
	assert.Equal(t, int64(5), rec.Qty)
	assert.Equal(t, "2024-01-15", rec.PurchaseDate.String())
	assert.Equal(t, "INV-99.0", rec.InvoiceNumber)
	assert.False(t, rec.Price.Valid)
	assert.Equal(t, 2, rec.SourceRow)

	assert.Equal(t, "Item", res.Mapping.Header(types.FieldNDC))
	assert.Equal(t, "Invoice No.", res.Mapping.Header(types.FieldInvoiceNumber))
	assert.Empty(t, res.Log.Missing)
	assert.Equal(t, "Processed: CVS_jan.csv | Missing: None", res.Log.String())

	assert.Equal(t, 1, res.Stats.RowsProcessed)
	assert.Equal(t, 1, res.Stats.InvalidIdentifiers)
	assert.Equal(t, 1, res.Stats.UnknownPrices)
}

func TestProcessNormalizesEveryColumn(t *testing.T) {
	path := writeFile(t, "kinray.csv",
		"NDC Number,Name,Form,Pack Size,MFR,Qty,Price,Seller,Date,Invoice Number\n"+
			"123,Lisinopril 10mg,Tablet,100,Lupin,3.7,\"$1,234.50\",Kinray,01/02/2024,98765.0\n"+
			"abc,,, , ,abc,N/A,,garbage,\n")

	res := newProcessor().Process(path)
	require.True(t, res.Success())
	require.Equal(t, 2, res.Records.Len())

	first := res.Records.Records[0]
	assert.Equal(t, []string{
		"00000-0001-23", "Lisinopril 10mg", "Tablet", "100", "Lupin", "4", "1234.5",
		"kinray", "Kinray", "2024-01-02", "98765",
	}, first.Values())

	second := res.Records.Records[1]
	assert.Equal(t, "00000-0000-00", second.NDC)
	assert.Equal(t, int64(0), second.Qty)
	assert.Equal(t, types.NotApplicable, second.Price.String())
	assert.False(t, second.PurchaseDate.Valid)
	assert.Equal(t, 3, second.SourceRow)

	assert.Equal(t, 1, res.Stats.NullDates)
}

func TestProcessMissingRequiredFields(t *testing.T) {
	path := writeFile(t, "Walgreens export.csv", "Item,Seller\n00002143380,Walgreens\n")

	res := newProcessor().Process(path)
	require.True(t, res.Success())

	assert.Equal(t, []string{types.FieldName, types.FieldQty, types.FieldPurchaseDate}, res.Log.Missing)
	assert.Equal(t, "Processed: Walgreens export.csv | Missing: Name, Qty, Date of Purchase", res.Log.String())
	assert.Equal(t, "walgreens", res.Records.Records[0].Platform)

	// Unresolved columns are blank, not absent.
	assert.Equal(t, "", res.Records.Records[0].Name)
}

func TestProcessIdentifierFallbackColumns(t *testing.T) {
	registry, err := schema.New(schema.Definition{
		Required:           []string{types.FieldName},
		Synonyms:           map[string][]string{types.FieldName: {"Name"}},
		IdentifierFallback: []string{"Selling Unit NDC", "Inner NDC Nbr", "UPC"},
	})
	require.NoError(t, err)
	p := New(registry, ingest.New(registry, ingest.DefaultOptions()), zerolog.Nop())

	path := writeFile(t, "abc.csv",
		"Name,Inner NDC Nbr,Selling Unit NDC\n"+
			"A,11111111111,\n"+
			"B,22222222222,33333333333\n"+
			"C,,\n")

	res := p.Process(path)
	require.True(t, res.Success())
	assert.False(t, res.Mapping.IsResolved(types.FieldNDC))

	got := make([]string, res.Records.Len())
	for i, rec := range res.Records.Records {
		got[i] = rec.NDC
	}
	assert.Equal(t, []string{"11111-1111-11", "33333-3333-33", "00000-0000-00"}, got)
}

func TestProcessFallbackNotUsedWhenResolved(t *testing.T) {
	path := writeFile(t, "abc.csv", "NDC,UPC,Name\n,55555555555,X\n")

	res := newProcessor().Process(path)
	require.True(t, res.Success())
	assert.Equal(t, "NDC", res.Mapping.Header(types.FieldNDC))
	assert.Equal(t, "00000-0000-00", res.Records.Records[0].NDC)
}

func TestProcessUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "invoice.pdf", "%PDF-1.4")

	res := newProcessor().Process(path)
	assert.False(t, res.Success())
	assert.Nil(t, res.Records)
	assert.True(t, res.Mapping.IsEmpty())
	assert.Equal(t, StatusUnsupported, res.Log.Status)
	assert.Equal(t, "Unsupported file format: invoice.pdf", res.Log.String())
	assert.True(t, errors.Is(res.Log.Err, ingest.ErrUnsupportedFormat))
}

func TestProcessReadError(t *testing.T) {
	path := writeFile(t, "broken.xlsx", "not a workbook")

	res := newProcessor().Process(path)
	assert.False(t, res.Success())
	assert.Equal(t, StatusReadError, res.Log.Status)
	assert.Contains(t, res.Log.String(), "Error reading broken.xlsx: ")
	assert.NotContains(t, res.Log.String(), "error reading")
}
