package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDefaultDefinitionIsClean(t *testing.T) {
	assert.Empty(t, Validate(DefaultDefinition()))
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.Equal(t, types.Fields, r.Fields())
	assert.Equal(t, []string{types.FieldNDC, types.FieldName, types.FieldQty, types.FieldPurchaseDate}, r.Required())
	assert.True(t, r.IsRequired(types.FieldQty))
	assert.False(t, r.IsRequired(types.FieldSeller))

	field, ok := r.Lookup("Invoice No.")
	require.True(t, ok)
	assert.Equal(t, types.FieldInvoiceNumber, field)

	field, ok = r.Lookup("  QTY  ")
	require.True(t, ok)
	assert.Equal(t, types.FieldQty, field)

	_, ok = r.Lookup("qty")
	assert.False(t, ok)

	tag, ok := r.KnownVendor("Kinray.CSV")
	require.True(t, ok)
	assert.Equal(t, "kinray", tag)

	assert.Equal(t, []string{"Selling Unit NDC", "Inner NDC Nbr", "UPC"}, r.IdentifierFallback())
	assert.NotNil(t, r.Pattern(types.FieldPurchaseDate))

	assert.Greater(t, r.SynonymCount(), len(types.Fields))
	assert.Contains(t, r.String(), fmt.Sprintf("%d synonyms", r.SynonymCount()))
}

func TestNewFirstRegistrationWins(t *testing.T) {
	def := Definition{
		Required: []string{types.FieldNDC},
		Synonyms: map[string][]string{
			types.FieldNDC:          {"Code"},
			types.FieldInvoiceNumber: {"Code", "Invoice"},
		},
	}

	issues := Validate(def)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Error(), `already registered for "NDC"`)

	r, err := New(def)
	require.NoError(t, err)

	field, ok := r.Lookup("Code")
	require.True(t, ok)
	assert.Equal(t, types.FieldNDC, field)
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		section string
	}{
		{
			name:    "unknown required field",
			def:     Definition{Required: []string{"Lot"}},
			section: "required",
		},
		{
			name:    "unknown synonym field",
			def:     Definition{Synonyms: map[string][]string{"Lot": {"Lot No"}}},
			section: "synonyms",
		},
		{
			name:    "bad pattern",
			def:     Definition{Patterns: map[string]string{types.FieldQty: "(qty"}},
			section: "patterns",
		},
		{
			name:    "platform synonym",
			def:     Definition{Synonyms: map[string][]string{types.FieldPlatform: {"Source System"}}},
			section: "synonyms",
		},
		{
			name:    "platform pattern",
			def:     Definition{Patterns: map[string]string{types.FieldPlatform: "platform"}},
			section: "patterns",
		},
		{
			name:    "empty vendor tag",
			def:     Definition{KnownVendors: map[string]string{"abc.csv": " "}},
			section: "known_vendors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			require.Error(t, err)

			var defErr *DefinitionError
			require.ErrorAs(t, err, &defErr)
			require.NotEmpty(t, defErr.Issues)
			assert.Equal(t, tt.section, defErr.Issues[0].Section)
		})
	}
}

func TestExtendDefaults(t *testing.T) {
	r, err := New(Definition{
		ExtendDefaults: true,
		Synonyms: map[string][]string{
			types.FieldSeller: {"Distributor Name"},
		},
		KnownVendors: map[string]string{"abc wholesale.csv": "abc"},
	})
	require.NoError(t, err)

	field, ok := r.Lookup("Distributor Name")
	require.True(t, ok)
	assert.Equal(t, types.FieldSeller, field)

	// Defaults are still there.
	_, ok = r.Lookup("NDC Number")
	assert.True(t, ok)
	assert.Equal(t, Default().Required(), r.Required())

	tag, ok := r.KnownVendor("ABC Wholesale.csv")
	require.True(t, ok)
	assert.Equal(t, "abc", tag)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
extend_defaults: true
required: [NDC, Qty]
synonyms:
  Seller: ["Supplier Name"]
patterns:
  Qty: '\bpcs\b'
`), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, []string{types.FieldNDC, types.FieldQty}, r.Required())
	field, ok := r.Lookup("Supplier Name")
	require.True(t, ok)
	assert.Equal(t, types.FieldSeller, field)
	assert.True(t, r.Pattern(types.FieldQty).MatchString("PCS shipped"))
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yml")
	require.NoError(t, os.WriteFile(path, []byte("synonym:\n  NDC: [Code]\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Canonical Field", "Raw Header", "Required", "Pattern"},
		{"NDC", "Material Number", "yes", ""},
		{"Seller", "Distributor Name", "", ""},
		{"Qty", "", "x", `\bpcs\b`},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	def, err := Load(path)
	require.NoError(t, err)
	assert.True(t, def.ExtendDefaults)
	assert.Equal(t, []string{types.FieldNDC, types.FieldQty}, def.Required)

	r, err := New(def)
	require.NoError(t, err)

	field, ok := r.Lookup("Material Number")
	require.True(t, ok)
	assert.Equal(t, types.FieldNDC, field)

	field, ok = r.Lookup("Distributor Name")
	require.True(t, ok)
	assert.Equal(t, types.FieldSeller, field)
}

func TestLoadUnsupportedSchemaFile(t *testing.T) {
	_, err := Load("schema.json")
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDefinition().Required, def.Required)
}

func TestMarshalEffective(t *testing.T) {
	data, err := Marshal(Effective(Definition{ExtendDefaults: true}))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Material Number (Numeric)")
	assert.Contains(t, string(data), "identifier_fallback:")
}
