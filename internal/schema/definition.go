// =============================================================================
// Vendor File Processor - Canonical Schema Definition
// =============================================================================
//
// A Definition is the static data behind the schema registry: which canonical
// fields are required, which raw header spellings map to each field, which
// regular expression is tried when no spelling matches, and the per-row
// identifier fallback columns.
//
// Adding a vendor's odd header spelling is a data change only. Either edit
// DefaultDefinition, or point `schema_file` in config.yaml at a YAML
// definition or an XLSX synonym template (see load.go).
//
// YAML LAYOUT:
//
//   extend_defaults: true
//   required: ["NDC", "Name", "Qty", "Date of Purchase"]
//   synonyms:
//     NDC: ["NDC Number", "Item"]
//     Qty: ["Units Shipped"]
//   patterns:
//     Qty: '\bqty\b|quantity'
//   identifier_fallback: ["Selling Unit NDC", "UPC"]
//   known_vendors:
//     kinray.csv: kinray
//
// =============================================================================

package schema

import (
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
)

// Definition is the raw, unvalidated content of a schema registry.
type Definition struct {
	// ExtendDefaults merges this definition on top of DefaultDefinition
	// instead of replacing it. Synonyms are appended after the defaults, so
	// default spellings still win on conflicts.
	ExtendDefaults bool `yaml:"extend_defaults"`

	// Required lists canonical fields whose absence is reported per file.
	Required []string `yaml:"required"`

	// Synonyms maps a canonical field to its known raw header spellings.
	// Order matters: the first registration of a spelling wins.
	Synonyms map[string][]string `yaml:"synonyms"`

	// Patterns maps a canonical field to a fallback regular expression,
	// matched case-insensitively against headers no synonym claimed.
	Patterns map[string]string `yaml:"patterns"`

	// IdentifierFallback is the ordered list of raw columns checked per row
	// when no column resolved to NDC.
	IdentifierFallback []string `yaml:"identifier_fallback"`

	// KnownVendors maps an exact file name (case-insensitive) to the
	// platform tag used verbatim for that file.
	KnownVendors map[string]string `yaml:"known_vendors"`
}

// DefaultDefinition returns the built-in synonym table.
func DefaultDefinition() Definition {
	return Definition{
		Required: []string{
			types.FieldNDC,
			types.FieldName,
			types.FieldQty,
			types.FieldPurchaseDate,
		},
		Synonyms: map[string][]string{
			types.FieldNDC: {
				"NDC Number", "NDC", "Selling Unit NDC", "Inner NDC Nbr",
				"UPC", "NDCText", "Item", "Material Number (Numeric)",
			},
			types.FieldName: {
				"Name", "Product Name", "Material Name", "ITEM DESCRIPTION",
				"DrugName", "Description", "Material Description",
			},
			types.FieldForm: {
				"Form", "Dosage Form",
			},
			types.FieldPackSize: {
				"Pack Size", "PackageSize", "Size", "Size/dimensions",
			},
			types.FieldManufacturer: {
				"Manufacturer", "MFR", "Vendor Name", "Hist Vendor Name",
			},
			types.FieldQty: {
				"Qty", "Quantity", "Quantity Ordered", "Net Qty", "Qty_Shipped",
				"Actual Invoice Quantity", "QTY",
			},
			types.FieldPrice: {
				"Purchased price", "Item Price", "Invoice_Price", "Price",
				"Net Val Of Billing Item In DC",
			},
			types.FieldSeller: {
				"Seller", "Source Name", "WholeSalerNameText1",
			},
			types.FieldPurchaseDate: {
				"Date", "DATE", "Order Date", "Invc Date", "Invoice Date",
				"CheckoutDate", "Date of sale", "Billing Date",
			},
			types.FieldInvoiceNumber: {
				"Invoice Number", "Invoice", "Invc Nbr", "Order #", "Order Id",
				"INV/CRDT#", "Invoice No.", "Billing Document",
			},
		},
		Patterns: map[string]string{
			types.FieldNDC:           `\bndc\b|\bupc\b`,
			types.FieldName:          `drug\s*name|product|description`,
			types.FieldForm:          `dosage|\bform\b`,
			types.FieldPackSize:      `pack|package|\bsize\b`,
			types.FieldManufacturer:  `manufact|\bmfr\b|\bmfg\b|labeler`,
			types.FieldQty:           `\bqty\b|quantity|units`,
			types.FieldPrice:         `price|unit\s*cost|\bcost\b`,
			types.FieldSeller:        `seller|wholesal|supplier|distributor`,
			types.FieldPurchaseDate:  `date`,
			types.FieldInvoiceNumber: `invoice|\binv\b|order\s*(no|num|#|id)`,
		},
		IdentifierFallback: []string{
			"Selling Unit NDC", "Inner NDC Nbr", "UPC",
		},
		KnownVendors: map[string]string{
			"kinray.csv": "kinray",
		},
	}
}

// Effective returns the definition a registry would be built from: def
// itself, or def layered over the defaults when ExtendDefaults is set.
func Effective(def Definition) Definition {
	if def.ExtendDefaults {
		return merge(DefaultDefinition(), def)
	}
	return def
}

// merge layers overlay on top of base. Lists are appended, maps are
// overwritten per key, and a non-empty Required list replaces the base one.
func merge(base, overlay Definition) Definition {
	out := Definition{
		Required:           append([]string(nil), base.Required...),
		Synonyms:           make(map[string][]string, len(base.Synonyms)),
		Patterns:           make(map[string]string, len(base.Patterns)),
		IdentifierFallback: append([]string(nil), base.IdentifierFallback...),
		KnownVendors:       make(map[string]string, len(base.KnownVendors)),
	}

	for field, synonyms := range base.Synonyms {
		out.Synonyms[field] = append([]string(nil), synonyms...)
	}
	for field, synonyms := range overlay.Synonyms {
		out.Synonyms[field] = append(out.Synonyms[field], synonyms...)
	}

	for field, pattern := range base.Patterns {
		out.Patterns[field] = pattern
	}
	for field, pattern := range overlay.Patterns {
		out.Patterns[field] = pattern
	}

	for name, tag := range base.KnownVendors {
		out.KnownVendors[name] = tag
	}
	for name, tag := range overlay.KnownVendors {
		out.KnownVendors[name] = tag
	}

	if len(overlay.Required) > 0 {
		out.Required = append([]string(nil), overlay.Required...)
	}
	out.IdentifierFallback = append(out.IdentifierFallback, overlay.IdentifierFallback...)

	return out
}
