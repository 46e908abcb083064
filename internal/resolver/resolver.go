// =============================================================================
// Vendor File Processor - Column Resolver
// =============================================================================
//
// The resolver binds each canonical field to at most one source column of a
// vendor file.
//
// RESOLUTION PASSES:
//   1. Exact synonym match, case-sensitive, on the trimmed header. Headers
//      are visited left to right; the first header for a field wins.
//   2. Pattern fallback, case-insensitive, for fields still unresolved.
//      Fields are visited in schema order, headers left to right. A header
//      already bound to some field is never bound again.
//   3. Anything left is unresolved. That is reported, not an error.
//
// The NDC field has a second tier outside this package: when it stays
// unresolved, the normalizer checks a fixed list of raw columns per row.
//
// =============================================================================

package resolver

import (
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
)

// Binding records how a canonical field was resolved.
type Binding struct {
	// Index is the position of the source column in the file.
	Index int

	// Header is the source column name exactly as found in the file.
	Header string

	// Method is MethodSynonym or MethodPattern.
	Method string
}

// Resolution methods.
const (
	MethodSynonym = "synonym"
	MethodPattern = "pattern"
)

// Mapping is the per-file result of column resolution. It is a value type;
// the zero Mapping has every field unresolved.
type Mapping struct {
	fields   []string
	bindings map[string]Binding
}

// Resolver resolves headers against a registry.
type Resolver struct {
	registry *schema.Registry
}

// New returns a resolver for the given registry.
func New(registry *schema.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve computes the mapping for a file's raw headers. It is
// deterministic: the same headers always give the same mapping.
func (r *Resolver) Resolve(headers []string) Mapping {
	m := Mapping{
		fields:   r.registry.Fields(),
		bindings: make(map[string]Binding),
	}

	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
	}

	claimed := make([]bool, len(headers))

	// Pass 1: exact synonyms.
	for i, h := range trimmed {
		field, ok := r.registry.Lookup(h)
		if !ok {
			continue
		}
		if _, bound := m.bindings[field]; bound {
			continue
		}
		m.bindings[field] = Binding{Index: i, Header: headers[i], Method: MethodSynonym}
		claimed[i] = true
	}

	// Pass 2: pattern fallback.
	for _, field := range m.fields {
		if _, bound := m.bindings[field]; bound {
			continue
		}
		pattern := r.registry.Pattern(field)
		if pattern == nil {
			continue
		}
		for i, h := range trimmed {
			if claimed[i] || h == "" {
				continue
			}
			if pattern.MatchString(h) {
				m.bindings[field] = Binding{Index: i, Header: headers[i], Method: MethodPattern}
				claimed[i] = true
				break
			}
		}
	}

	return m
}

// =============================================================================
// MAPPING QUERIES
// =============================================================================

// Get returns the binding for field.
func (m Mapping) Get(field string) (Binding, bool) {
	b, ok := m.bindings[field]
	return b, ok
}

// IsResolved reports whether field is bound to a source column.
func (m Mapping) IsResolved(field string) bool {
	_, ok := m.bindings[field]
	return ok
}

// Header returns the raw source header bound to field, or "".
func (m Mapping) Header(field string) string {
	return m.bindings[field].Header
}

// Fields returns the canonical fields this mapping covers, in schema order.
func (m Mapping) Fields() []string {
	return append([]string(nil), m.fields...)
}

// Resolved returns the number of bound fields.
func (m Mapping) Resolved() int {
	return len(m.bindings)
}

// IsEmpty reports whether the mapping was never computed, which is the case
// for files that failed ingestion.
func (m Mapping) IsEmpty() bool {
	return len(m.fields) == 0
}

// Unresolved returns the unbound fields among candidates, in candidate
// order.
func (m Mapping) Unresolved(candidates []string) []string {
	var out []string
	for _, field := range candidates {
		if !m.IsResolved(field) {
			out = append(out, field)
		}
	}
	return out
}

// Missing returns the required fields the mapping left unbound. It is a
// pure query over the mapping, so the mapping artifact and the processing
// log cannot disagree.
func (m Mapping) Missing(registry *schema.Registry) []string {
	return m.Unresolved(registry.Required())
}

// Row renders the mapping as one row of the mapping artifact: the raw
// source header per canonical field, or "" when unresolved.
func (m Mapping) Row() []string {
	row := make([]string, len(m.fields))
	for i, field := range m.fields {
		row[i] = m.bindings[field].Header
	}
	return row
}
