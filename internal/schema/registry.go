package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the validated, indexed form of a Definition. It is never
// mutated after New returns, so it can be shared by concurrent file passes
// without locking.
type Registry struct {
	fields             []string
	required           []string
	synonyms           map[string][]string
	reverse            map[string]string
	patterns           map[string]*regexp.Regexp
	identifierFallback []string
	knownVendors       map[string]string
}

// New validates def and builds the reverse synonym index. Definitions with
// error-severity issues are rejected; warnings (duplicate synonyms) are not.
func New(def Definition) (*Registry, error) {
	def = Effective(def)

	if issues := Validate(def); HasErrors(issues) {
		return nil, &DefinitionError{Issues: issues}
	}

	r := &Registry{
		fields:             append([]string(nil), types.Fields...),
		required:           append([]string(nil), def.Required...),
		synonyms:           make(map[string][]string, len(def.Synonyms)),
		reverse:            make(map[string]string),
		patterns:           make(map[string]*regexp.Regexp, len(def.Patterns)),
		identifierFallback: append([]string(nil), def.IdentifierFallback...),
		knownVendors:       make(map[string]string, len(def.KnownVendors)),
	}

	// Walk fields in schema order so "first registration wins" is stable
	// regardless of map iteration order.
	for _, field := range r.fields {
		for _, synonym := range def.Synonyms[field] {
			synonym = strings.TrimSpace(synonym)
			if synonym == "" {
				continue
			}
			r.synonyms[field] = append(r.synonyms[field], synonym)
			if _, taken := r.reverse[synonym]; !taken {
				r.reverse[synonym] = field
			}
		}

		if pattern := def.Patterns[field]; pattern != "" {
			// Validate already compiled it once; this cannot fail.
			r.patterns[field] = regexp.MustCompile("(?i)" + pattern)
		}
	}

	for name, tag := range def.KnownVendors {
		r.knownVendors[strings.ToLower(strings.TrimSpace(name))] = tag
	}

	return r, nil
}

// MustNew is New that panics on an invalid definition. Use it only for
// definitions compiled into the binary.
func MustNew(def Definition) *Registry {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustNew(DefaultDefinition())

// Default returns the registry built from DefaultDefinition.
func Default() *Registry {
	return defaultRegistry
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Fields returns the canonical schema in output order.
func (r *Registry) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Required returns the required-field subset.
func (r *Registry) Required() []string {
	return append([]string(nil), r.required...)
}

// IsRequired reports whether field is in the required subset.
func (r *Registry) IsRequired(field string) bool {
	for _, f := range r.required {
		if f == field {
			return true
		}
	}
	return false
}

// Synonyms returns the registered spellings for field.
func (r *Registry) Synonyms(field string) []string {
	return append([]string(nil), r.synonyms[field]...)
}

// Lookup returns the canonical field registered for an exact (trimmed,
// case-sensitive) raw header.
func (r *Registry) Lookup(header string) (string, bool) {
	field, ok := r.reverse[strings.TrimSpace(header)]
	return field, ok
}

// Pattern returns the compiled, case-insensitive fallback pattern for field,
// or nil if none is defined.
func (r *Registry) Pattern(field string) *regexp.Regexp {
	return r.patterns[field]
}

// IdentifierFallback returns the per-row identifier fallback columns.
func (r *Registry) IdentifierFallback() []string {
	return append([]string(nil), r.identifierFallback...)
}

// KnownVendor returns the fixed platform tag for a file name, if any.
func (r *Registry) KnownVendor(fileName string) (string, bool) {
	tag, ok := r.knownVendors[strings.ToLower(strings.TrimSpace(fileName))]
	return tag, ok
}

// SynonymCount returns the number of distinct raw spellings indexed.
func (r *Registry) SynonymCount() int {
	return len(r.reverse)
}

// String summarizes the registry for logs.
func (r *Registry) String() string {
	return fmt.Sprintf("schema(%d fields, %d required, %d synonyms, %d patterns)",
		len(r.fields), len(r.required), r.SynonymCount(), len(r.patterns))
}
