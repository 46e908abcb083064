// =============================================================================
// Vendor File Processor - Schema Definition Validation
// =============================================================================
//
// Validation is performed before a registry is built and by the `validate`
// command. Issues are collected, not returned one at a time:
//   - error:   the definition cannot be used (unknown field, bad pattern)
//   - warning: the definition works but is probably not what was meant
//              (duplicate spelling, blank spelling)
//
// =============================================================================

package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/types"
)

// Severity levels for definition issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// derivedField is the message for a column mapping on a field that is never
// read from a column.
const derivedField = "derived from the file name, cannot be mapped to a column"

// Issue is a single problem found in a Definition.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Section is the part of the definition the issue was found in
	// (required, synonyms, patterns, identifier_fallback, known_vendors).
	Section string

	// Field is the canonical field involved, if any.
	Field string

	// Value is the offending value.
	Value string

	Message string
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Field != "" {
		return fmt.Sprintf("[%s] %s.%s: %s (value: '%s')",
			strings.ToUpper(i.Severity), i.Section, i.Field, i.Message, i.Value)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(i.Severity), i.Section, i.Message, i.Value)
}

// DefinitionError is returned by New when a definition has error-severity
// issues.
type DefinitionError struct {
	Issues []Issue
}

func (e *DefinitionError) Error() string {
	var msgs []string
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.Error())
		}
	}
	return fmt.Sprintf("invalid schema definition: %s", strings.Join(msgs, "; "))
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a definition against the canonical schema. It does not
// apply ExtendDefaults; callers validating an overlay should merge first.
func Validate(def Definition) []Issue {
	var issues []Issue

	known := make(map[string]bool, len(types.Fields))
	for _, f := range types.Fields {
		known[f] = true
	}

	// Required fields.
	for _, field := range def.Required {
		if !known[field] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "required",
				Value:    field,
				Message:  "not a canonical field",
			})
		}
	}

	// Synonyms. Report in schema order so output is stable.
	owner := make(map[string]string)
	for _, field := range sortedKeys(def.Synonyms) {
		switch {
		case !known[field]:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "synonyms",
				Field:    field,
				Message:  "not a canonical field",
			})
		case field == types.FieldPlatform && len(def.Synonyms[field]) > 0:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "synonyms",
				Field:    field,
				Value:    strings.Join(def.Synonyms[field], ", "),
				Message:  derivedField,
			})
		}
	}
	for _, field := range types.Fields {
		for _, synonym := range def.Synonyms[field] {
			trimmed := strings.TrimSpace(synonym)
			if trimmed == "" {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Section:  "synonyms",
					Field:    field,
					Value:    synonym,
					Message:  "blank synonym is ignored",
				})
				continue
			}
			if prev, dup := owner[trimmed]; dup {
				msg := "duplicate synonym is ignored"
				if prev != field {
					msg = fmt.Sprintf("already registered for %q, which wins", prev)
				}
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Section:  "synonyms",
					Field:    field,
					Value:    synonym,
					Message:  msg,
				})
				continue
			}
			owner[trimmed] = field
		}
	}

	// Patterns.
	for _, field := range sortedKeys(def.Patterns) {
		pattern := def.Patterns[field]
		if !known[field] {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "patterns",
				Field:    field,
				Value:    pattern,
				Message:  "not a canonical field",
			})
			continue
		}
		if pattern == "" {
			continue
		}
		if field == types.FieldPlatform {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "patterns",
				Field:    field,
				Value:    pattern,
				Message:  derivedField,
			})
			continue
		}
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "patterns",
				Field:    field,
				Value:    pattern,
				Message:  err.Error(),
			})
		}
	}

	// Identifier fallback.
	for _, column := range def.IdentifierFallback {
		if strings.TrimSpace(column) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Section:  "identifier_fallback",
				Value:    column,
				Message:  "blank column name is never matched",
			})
		}
	}

	// Known vendors.
	for _, name := range sortedKeys(def.KnownVendors) {
		if strings.TrimSpace(def.KnownVendors[name]) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Section:  "known_vendors",
				Value:    name,
				Message:  "platform tag must not be empty",
			})
		}
	}

	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
