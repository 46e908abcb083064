package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/xlsxparser"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFINITION LOADING
// =============================================================================

// Load reads a definition file. The format is chosen by extension:
// .yaml/.yml for YAML definitions, .xlsx for synonym templates. An empty
// path returns DefaultDefinition.
func Load(path string) (Definition, error) {
	if path == "" {
		return DefaultDefinition(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".xlsx":
		return LoadTemplate(path)
	default:
		return Definition{}, fmt.Errorf("unsupported schema file %s: want .yaml, .yml or .xlsx", path)
	}
}

// LoadRegistry is Load followed by New.
func LoadRegistry(path string) (*Registry, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(def)
}

// LoadYAML decodes a YAML definition. Unknown keys are rejected so a typo
// in a section name does not silently drop synonyms.
func LoadYAML(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read schema file: %w", err)
	}
	defer f.Close()

	var def Definition
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}

	return def, nil
}

// LoadTemplate reads an XLSX synonym template. Templates are overlays: the
// resulting definition extends the defaults. Rows marked Required replace
// the default required set when at least one row is marked.
func LoadTemplate(path string) (Definition, error) {
	rows, err := xlsxparser.ParseTemplate(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to parse schema template %s: %w", path, err)
	}

	def := Definition{
		ExtendDefaults: true,
		Synonyms:       make(map[string][]string),
		Patterns:       make(map[string]string),
	}

	seenRequired := make(map[string]bool)
	for _, row := range rows {
		if row.RawHeader != "" {
			def.Synonyms[row.Field] = append(def.Synonyms[row.Field], row.RawHeader)
		}
		if row.Pattern != "" {
			def.Patterns[row.Field] = row.Pattern
		}
		if row.Required && !seenRequired[row.Field] {
			seenRequired[row.Field] = true
			def.Required = append(def.Required, row.Field)
		}
	}

	return def, nil
}

// Marshal renders a definition as YAML, e.g. to seed a schema file from
// the defaults.
func Marshal(def Definition) ([]byte, error) {
	return yaml.Marshal(def)
}
