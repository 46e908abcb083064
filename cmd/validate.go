// =============================================================================
// Vendor File Processor - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It checks the configuration and
// the synonym schema without touching any vendor file.
//
// COMMAND USAGE:
//   vendorproc validate [--schema file] [--dump]
//
// Errors (unknown canonical fields, bad patterns) fail the command.
// Warnings (a synonym listed under two fields) are printed only.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/spf13/cobra"
)

// dump prints the effective definition as YAML.
var dump bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and the synonym schema",
	Long: `Validate loads the main configuration and the synonym schema (built-in,
YAML, or XLSX template) and reports problems in the schema: unknown canonical
fields, synonyms registered under more than one field, and invalid header
patterns.

With --dump the effective schema is printed as YAML, which is a convenient
starting point for a custom schema file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&dump, "dump", false, "Print the effective schema as YAML")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	def, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return err
	}
	def = schema.Effective(def)

	if dump {
		data, err := schema.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to render schema: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	source := cfg.SchemaFile
	if source == "" {
		source = "built-in"
	}
	fmt.Fprintf(out, "Schema: %s\n", source)

	issues := schema.Validate(def)
	for _, issue := range issues {
		fmt.Fprintf(out, "  %s\n", issue.Error())
	}

	if schema.HasErrors(issues) {
		return &schema.DefinitionError{Issues: issues}
	}

	registry, err := schema.New(def)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "OK: %s\n", registry)
	return nil
}
