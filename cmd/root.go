// =============================================================================
// Vendor File Processor - Root Command
// =============================================================================
//
// This file defines the root command of the CLI. It holds the persistent
// flags shared by every subcommand and the configuration bootstrap.
//
// CONFIGURATION PRECEDENCE (highest first):
//   1. Command-line flags
//   2. VENDORPROC_* environment variables (.env.local and .env included)
//   3. The config file (--config, default config.yaml)
//   4. Built-in defaults
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/vendor-file-processor/internal/config"
	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
	"github.com/ginjaninja78/vendor-file-processor/internal/logging"
	"github.com/ginjaninja78/vendor-file-processor/internal/processor"
	"github.com/ginjaninja78/vendor-file-processor/internal/schema"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile is the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// v holds the merged configuration sources.
var v *viper.Viper

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "vendorproc",
	Short: "Vendor File Processor - Reconcile vendor purchase files into one table",

	Long: `Vendor File Processor reads pharmacy purchase exports from many vendors
(CSV, XLSX, XLS), maps each file's column headers onto one canonical schema,
normalizes the values and combines everything into a single table.

Key Features:
  - Synonym and pattern based header resolution
  - NDC normalization to the 5-4-2 layout
  - Per-file column mapping artifact and processing log
  - Concurrent processing, deterministic output order
  - Schema overrides from YAML or an XLSX synonym template

Example Usage:
  vendorproc process                       # Process every file in the input directory
  vendorproc process --file kinray.csv     # Process specific files
  vendorproc validate --schema synonyms.yaml
  vendorproc validate --dump > schema.yaml # Print the effective synonym table`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&cfgFile, "config", "config.yaml",
		"Path to the main configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (auto, console, json)")
	pf.String("schema", "", "Synonym definition (.yaml or .xlsx template)")
}

// initConfig builds the viper instance and binds the flags of the running
// command onto configuration keys.
func initConfig(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")

	for _, f := range config.LoadEnvFiles() {
		if verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", f)
		}
	}

	var err error
	v, err = config.NewViper(cfgFile, explicit)
	if err != nil {
		return err
	}

	bindings := map[string]string{
		"log_level":       "log-level",
		"log_format":      "log-format",
		"schema_file":     "schema",
		"input_dir":       "input",
		"output_dir":      "output",
		"max_concurrency": "workers",
		"export_xlsx":     "xlsx",
		"sheet":           "sheet",
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	return nil
}

// =============================================================================
// SHARED WIRING
// =============================================================================

// loadConfig decodes and validates the merged configuration.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the application logger from configuration.
func newLogger(cfg *config.MainConfig) zerolog.Logger {
	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel
	lc.Format = cfg.LogFormat
	return logging.New(lc)
}

// newProcessor loads the schema and wires the per-file pipeline.
func newProcessor(cfg *config.MainConfig, logger zerolog.Logger) (*processor.Processor, error) {
	registry, err := schema.LoadRegistry(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	adapter := ingest.New(registry, ingest.Options{
		CSV:   cfg.CSVSettings(),
		Sheet: cfg.Sheet,
	})

	return processor.New(registry, adapter, logger), nil
}
