// =============================================================================
// Vendor File Processor - Configuration Module
// =============================================================================
//
// This module loads the main application configuration. Values come from, in
// increasing precedence:
//   1. built-in defaults (applyMainConfigDefaults)
//   2. the config file (config.yaml by default)
//   3. environment variables prefixed VENDORPROC_ (VENDORPROC_INPUT_DIR, ...),
//      optionally set from .env.local / .env in the working directory
//   4. command-line flags bound by the cmd package
//
// The header synonym table is not part of this file. It lives in the schema
// package and can be overridden with `schema_file`.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/vendor-file-processor/internal/csvparser"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "VENDORPROC"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for vendor files.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives the combined table, mapping artifact and log.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// InputArchiveDir receives successfully processed inputs when
	// ArchiveProcessed is set.
	// Default: "./input_archive"
	InputArchiveDir string `mapstructure:"input_archive_dir" yaml:"input_archive_dir"`

	// Recursive makes discovery descend into subdirectories.
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`

	// =========================================================================
	// SCHEMA SETTINGS
	// =========================================================================

	// SchemaFile overrides the built-in synonym table. A .yaml/.yml
	// definition or an .xlsx synonym template. Empty means built-in.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`

	// =========================================================================
	// READER SETTINGS
	// =========================================================================

	// CSVDelimiter is the delimiter for delimited-text inputs.
	// Default: ","
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`

	// CSVEncoding is the character encoding label for delimited inputs.
	// Default: "utf-8"
	CSVEncoding string `mapstructure:"csv_encoding" yaml:"csv_encoding"`

	// Sheet selects a workbook sheet by name. Empty means the first sheet.
	Sheet string `mapstructure:"sheet" yaml:"sheet"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// CombinedFile is the combined table file name.
	// Default: "combined_output.csv"
	CombinedFile string `mapstructure:"combined_file" yaml:"combined_file"`

	// MappingFile is the column mapping artifact file name.
	// Default: "column_mapping_log.csv"
	MappingFile string `mapstructure:"mapping_file" yaml:"mapping_file"`

	// LogFile is the processing log file name.
	// Default: "processing_log.txt"
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// UniqueNames appends a timestamp and UUID to every output file name
	// so repeated runs do not overwrite each other.
	UniqueNames bool `mapstructure:"unique_names" yaml:"unique_names"`

	// ExportXLSX also writes the combined table as an .xlsx workbook.
	ExportXLSX bool `mapstructure:"export_xlsx" yaml:"export_xlsx"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ArchiveProcessed moves successfully processed inputs to
	// InputArchiveDir.
	ArchiveProcessed bool `mapstructure:"archive_processed" yaml:"archive_processed"`

	// ArchiveByDate files archived inputs under yyyy/mm/dd subdirectories.
	ArchiveByDate bool `mapstructure:"archive_by_date" yaml:"archive_by_date"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat is "console", "json" or "auto".
	// Default: "auto"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// CSVSettings returns the reader settings for delimited inputs.
func (c *MainConfig) CSVSettings() csvparser.Settings {
	return csvparser.Settings{
		Delimiter: c.CSVDelimiter,
		Encoding:  c.CSVEncoding,
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// NewViper returns a viper instance wired for this application: env prefix,
// key replacer and the given config file. A missing default config file is
// not an error; an explicitly named one that is missing is.
func NewViper(configPath string, explicit bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only affects keys viper already knows about.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if configPath == "" {
		return v, nil
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) && !explicit {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return v, nil
}

// DefaultEnvFiles are loaded by LoadEnvFiles when no files are named.
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadEnvFiles copies variables from .env files into the process
// environment and returns the files that were loaded. Variables already set
// are never overwritten, so earlier files win over later ones and the real
// environment wins over both.
func LoadEnvFiles(files ...string) []string {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}

	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// keys lists every configuration key, for env binding.
var keys = []string{
	"input_dir", "output_dir", "input_archive_dir", "recursive",
	"schema_file",
	"csv_delimiter", "csv_encoding", "sheet",
	"combined_file", "mapping_file", "log_file", "unique_names", "export_xlsx",
	"max_concurrency", "archive_processed", "archive_by_date",
	"log_level", "log_format",
}

// Load decodes the configuration from v, applies defaults and validates it.
func Load(v *viper.Viper) (*MainConfig, error) {
	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadMainConfig loads configuration from a file plus environment.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	v, err := NewViper(configPath, true)
	if err != nil {
		return nil, err
	}
	return Load(v)
}

// Default returns the configuration with only defaults applied.
func Default() *MainConfig {
	var cfg MainConfig
	applyMainConfigDefaults(&cfg)
	return &cfg
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.CSVDelimiter == "" {
		config.CSVDelimiter = ","
	}
	if config.CSVEncoding == "" {
		config.CSVEncoding = "utf-8"
	}
	if config.CombinedFile == "" {
		config.CombinedFile = "combined_output.csv"
	}
	if config.MappingFile == "" {
		config.MappingFile = "column_mapping_log.csv"
	}
	if config.LogFile == "" {
		config.LogFile = "processing_log.txt"
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "auto"
	}
}

// validateMainConfig validates the main configuration. Directories are not
// touched here; the batch driver creates what it needs.
func validateMainConfig(config *MainConfig) error {
	if err := csvparser.ValidateSettings(config.CSVSettings()); err != nil {
		return err
	}

	switch strings.ToLower(config.LogFormat) {
	case "auto", "console", "pretty", "json":
	default:
		return fmt.Errorf("log_format must be auto, console or json, got %q", config.LogFormat)
	}

	if config.ArchiveProcessed && config.InputArchiveDir == config.InputDir {
		return fmt.Errorf("input_archive_dir must differ from input_dir")
	}

	return nil
}
