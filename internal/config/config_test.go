package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "combined_output.csv", cfg.CombinedFile)
	assert.Equal(t, "column_mapping_log.csv", cfg.MappingFile)
	assert.Equal(t, "processing_log.txt", cfg.LogFile)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, ",", cfg.CSVSettings().Delimiter)
	assert.Equal(t, "utf-8", cfg.CSVSettings().Encoding)
}

func TestLoadMainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: /data/vendors
output_dir: /data/out
csv_delimiter: pipe
csv_encoding: windows-1252
max_concurrency: 2
export_xlsx: true
log_level: debug
`), 0o644))

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/vendors", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "pipe", cfg.CSVDelimiter)
	assert.Equal(t, "windows-1252", cfg.CSVEncoding)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.True(t, cfg.ExportXLSX)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Unset keys fall back to defaults.
	assert.Equal(t, "combined_output.csv", cfg.CombinedFile)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_dir: /from/file\nmax_concurrency: 2\n"), 0o644))

	t.Setenv("VENDORPROC_INPUT_DIR", "/from/env")
	t.Setenv("VENDORPROC_MAX_CONCURRENCY", "6")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.InputDir)
	assert.Equal(t, 6, cfg.MaxConcurrency)
}

func TestNewViperMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")

	v, err := NewViper(missing, false)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "./input", cfg.InputDir)

	_, err = NewViper(missing, true)
	assert.Error(t, err)
}

func TestValidateMainConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MainConfig)
	}{
		{"bad encoding", func(c *MainConfig) { c.CSVEncoding = "klingon" }},
		{"bad delimiter", func(c *MainConfig) { c.CSVDelimiter = "::" }},
		{"bad log format", func(c *MainConfig) { c.LogFormat = "xml" }},
		{"archive into input", func(c *MainConfig) {
			c.ArchiveProcessed = true
			c.InputArchiveDir = c.InputDir
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, validateMainConfig(cfg))
		})
	}

	assert.NoError(t, validateMainConfig(Default()))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("VENDORPROC_OUTPUT_DIR=/from/local\n"), 0o644))
	require.NoError(t, os.WriteFile(shared, []byte("VENDORPROC_OUTPUT_DIR=/from/shared\nVENDORPROC_SHEET=Orders\n"), 0o644))

	// Registers restoration of the original values, then clears them.
	t.Setenv("VENDORPROC_OUTPUT_DIR", "")
	t.Setenv("VENDORPROC_SHEET", "")
	require.NoError(t, os.Unsetenv("VENDORPROC_OUTPUT_DIR"))
	require.NoError(t, os.Unsetenv("VENDORPROC_SHEET"))

	loaded := LoadEnvFiles(local, shared, filepath.Join(dir, "missing.env"))
	assert.Equal(t, []string{local, shared}, loaded)

	v, err := NewViper("", false)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/from/local", cfg.OutputDir)
	assert.Equal(t, "Orders", cfg.Sheet)
}
