// =============================================================================
// Vendor File Processor - Process Command
// =============================================================================
//
// This file defines the 'process' command, the batch driver. It runs the
// whole pipeline over the input directory (or the files named with --file).
//
// COMMAND USAGE:
//   vendorproc process [flags]
//
// FLAGS:
//   --input    : Input directory (overrides input_dir)
//   --output   : Output directory (overrides output_dir)
//   --file     : Process only these files (repeatable)
//   --workers  : Maximum files processed at once
//   --xlsx     : Also write the combined table as .xlsx
//   --sheet    : Workbook sheet to read
//   --archive  : Move processed inputs to the archive directory
//   --dry-run  : Process without writing any output
//
// PROCESSING PIPELINE:
//   1. Load configuration and the synonym schema
//   2. Discover vendor files (sorted)
//   3. Run the batch session concurrently
//   4. Write the combined table, the mapping artifact and the log
//   5. Archive processed inputs
//   6. Write the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ginjaninja78/vendor-file-processor/internal/batch"
	"github.com/ginjaninja78/vendor-file-processor/internal/config"
	"github.com/ginjaninja78/vendor-file-processor/internal/ingest"
	"github.com/ginjaninja78/vendor-file-processor/internal/writer"
	"github.com/ginjaninja78/vendor-file-processor/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun processes without writing output files.
var dryRun bool

// archive moves processed inputs to the archive directory.
var archive bool

// files restricts the run to specific paths.
var files []string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Combine vendor files into one standardized table",
	Long: `The process command reads every supported vendor file (.csv, .xlsx, .xls)
in the input directory, maps its headers to the canonical schema, normalizes
the values and writes:

  - combined_output.csv      every row of every file, canonical columns
  - column_mapping_log.csv   which source header fed each canonical field
  - processing_log.txt       one line per file with missing required fields

Files that cannot be read are logged and skipped. The command fails only when
no file could be read at all.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runProcess(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	f := processCmd.Flags()
	f.String("input", "", "Input directory")
	f.String("output", "", "Output directory")
	f.StringSliceVar(&files, "file", nil, "Process only these files (repeatable)")
	f.Int("workers", 0, "Maximum number of files processed at once")
	f.Bool("xlsx", false, "Also write the combined table as .xlsx")
	f.String("sheet", "", "Workbook sheet to read (default: first sheet)")
	f.BoolVar(&archive, "archive", false, "Move processed inputs to the archive directory")
	f.BoolVar(&dryRun, "dry-run", false, "Process without writing output files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, cmd *cobra.Command) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if archive {
		cfg.ArchiveProcessed = true
	}

	logger := newLogger(cfg)

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug().Stringer("schema", proc.Registry()).Msg("Loaded schema")

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, ingest.SupportedExtensions)
	fm.Recursive = cfg.Recursive
	fm.UseTimestampSubdirs = cfg.ArchiveByDate

	paths := files
	if len(paths) == 0 {
		var skipped []string
		paths, skipped, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
		for _, p := range skipped {
			logger.Warn().Str("file", filepath.Base(p)).Msg("Ignoring file with unsupported extension")
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no vendor files found in %s: %w", cfg.InputDir, batch.ErrNoValidData)
	}

	// =========================================================================
	// STEP 3: RUN THE BATCH
	// =========================================================================

	runner := batch.New(proc, batch.Options{MaxConcurrency: cfg.MaxConcurrency}, logger)
	session, runErr := runner.Run(ctx, paths)
	if runErr != nil && !errors.Is(runErr, batch.ErrNoValidData) {
		return runErr
	}

	// =========================================================================
	// STEP 4-6: WRITE OUTPUTS, ARCHIVE, SUMMARIZE
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:           session.RunID,
		StartTime:       session.Started,
		EndTime:         session.Finished,
		TotalFiles:      len(session.Results),
		SuccessfulFiles: session.Succeeded(),
		FailedFiles:     len(session.Results) - session.Succeeded(),
		TotalRows:       session.Rows(),
		InvalidNDCs:     session.InvalidIdentifiers(),
		LogLines:        session.LogLines(),
	}

	if !dryRun {
		if err := fm.EnsureOutputDirectory(); err != nil {
			return err
		}

		summary.Outputs, err = writeOutputs(cfg, session, runErr == nil)
		if err != nil {
			return err
		}

		if cfg.ArchiveProcessed {
			summary.Archived = archiveInputs(fm, session.SucceededPaths(), logger)
		}

		if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			logger.Warn().Err(err).Msg("Could not write summary")
		} else {
			logger.Debug().Str("path", path).Msg("Wrote summary")
		}
	}

	printSummary(cmd, summary)

	return runErr
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeOutputs writes the session outputs and returns their paths. The log
// is always written; the table and the mapping only when there is data.
func writeOutputs(cfg *config.MainConfig, session *batch.Session, hasData bool) ([]string, error) {
	name := func(n string) string {
		if cfg.UniqueNames {
			n = utils.UniqueName(n)
		}
		return filepath.Join(cfg.OutputDir, n)
	}

	var written []string

	logPath := name(cfg.LogFile)
	if err := writer.WriteFile(logPath, func(w io.Writer) error {
		return writer.WriteLog(w, session.LogLines())
	}); err != nil {
		return written, err
	}
	written = append(written, logPath)

	if !hasData {
		return written, nil
	}

	records := session.Combined()

	combinedPath := name(cfg.CombinedFile)
	if err := writer.WriteFile(combinedPath, func(w io.Writer) error {
		return writer.WriteCombinedCSV(w, records)
	}); err != nil {
		return written, err
	}
	written = append(written, combinedPath)

	if cfg.ExportXLSX {
		base := cfg.CombinedFile
		xlsxPath := name(base[:len(base)-len(filepath.Ext(base))] + ".xlsx")
		if err := writer.WriteCombinedXLSX(xlsxPath, records); err != nil {
			return written, err
		}
		written = append(written, xlsxPath)
	}

	mappingPath := name(cfg.MappingFile)
	if err := writer.WriteFile(mappingPath, func(w io.Writer) error {
		return writer.WriteMapping(w, session.MappingHeader(), session.MappingRows())
	}); err != nil {
		return written, err
	}
	written = append(written, mappingPath)

	return written, nil
}

// archiveInputs moves processed inputs. Failures are logged, not fatal: the
// outputs already exist.
func archiveInputs(fm *utils.FileManager, paths []string, logger zerolog.Logger) []string {
	var archived []string
	for _, p := range paths {
		dst, err := fm.ArchiveInputFile(p)
		if err != nil {
			logger.Warn().Err(err).Str("file", filepath.Base(p)).Msg("Could not archive input")
			continue
		}
		archived = append(archived, dst)
	}
	return archived
}

func printSummary(cmd *cobra.Command, s utils.ProcessingSummary) {
	out := cmd.OutOrStdout()

	for _, line := range s.LogLines {
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", s.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", s.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", s.FailedFiles)
	fmt.Fprintf(out, "Rows combined:   %d\n", s.TotalRows)
	fmt.Fprintf(out, "Invalid NDCs:    %d\n", s.InvalidNDCs)
	fmt.Fprintf(out, "Time elapsed:    %s\n", s.EndTime.Sub(s.StartTime))
	for _, p := range s.Outputs {
		fmt.Fprintf(out, "Wrote:           %s\n", p)
	}
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files written.")
	}
}
