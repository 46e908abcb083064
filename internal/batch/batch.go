// =============================================================================
// Vendor File Processor - Batch Session
// =============================================================================
//
// A session runs the per-file pipeline over a list of files and aggregates
// the results:
//
//   1. Passes run through a bounded worker group (MaxConcurrency)
//   2. Each result lands in the slot of its input position
//   3. After every pass completes, the combined table, the mapping rows and
//      the log lines are built in input order
//
// The output order never depends on which pass finished first.
//
// =============================================================================

package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/vendor-file-processor/internal/processor"
	"github.com/ginjaninja78/vendor-file-processor/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoValidData is returned when no file in the session was ingested. The
// session is still returned so the log can be written.
var ErrNoValidData = errors.New("no valid data to combine")

// Options configures a Runner.
type Options struct {
	// MaxConcurrency bounds the number of files processed at once.
	// Values below 1 mean sequential processing.
	MaxConcurrency int
}

// Runner executes sessions.
type Runner struct {
	proc   *processor.Processor
	opts   Options
	logger zerolog.Logger
}

// New creates a Runner around a processor.
func New(proc *processor.Processor, opts Options, logger zerolog.Logger) *Runner {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Runner{proc: proc, opts: opts, logger: logger}
}

// Session is the aggregated outcome of one run.
type Session struct {
	// RunID tags the run in logs and in the summary file.
	RunID string

	// Results holds one result per input file, in input order.
	Results []processor.Result

	// Started and Finished bracket the run.
	Started  time.Time
	Finished time.Time

	fields []string
}

// Run processes paths and aggregates the results. Cancellation is checked
// before each file starts; a file already in flight finishes. A cancelled
// run returns the context error and no session.
func (r *Runner) Run(ctx context.Context, paths []string) (*Session, error) {
	s := &Session{
		RunID:   uuid.NewString(),
		Results: make([]processor.Result, len(paths)),
		Started: time.Now(),
		fields:  r.proc.Registry().Fields(),
	}
	log := r.logger.With().Str("run_id", s.RunID).Logger()

	log.Info().
		Int("files", len(paths)).
		Int("workers", r.opts.MaxConcurrency).
		Msg("Starting batch")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.Results[i] = r.proc.Process(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	s.Finished = time.Now()

	log.Info().
		Int("succeeded", s.Succeeded()).
		Int("failed", len(paths)-s.Succeeded()).
		Int("rows", s.Rows()).
		Dur("elapsed", s.Finished.Sub(s.Started)).
		Msg("Batch complete")

	if s.Succeeded() == 0 {
		return s, ErrNoValidData
	}
	return s, nil
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Succeeded returns the number of files that produced a record set.
func (s *Session) Succeeded() int {
	n := 0
	for _, res := range s.Results {
		if res.Success() {
			n++
		}
	}
	return n
}

// Rows returns the total number of combined rows.
func (s *Session) Rows() int {
	n := 0
	for _, res := range s.Results {
		if res.Success() {
			n += res.Records.Len()
		}
	}
	return n
}

// Combined concatenates every record set in input file order, then source
// row order.
func (s *Session) Combined() []types.Record {
	out := make([]types.Record, 0, s.Rows())
	for _, res := range s.Results {
		if res.Success() {
			out = append(out, res.Records.Records...)
		}
	}
	return out
}

// MappingHeader returns the header row of the mapping artifact.
func (s *Session) MappingHeader() []string {
	return append([]string{"File"}, s.fields...)
}

// MappingRows returns one row per successfully ingested file: the file name
// and the raw source header per canonical field.
func (s *Session) MappingRows() [][]string {
	var rows [][]string
	for _, res := range s.Results {
		if !res.Success() {
			continue
		}
		rows = append(rows, append([]string{filepath.Base(res.FilePath)}, res.Mapping.Row()...))
	}
	return rows
}

// LogLines returns one log line per file, in input order.
func (s *Session) LogLines() []string {
	lines := make([]string, len(s.Results))
	for i, res := range s.Results {
		lines[i] = res.Log.String()
	}
	return lines
}

// InvalidIdentifiers returns the number of combined rows whose NDC is
// INVALID.
func (s *Session) InvalidIdentifiers() int {
	n := 0
	for _, res := range s.Results {
		n += res.Stats.InvalidIdentifiers
	}
	return n
}

// SucceededPaths returns the input paths that produced a record set.
func (s *Session) SucceededPaths() []string {
	var out []string
	for _, res := range s.Results {
		if res.Success() {
			out = append(out, res.FilePath)
		}
	}
	return out
}
