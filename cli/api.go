package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ChristianF88/bitsort/config"
	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/radix"
	"github.com/ChristianF88/bitsort/tui"
	"github.com/ChristianF88/bitsort/verify"
	"github.com/rs/zerolog"
)

// errReportHasErrors makes the process exit non-zero after a report that
// carries errors has been written.
var errReportHasErrors = errors.New("sort finished with errors")

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
	TUI     bool
}

// runner carries what every command needs besides its configuration.
type runner struct {
	cfg    *config.Config
	logger zerolog.Logger
	level  zerolog.Level
	out    io.Writer
}

func newRunner(cfg *config.Config, levelOverride string, out, errOut io.Writer) (*runner, error) {
	if levelOverride != "" {
		cfg.Log.Level = levelOverride
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	return &runner{
		cfg:    cfg,
		logger: newLogger(errOut, level),
		level:  level,
		out:    out,
	}, nil
}

// tracer combines the recorder feeding the report with the log tracer when
// tracing is enabled.
func (r *runner) tracer(rec *radix.Recorder) radix.Tracer {
	if !r.cfg.Log.Trace {
		return rec
	}
	return radix.Tee(rec, NewLogTracer(r.logger, r.level))
}

// newSorter builds a sorter from the configuration, reporting into rec.
func (r *runner) newSorter(rec *radix.Recorder) *radix.Sorter[uint32] {
	opts := append(r.cfg.SorterOptions(), radix.WithTracer(r.tracer(rec)))
	return radix.New[uint32](opts...)
}

// sortValues sorts one input with s and fills a report. rec must be the
// recorder installed in s.
func (r *runner) sortValues(s *radix.Sorter[uint32], rec *radix.Recorder, command string, values []uint32) *output.JSONOutput {
	start := time.Now()
	report := output.NewJSONOutput(command, start)
	report.General.Length = len(values)

	var (
		sorted  []uint32
		indices []int
		err     error
	)
	sortStart := time.Now()
	if r.cfg.Output.Indices {
		idx := make([]int, len(values))
		for i := range idx {
			idx[i] = i
		}
		sorted, indices, err = radix.SortPairs(s, values, idx)
	} else {
		sorted, err = s.Sort(values)
	}
	sortDuration := time.Since(sortStart)

	if err != nil {
		errType := "sort"
		if errors.Is(err, radix.ErrCounterOverflow) {
			errType = "counter_overflow"
		}
		r.logger.Error().Err(err).Int("length", len(values)).Msg("sort rejected")
		report.AddError(errType, err.Error(), len(values))
		report.UpdateDuration(start)
		return report
	}

	report.SetPlan(rec.Plan())
	report.SetPasses(rec.Passes())
	report.General.Sorting = output.NewTiming(len(values), sortDuration)

	if r.cfg.Sort.Verify {
		res := verify.Check(s.Pool(), values, sorted)
		report.Verification = &res
		if !res.OK() {
			report.AddError("verification", fmt.Sprintf("sorted=%t permutation=%t", res.Sorted, res.Permutation), 1)
		}
	}
	if r.cfg.Output.Values {
		report.Values = sorted
	}
	if r.cfg.Output.Indices {
		report.Indices = indices
	}

	r.logger.Info().
		Int("length", len(values)).
		Int("passes", len(report.Passes)).
		Dur("sort", sortDuration).
		Msg("sorted")

	report.UpdateDuration(start)
	return report
}

// executeSort sorts values read from source and writes the report in the
// requested format, or opens the pass viewer.
func (r *runner) executeSort(command, source string, values []uint32, readDuration time.Duration, outputConfig OutputConfig) error {
	rec := radix.NewRecorder(outputConfig.TUI)
	s := r.newSorter(rec)
	defer s.Close()

	report := r.sortValues(s, rec, command, values)
	report.General.Source = source
	if readDuration > 0 {
		reading := output.NewTiming(len(values), readDuration)
		report.General.Reading = &reading
	}

	if plotPath := r.cfg.Output.PlotPath; plotPath != "" && !report.HasErrors() {
		plotStart := time.Now()
		if err := output.PlotPasses(report.Passes, plotPath); err != nil {
			report.AddError("plot", err.Error(), 1)
		} else {
			report.AddWarning("info", fmt.Sprintf("Pass plot generated in %v at %s", time.Since(plotStart), plotPath), 0)
		}
	}

	if outputConfig.TUI {
		return executeTUI(report, rec.Passes())
	}

	if err := outputResult(r.out, report, outputConfig); err != nil {
		return err
	}
	if report.HasErrors() {
		return errReportHasErrors
	}
	return nil
}

// executeTUI shows the passes of a finished sort.
func executeTUI(report *output.JSONOutput, passes []radix.Pass) error {
	app := tui.NewApp(report, passes)
	if report.HasErrors() {
		app.ShowError(report.Errors[0].Message)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// reportFormatter is implemented by every report.
type reportFormatter interface {
	ToJSON() ([]byte, error)
	ToCompactJSON() ([]byte, error)
	FormatPlain() string
}

// outputResult is the unified output function that handles all output formats
func outputResult(w io.Writer, result reportFormatter, outputConfig OutputConfig) error {
	if outputConfig.Plain {
		_, err := fmt.Fprint(w, result.FormatPlain())
		return err
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = result.ToCompactJSON()
	} else {
		jsonBytes, err = result.ToJSON()
	}

	if err != nil {
		fmt.Fprintf(w, `{"error": "failed to marshal JSON output: %v"}`+"\n", err)
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
