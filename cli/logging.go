package cli

import (
	"io"
	"time"

	"github.com/ChristianF88/bitsort/radix"
	"github.com/rs/zerolog"
)

// newLogger writes human readable events to w, normally stderr so stdout
// stays reserved for the report.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// LogTracer logs the plan and every pass of a sort. Pass vectors are only
// copied and logged when the logger is at trace level.
type LogTracer struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewLogTracer returns a tracer writing to logger, which was built with
// level.
func NewLogTracer(logger zerolog.Logger, level zerolog.Level) *LogTracer {
	return &LogTracer{logger: logger, level: level}
}

func (t *LogTracer) Verbose() bool {
	return t.level <= zerolog.TraceLevel
}

func (t *LogTracer) Begin(plan radix.Plan) {
	t.logger.Debug().
		Int("length", plan.Length).
		Uint64("max", plan.MaxValue).
		Int("digits", plan.Digits).
		Int("workers", plan.Workers).
		Int("grain", plan.Grain).
		Int("counter_bits", plan.CounterBits).
		Msg("sort plan")
}

func (t *LogTracer) Pass(pass radix.Pass) {
	t.logger.Debug().
		Int("pass", pass.Index).
		Uint("bit", pass.Bit).
		Int("zeros", pass.Zeros).
		Int("ones", pass.Ones).
		Dur("duration", pass.Duration).
		Msg("pass done")

	if d := pass.Detail; d != nil {
		t.logger.Trace().
			Uint("bit", pass.Bit).
			Uints64("input", d.Input).
			Uints8("labels", d.Labels).
			Uints64("zeros", d.ZeroCounts).
			Uints64("ones", d.OneCounts).
			Uints64("output", d.Output).
			Msg("pass vectors")
	}
}
