package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ChristianF88/bitsort/ingestor"
	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/radix"
)

// pollInterval is how often the serve loop drains the ingestor.
const pollInterval = 50 * time.Millisecond

// executeServe listens for lumberjack clients and prints one report per
// sorted batch until ctx is cancelled.
func (r *runner) executeServe(ctx context.Context, outputConfig OutputConfig) error {
	ing, err := ingestor.NewTCPIngestor(":"+r.cfg.Serve.Port, r.cfg.Serve.ReadTimeout)
	if err != nil {
		return fmt.Errorf("error creating ingestor: %w", err)
	}
	defer ing.Close()

	if err := ing.Accept(); err != nil {
		return fmt.Errorf("error accepting connections: %w", err)
	}
	r.logger.Info().Str("addr", ing.Addr().String()).Msg("waiting for lumberjack clients")

	return r.serve(ctx, ing, func(report *output.JSONOutput) error {
		return outputResult(r.out, report, outputConfig)
	})
}

// serve drains ing, sorts whenever batchSize keys are pending or the flush
// interval elapses with keys pending, and hands each report to emit. Pending
// keys are flushed before returning.
func (r *runner) serve(ctx context.Context, ing *ingestor.TCPIngestor, emit func(*output.JSONOutput) error) error {
	rec := radix.NewRecorder(false)
	s := r.newSorter(rec)
	defer s.Close()

	batchSize := r.cfg.Serve.BatchSize
	pending := make([]uint32, 0, batchSize)
	skipped := 0

	flush := func(values []uint32) error {
		if len(values) == 0 {
			return nil
		}
		report := r.sortValues(s, rec, "serve", values)
		report.General.Source = "lumberjack"
		if skipped > 0 {
			report.AddWarning("skipped_events", fmt.Sprintf("%d events carried no valid keys", skipped), skipped)
			skipped = 0
		}
		return emit(report)
	}

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	flushTicker := time.NewTicker(r.cfg.Serve.FlushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Int("pending", len(pending)).Msg("shutting down")
			return flush(pending)

		case <-flushTicker.C:
			if err := flush(pending); err != nil {
				return err
			}
			pending = pending[:0]

		case <-poll.C:
			batch, err := ing.ReadBatch()
			if err != nil {
				return fmt.Errorf("read error: %w", err)
			}
			if batch.Skipped > 0 {
				r.logger.Warn().Int("skipped", batch.Skipped).Int("events", batch.Events).Msg("events without keys")
				skipped += batch.Skipped
			}
			pending = append(pending, batch.Values...)

			for len(pending) >= batchSize {
				if err := flush(pending[:batchSize]); err != nil {
					return err
				}
				pending = append(pending[:0], pending[batchSize:]...)
			}

			if len(batch.Values) == 0 && batch.Events == 0 && ing.IsClosed() {
				r.logger.Info().Msg("ingestor closed")
				return flush(pending)
			}
		}
	}
}
