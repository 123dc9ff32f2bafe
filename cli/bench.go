package cli

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianF88/bitsort/output"
	"github.com/ChristianF88/bitsort/radix"
)

// parseSizes parses a comma separated list of input sizes.
func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", field, err)
		}
		if n < 0 || int64(n) > radix.MaxLength {
			return nil, fmt.Errorf("size %d out of range [0, %d]", n, radix.MaxLength)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}

// executeBench times the parallel sorter, the sequential byte radix sort and
// the standard library on the same random inputs.
func (r *runner) executeBench(sizes []int, seed int64, outputConfig OutputConfig) error {
	s := radix.New[uint32](r.cfg.SorterOptions()...)
	defer s.Close()

	report := output.NewBenchOutput(time.Now(), s.Pool().NumWorkers(), s.Pool().Grain())
	rng := rand.New(rand.NewSource(seed))

	for _, n := range sizes {
		data := make([]uint32, n)
		for i := range data {
			data[i] = rng.Uint32()
		}

		want := slices.Clone(data)
		start := time.Now()
		slices.Sort(want)
		baseline := time.Since(start)
		report.Add(n, "stdlib", baseline, baseline)

		seq := slices.Clone(data)
		start = time.Now()
		radix.SequentialSort(seq)
		report.Add(n, "sequential", time.Since(start), baseline)
		if !slices.Equal(want, seq) {
			return fmt.Errorf("sequential sort disagrees with the standard library at size %d", n)
		}

		start = time.Now()
		got, err := s.Sort(data)
		if err != nil {
			return fmt.Errorf("parallel sort at size %d: %w", n, err)
		}
		report.Add(n, "parallel", time.Since(start), baseline)
		if !slices.Equal(want, got) {
			return fmt.Errorf("parallel sort disagrees with the standard library at size %d", n)
		}

		r.logger.Debug().Int("size", n).Dur("stdlib", baseline).Msg("bench size done")
	}

	report.Metadata.DurationMS = time.Since(report.Metadata.GeneratedAt).Milliseconds()
	return outputResult(r.out, report, outputConfig)
}
