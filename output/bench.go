package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ChristianF88/bitsort/version"
)

// BenchOutput is the report of the bench command.
type BenchOutput struct {
	Metadata Metadata      `json:"metadata"`
	Workers  int           `json:"workers"`
	Grain    int           `json:"grain"`
	Results  []BenchResult `json:"results"`
}

// BenchResult is the timing of one algorithm on one input size.
type BenchResult struct {
	Size      int    `json:"size"`
	Algorithm string `json:"algorithm"`
	Timing
	// Speedup relative to the standard library sort on the same input.
	Speedup float64 `json:"speedup"`
}

// NewBenchOutput creates an empty bench report.
func NewBenchOutput(startTime time.Time, workers, grain int) *BenchOutput {
	return &BenchOutput{
		Metadata: Metadata{
			GeneratedAt: startTime,
			Command:     "bench",
			Version:     version.Version,
		},
		Workers: workers,
		Grain:   grain,
		Results: []BenchResult{},
	}
}

// Add records one measurement. baseline is the standard library duration on
// the same input and may be zero.
func (b *BenchOutput) Add(size int, algorithm string, d, baseline time.Duration) {
	r := BenchResult{Size: size, Algorithm: algorithm, Timing: NewTiming(size, d)}
	if d > 0 && baseline > 0 {
		r.Speedup = float64(baseline) / float64(d)
	}
	b.Results = append(b.Results, r)
}

// ToJSON converts the report to pretty-printed JSON
func (b *BenchOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ToCompactJSON converts the report to compact JSON
func (b *BenchOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(b)
}

// FormatPlain renders the report as a table.
func (b *BenchOutput) FormatPlain() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bitsort bench (%s), %d workers, grain %d\n\n", b.Metadata.Version, b.Workers, b.Grain)
	sb.WriteString("Size         Algorithm    Time           Rate/s         Speedup\n")
	for _, r := range b.Results {
		fmt.Fprintf(&sb, "%-12d %-12s %-14s %-14d %.2fx\n",
			r.Size, r.Algorithm, time.Duration(r.DurationUS)*time.Microsecond, r.RatePerSecond, r.Speedup)
	}
	return sb.String()
}
