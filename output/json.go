package output

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ChristianF88/bitsort/radix"
	"github.com/ChristianF88/bitsort/verify"
	"github.com/ChristianF88/bitsort/version"
)

// JSONOutput is the report written by the sort, demo and serve commands.
type JSONOutput struct {
	Metadata     Metadata       `json:"metadata"`
	General      General        `json:"general"`
	Passes       []PassResult   `json:"passes"`
	Verification *verify.Result `json:"verification,omitempty"`
	Values       []uint32       `json:"values,omitempty"`
	Indices      []int          `json:"indices,omitempty"`
	Warnings     []Warning      `json:"warnings"`
	Errors       []Error        `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Command     string    `json:"command"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// General contains overall statistics of one sort
type General struct {
	Source      string  `json:"source,omitempty"`
	Length      int     `json:"length"`
	MaxValue    uint64  `json:"max_value"`
	Digits      int     `json:"digits"`
	Workers     int     `json:"workers"`
	Grain       int     `json:"grain"`
	CounterBits int     `json:"counter_bits,omitempty"`
	Sorting     Timing  `json:"sorting"`
	Reading     *Timing `json:"reading,omitempty"`
}

// Timing holds the duration and throughput of a phase
type Timing struct {
	DurationUS    int64 `json:"duration_us"`
	RatePerSecond int64 `json:"rate_per_second"`
}

// PassResult summarises one bit pass
type PassResult struct {
	Bit        uint   `json:"bit"`
	Mask       uint64 `json:"mask"`
	Zeros      int    `json:"zeros"`
	Ones       int    `json:"ones"`
	DurationUS int64  `json:"duration_us"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewJSONOutput creates a new JSONOutput with default metadata
func NewJSONOutput(command string, startTime time.Time) *JSONOutput {
	return &JSONOutput{
		Metadata: Metadata{
			GeneratedAt: startTime,
			Command:     command,
			Version:     version.Version,
		},
		Passes:   []PassResult{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// NewTiming derives the throughput of n elements processed in d.
func NewTiming(n int, d time.Duration) Timing {
	t := Timing{DurationUS: d.Microseconds()}
	if d > 0 {
		t.RatePerSecond = int64(float64(n) / d.Seconds())
	}
	return t
}

// SetPlan copies the plan of a sort into the general section.
func (j *JSONOutput) SetPlan(plan radix.Plan) {
	j.General.Length = plan.Length
	j.General.MaxValue = plan.MaxValue
	j.General.Digits = plan.Digits
	j.General.Workers = plan.Workers
	j.General.Grain = plan.Grain
	j.General.CounterBits = plan.CounterBits
}

// SetPasses converts recorded passes into pass results.
func (j *JSONOutput) SetPasses(passes []radix.Pass) {
	j.Passes = make([]PassResult, len(passes))
	for i, p := range passes {
		j.Passes[i] = PassResult{
			Bit:        p.Bit,
			Mask:       p.Mask,
			Zeros:      p.Zeros,
			Ones:       p.Ones,
			DurationUS: p.Duration.Microseconds(),
		}
	}
}

// ToJSON converts the output to pretty-printed JSON
func (j *JSONOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (j *JSONOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(j)
}

// AddWarning adds a warning to the output (thread-safe)
func (j *JSONOutput) AddWarning(warningType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warnings = append(j.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the output (thread-safe)
func (j *JSONOutput) AddError(errorType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// HasErrors reports whether any error was recorded.
func (j *JSONOutput) HasErrors() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.Errors) > 0
}

// UpdateDuration updates the duration in metadata
func (j *JSONOutput) UpdateDuration(startTime time.Time) {
	j.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}
