package radix

import (
	"sync"
	"time"
)

// Plan describes a sort before its first pass.
type Plan struct {
	Length      int
	MaxValue    uint64
	Digits      int
	Workers     int
	Grain       int
	CounterBits int
}

// Pass describes one completed classify, count and scatter cycle.
type Pass struct {
	Index    int
	Bit      uint
	Mask     uint64
	Zeros    int // size of the block with the bit clear
	Ones     int // size of the block with the bit set
	Duration time.Duration

	// Detail is only filled when the tracer asks for it with Verbose.
	Detail *PassDetail
}

// PassDetail holds copies of the vectors a pass read and produced.
type PassDetail struct {
	Input      []uint64
	Labels     []Label
	ZeroCounts []uint64
	OneCounts  []uint64
	Output     []uint64
}

// Tracer observes a sort. Tracers are called from the goroutine running the
// sort, between passes, never concurrently with a stage.
type Tracer interface {
	// Verbose reports whether Pass.Detail should be filled. Copying the
	// vectors costs O(N) per pass.
	Verbose() bool
	Begin(plan Plan)
	Pass(pass Pass)
}

// Recorder is a Tracer that keeps the plan and passes of the most recent
// sort.
type Recorder struct {
	mu      sync.Mutex
	verbose bool
	plan    Plan
	passes  []Pass
}

// NewRecorder returns a Recorder. With verbose set the recorded passes carry
// their vectors.
func NewRecorder(verbose bool) *Recorder {
	return &Recorder{verbose: verbose}
}

func (r *Recorder) Verbose() bool {
	return r.verbose
}

func (r *Recorder) Begin(plan Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plan = plan
	r.passes = r.passes[:0]
}

func (r *Recorder) Pass(pass Pass) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes = append(r.passes, pass)
}

// Plan returns the plan of the last sort.
func (r *Recorder) Plan() Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plan
}

// Passes returns a copy of the recorded passes.
func (r *Recorder) Passes() []Pass {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Pass, len(r.passes))
	copy(out, r.passes)
	return out
}

// Tee fans every event out to all tracers. It is verbose if any of them is.
func Tee(tracers ...Tracer) Tracer {
	return tee(tracers)
}

type tee []Tracer

func (t tee) Verbose() bool {
	for _, tr := range t {
		if tr.Verbose() {
			return true
		}
	}
	return false
}

func (t tee) Begin(plan Plan) {
	for _, tr := range t {
		tr.Begin(plan)
	}
}

func (t tee) Pass(pass Pass) {
	for _, tr := range t {
		tr.Pass(pass)
	}
}

func widen[E Key](xs []E) []uint64 {
	out := make([]uint64, len(xs))
	for i, x := range xs {
		out[i] = uint64(x)
	}
	return out
}
