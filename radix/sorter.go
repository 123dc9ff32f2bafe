// Package radix sorts unsigned integers with a least-significant-bit radix
// sort built from data-parallel stages.
//
// Every bit of the largest key costs one pass of three stages:
//
//	Classify     labels[i] = bit of in[i]                  (parallel map)
//	CountPrefix  running counts of 0 and 1 labels           (two-phase scan)
//	Scatter      0s to a left block, 1s to a right block    (disjoint writes)
//
// Both blocks keep the relative order of the previous pass, which is what
// makes the composition of passes a sort.
package radix

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ChristianF88/bitsort/parallel"
)

// MaxLength is the longest input any Sorter accepts. Running counts and
// destination indices are at most 32 bits wide.
const MaxLength int64 = math.MaxUint32

// Option configures a Sorter.
type Option func(*options)

type options struct {
	workers   int
	grain     int
	maxLength int64
	tracer    Tracer
	pool      *parallel.Pool
}

// WithWorkers sets the number of workers. n <= 0 uses the available
// parallelism.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithGrain sets the smallest chunk handed to one worker.
func WithGrain(n int) Option {
	return func(o *options) { o.grain = n }
}

// WithMaxLength lowers the longest accepted input. Values <= 0 or above
// MaxLength leave MaxLength in place.
func WithMaxLength(n int64) Option {
	return func(o *options) { o.maxLength = n }
}

// WithTracer installs a tracer called once before the first pass and once
// after every pass.
func WithTracer(t Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithPool shares an existing pool. The Sorter does not close it.
func WithPool(p *parallel.Pool) Option {
	return func(o *options) { o.pool = p }
}

// Sorter sorts slices of K. A Sorter is safe for concurrent use; the sorts
// share its worker pool.
type Sorter[K Key] struct {
	pool      *parallel.Pool
	ownsPool  bool
	maxLength int64
	tracer    Tracer
}

// New creates a Sorter.
func New[K Key](opts ...Option) *Sorter[K] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Sorter[K]{
		pool:      o.pool,
		maxLength: o.maxLength,
		tracer:    o.tracer,
	}
	if s.pool == nil {
		s.pool = parallel.New(o.workers, o.grain)
		s.ownsPool = true
	}
	if s.maxLength <= 0 || s.maxLength > MaxLength {
		s.maxLength = MaxLength
	}
	return s
}

// Close releases the worker pool if the Sorter created it.
func (s *Sorter[K]) Close() {
	if s.ownsPool {
		s.pool.Close()
	}
}

// Pool returns the worker pool used by the stages.
func (s *Sorter[K]) Pool() *parallel.Pool {
	return s.pool
}

// MaxLength returns the longest input the Sorter accepts.
func (s *Sorter[K]) MaxLength() int64 {
	return s.maxLength
}

// Sort returns a sorted copy of in. in is not modified. The only error is
// ErrCounterOverflow for inputs longer than MaxLength.
func (s *Sorter[K]) Sort(in []K) ([]K, error) {
	keys, _, err := SortPairs[K, struct{}](s, in, nil)
	return keys, err
}

// SortPairs sorts keys and moves vals along the same permutation. vals may
// be nil; otherwise it must be as long as keys. Values with equal keys keep
// their relative order.
func SortPairs[K Key, V any](s *Sorter[K], keys []K, vals []V) ([]K, []V, error) {
	n := len(keys)
	if vals != nil && len(vals) != n {
		return nil, nil, fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, n, len(vals))
	}
	if int64(n) > s.maxLength {
		return nil, nil, fmt.Errorf("%w: %d elements, limit %d", ErrCounterOverflow, n, s.maxLength)
	}

	if n <= math.MaxUint16 {
		return sortPairs[K, uint16](s, keys, vals)
	}
	return sortPairs[K, uint32](s, keys, vals)
}

func sortPairs[K Key, C Counter, V any](s *Sorter[K], keys []K, vals []V) ([]K, []V, error) {
	n := len(keys)

	kb := newBuffers(keys)
	var vb *buffers[V]
	if vals != nil {
		vb = newBuffers(vals)
	}

	maxValue := MaxValue(s.pool, keys)
	digits := Digits(maxValue)

	verbose := false
	if s.tracer != nil {
		verbose = s.tracer.Verbose()
		s.tracer.Begin(Plan{
			Length:      n,
			MaxValue:    uint64(maxValue),
			Digits:      digits,
			Workers:     s.pool.NumWorkers(),
			Grain:       s.pool.Grain(),
			CounterBits: counterBits[C](),
		})
	}

	if digits > 0 {
		labels := getLabels(n)
		defer returnLabels(labels)
		zeros := make([]C, n)
		ones := make([]C, n)

		for d := 0; d < digits; d++ {
			start := time.Now()
			in, out := kb.src(), kb.dst()

			Classify(s.pool, in, uint(d), labels)
			if err := CountPrefix(s.pool, labels, zeros, ones); err != nil {
				return nil, nil, err
			}
			Scatter(s.pool, in, labels, zeros, ones, out)
			if vb != nil {
				ScatterPayload(s.pool, vb.src(), labels, zeros, ones, vb.dst())
				vb.flip()
			}
			kb.flip()

			if s.tracer != nil {
				pass := Pass{
					Index:    d,
					Bit:      uint(d),
					Mask:     uint64(1) << uint(d),
					Zeros:    int(zeros[n-1]),
					Ones:     int(ones[n-1]),
					Duration: time.Since(start),
				}
				if verbose {
					pass.Detail = &PassDetail{
						Input:      widen(in),
						Labels:     append([]Label(nil), labels...),
						ZeroCounts: widen(zeros),
						OneCounts:  widen(ones),
						Output:     widen(out),
					}
				}
				s.tracer.Pass(pass)
			}
		}
	}

	var outVals []V
	if vb != nil {
		outVals = vb.result()
	}
	return kb.result(), outVals, nil
}

func counterBits[C Counter]() int {
	if counterMax[C]() == math.MaxUint16 {
		return 16
	}
	return 32
}

var (
	defaultOnce   sync.Once
	defaultSorter *Sorter[uint32]
)

// Sort sorts 32-bit keys with a shared Sorter using the available
// parallelism.
func Sort(in []uint32) ([]uint32, error) {
	defaultOnce.Do(func() {
		defaultSorter = New[uint32]()
	})
	return defaultSorter.Sort(in)
}
