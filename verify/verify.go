// Package verify checks sort results independently of the sorter that
// produced them.
package verify

import (
	"sync/atomic"

	"github.com/ChristianF88/bitsort/parallel"
	"github.com/ChristianF88/bitsort/radix"
	"github.com/alphadose/haxmap"
)

// Result is the outcome of Check.
type Result struct {
	Sorted      bool `json:"sorted"`
	Permutation bool `json:"permutation"`
}

// OK reports whether both checks passed.
func (r Result) OK() bool {
	return r.Sorted && r.Permutation
}

// Check verifies that out is a non-descending permutation of in.
func Check[K radix.Key](p *parallel.Pool, in, out []K) Result {
	return Result{
		Sorted:      IsSorted(p, out),
		Permutation: IsPermutation(p, in, out),
	}
}

// IsSorted reports whether xs is in non-descending order. Chunks compare
// their own pairs plus the pair straddling their left edge.
func IsSorted[K radix.Key](p *parallel.Pool, xs []K) bool {
	if len(xs) < 2 {
		return true
	}
	return parallel.Reduce(p, len(xs), true,
		func(r parallel.Range, ok bool) bool {
			start := max(r.Start, 1)
			for i := start; i < r.End && ok; i++ {
				if xs[i] < xs[i-1] {
					ok = false
				}
			}
			return ok
		},
		func(a, b bool) bool { return a && b },
	)
}

// IsPermutation reports whether a and b hold the same multiset of values.
// Every distinct value of a gets its counter before any worker starts, so
// the parallel tally only reads the map: occurrences are counted up for a
// and down for b, and the slices are permutations of each other iff every
// count ends at 0 and b holds no value missing from a.
func IsPermutation[K radix.Key](p *parallel.Pool, a, b []K) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}

	counts := haxmap.New[uint64, *atomic.Int64](uintptr(len(a)))
	for _, x := range a {
		if _, ok := counts.Get(uint64(x)); !ok {
			counts.Set(uint64(x), new(atomic.Int64))
		}
	}

	var unknown atomic.Bool
	tally := func(xs []K, delta int64) {
		p.For(len(xs), func(_ int, r parallel.Range) {
			for _, x := range xs[r.Start:r.End] {
				c, ok := counts.Get(uint64(x))
				if !ok {
					unknown.Store(true)
					return
				}
				c.Add(delta)
			}
		})
	}
	tally(a, 1)
	tally(b, -1)
	if unknown.Load() {
		return false
	}

	balanced := true
	counts.ForEach(func(_ uint64, c *atomic.Int64) bool {
		if c.Load() != 0 {
			balanced = false
			return false
		}
		return true
	})
	return balanced
}
