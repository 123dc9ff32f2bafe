package radix

import (
	"fmt"
	"math/bits"

	"github.com/ChristianF88/bitsort/parallel"
)

// Key is the set of element types the sorter accepts.
type Key interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Counter is the set of types used for running counts and destination
// indices. The width is picked per sort from the input length.
type Counter interface {
	~uint16 | ~uint32
}

// Label marks an element as having the current bit clear (0) or set (1).
type Label = uint8

// MaxValue returns the largest element of in, or 0 for an empty slice.
func MaxValue[K Key](p *parallel.Pool, in []K) K {
	return parallel.Reduce(p, len(in), K(0),
		func(r parallel.Range, acc K) K {
			for _, v := range in[r.Start:r.End] {
				if v > acc {
					acc = v
				}
			}
			return acc
		},
		func(a, b K) K { return max(a, b) },
	)
}

// Digits returns the number of bit passes needed to sort keys no larger
// than maxValue.
func Digits[K Key](maxValue K) int {
	return bits.Len64(uint64(maxValue))
}

// Classify sets labels[i] to 1 when bit of in[i] is set and to 0 otherwise.
// labels must be at least len(in) long.
func Classify[K Key](p *parallel.Pool, in []K, bit uint, labels []Label) {
	mask := K(1) << bit
	p.For(len(in), func(_ int, r parallel.Range) {
		for i := r.Start; i < r.End; i++ {
			if in[i]&mask != 0 {
				labels[i] = 1
			} else {
				labels[i] = 0
			}
		}
	})
}

// counterMax returns the largest value representable by C.
func counterMax[C Counter]() uint64 {
	var zero C
	return uint64(^zero)
}

// CountPrefix computes inclusive running counts of 1-labels into ones and
// derives the running counts of 0-labels into zeros, so that
// zeros[i]+ones[i] == i+1 for every i.
//
// The scan runs in three steps over one partition: every chunk writes its
// local running sum into ones and records its total; the totals are turned
// into chunk offsets in index order; every chunk then adds its offset and
// fills zeros.
func CountPrefix[C Counter](p *parallel.Pool, labels []Label, zeros, ones []C) error {
	n := len(labels)
	if uint64(n) > counterMax[C]() {
		return fmt.Errorf("%w: %d labels, counter limit %d", ErrCounterOverflow, n, counterMax[C]())
	}

	chunks := p.Chunks(n)
	if len(chunks) == 0 {
		return nil
	}

	totals := make([]C, len(chunks))
	p.ForChunks(chunks, func(chunk int, r parallel.Range) {
		var sum C
		for i := r.Start; i < r.End; i++ {
			sum += C(labels[i])
			ones[i] = sum
		}
		totals[chunk] = sum
	})

	// Carries must be resolved left to right.
	var carry C
	for c, total := range totals {
		totals[c] = carry
		carry += total
	}

	p.ForChunks(chunks, func(chunk int, r parallel.Range) {
		offset := totals[chunk]
		for i := r.Start; i < r.End; i++ {
			ones[i] += offset
			zeros[i] = C(i+1) - ones[i]
		}
	})
	return nil
}

// Scatter writes every element of in to its position for this pass:
// elements labelled 0 keep their relative order in a block at the front of
// out, elements labelled 1 keep theirs in the block right after it.
// Destinations are distinct, so chunks write without synchronisation.
func Scatter[K Key, C Counter](p *parallel.Pool, in []K, labels []Label, zeros, ones []C, out []K) {
	scatter(p, in, labels, zeros, ones, out)
}

// ScatterPayload moves a payload slice along the same permutation Scatter
// applies to the keys.
func ScatterPayload[V any, C Counter](p *parallel.Pool, in []V, labels []Label, zeros, ones []C, out []V) {
	scatter(p, in, labels, zeros, ones, out)
}

func scatter[E any, C Counter](p *parallel.Pool, in []E, labels []Label, zeros, ones []C, out []E) {
	n := len(in)
	if n == 0 {
		return
	}
	boundary := int(zeros[n-1])

	p.For(n, func(_ int, r parallel.Range) {
		for i := r.Start; i < r.End; i++ {
			if labels[i] == 0 {
				out[int(zeros[i])-1] = in[i]
			} else {
				out[boundary+int(ones[i])-1] = in[i]
			}
		}
	})
}
