package radix

import "sync"

// maxPooledLabels caps the label slices kept for reuse. Larger slices are
// left to the garbage collector to prevent memory bloat after one huge sort.
const maxPooledLabels = 1 << 24

var labelPool = sync.Pool{
	New: func() interface{} {
		slice := make([]Label, 0, 1024)
		return &slice
	},
}

// getLabels returns a label slice of length n from the pool.
func getLabels(n int) []Label {
	slicePtr := labelPool.Get().(*[]Label)
	if cap(*slicePtr) < n {
		*slicePtr = make([]Label, n)
	}
	return (*slicePtr)[:n]
}

// returnLabels hands a label slice back to the pool.
func returnLabels(labels []Label) {
	if cap(labels) <= maxPooledLabels {
		emptySlice := labels[:0]
		labelPool.Put(&emptySlice)
	}
}
