// Package parallel provides the fork-join building blocks used by the sort
// stages: a persistent worker pool, a contiguous range partitioner, a
// parallel map over ranges and a tree reduction.
//
// Usage:
//
//	pool := parallel.New(0, 0) // available parallelism, default grain
//	defer pool.Close()
//
//	pool.For(len(xs), func(chunk int, r parallel.Range) {
//	    for i := r.Start; i < r.End; i++ {
//	        ys[i] = f(xs[i])
//	    }
//	})
package parallel

import (
	"runtime"
	"sync"
)

// DefaultGrain is the smallest number of elements handed to a single worker.
// Below it the goroutine hand-off costs more than the work itself.
const DefaultGrain = 4096

// Available reports the ambient parallelism. It never returns less than 1.
func Available() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// Range is the half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Pool is a persistent worker pool. Workers are spawned once and reused for
// every For call until Close.
type Pool struct {
	numWorkers int
	grain      int
	workC      chan workItem

	// mu is held for reading while a call hands chunks to workC and for
	// writing while Close closes it.
	mu     sync.RWMutex
	closed bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with numWorkers workers. numWorkers <= 0 uses
// Available(); grain <= 0 uses DefaultGrain.
func New(numWorkers, grain int) *Pool {
	if numWorkers <= 0 {
		numWorkers = Available()
	}
	if grain <= 0 {
		grain = DefaultGrain
	}

	p := &Pool{
		numWorkers: numWorkers,
		grain:      grain,
		workC:      make(chan workItem, numWorkers*2),
	}

	// The caller goroutine always runs one chunk itself.
	for range numWorkers - 1 {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers, the caller included.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Grain returns the minimum chunk size.
func (p *Pool) Grain() int {
	return p.grain
}

// Close stops the workers. Calling Close more than once is safe. Close waits
// for calls that are handing out chunks; For on a closed pool runs
// sequentially.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.workC)
	}
}

// Chunks partitions [0, n) into at most NumWorkers contiguous ranges. Every
// range except the last holds at least Grain elements. n == 0 yields no
// ranges.
func (p *Pool) Chunks(n int) []Range {
	if n <= 0 {
		return nil
	}

	k := n / p.grain
	if k > p.numWorkers {
		k = p.numWorkers
	}
	if k < 1 {
		k = 1
	}

	size := (n + k - 1) / k
	k = (n + size - 1) / size

	chunks := make([]Range, k)
	for i := range chunks {
		start := i * size
		chunks[i] = Range{Start: start, End: min(start+size, n)}
	}
	return chunks
}

// For runs fn once per chunk of [0, n) and blocks until all chunks are done.
// chunk is the index of r in Chunks(n). fn must not call back into the pool.
func (p *Pool) For(n int, fn func(chunk int, r Range)) {
	p.ForChunks(p.Chunks(n), fn)
}

// ForChunks is For over a precomputed partition. Stages that walk the same
// partition twice (the two halves of a scan) use it to keep chunk indices
// stable between walks.
func (p *Pool) ForChunks(chunks []Range, fn func(chunk int, r Range)) {
	if len(chunks) == 0 {
		return
	}

	if len(chunks) == 1 {
		fn(0, chunks[0])
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for i, r := range chunks {
			fn(i, r)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(chunks) - 1)
	for i := 1; i < len(chunks); i++ {
		i, r := i, chunks[i]
		p.workC <- workItem{
			fn:      func() { fn(i, r) },
			barrier: &wg,
		}
	}
	p.mu.RUnlock()

	fn(0, chunks[0])
	wg.Wait()
}
