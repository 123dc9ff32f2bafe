package parallel

// Reduce folds [0, n) in parallel. local folds one chunk starting from
// identity; chunk results are then combined pairwise up a binary tree.
// combine must be associative. For n == 0 Reduce returns identity.
func Reduce[T any](p *Pool, n int, identity T, local func(r Range, acc T) T, combine func(a, b T) T) T {
	chunks := p.Chunks(n)
	if len(chunks) == 0 {
		return identity
	}

	partial := make([]T, len(chunks))
	p.ForChunks(chunks, func(chunk int, r Range) {
		partial[chunk] = local(r, identity)
	})

	for stride := 1; stride < len(partial); stride *= 2 {
		for i := 0; i+stride < len(partial); i += 2 * stride {
			partial[i] = combine(partial[i], partial[i+stride])
		}
	}
	return partial[0]
}
