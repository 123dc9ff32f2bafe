package radix

// buffers is the pair of working arrays a sort alternates between. active
// selects the slot holding the latest complete permutation; a pass reads it
// and writes the other slot, then flip makes the written slot active.
type buffers[E any] struct {
	slots  [2][]E
	active int
}

func newBuffers[E any](src []E) *buffers[E] {
	b := &buffers[E]{}
	b.slots[0] = make([]E, len(src))
	copy(b.slots[0], src)
	return b
}

func (b *buffers[E]) src() []E {
	return b.slots[b.active]
}

// dst allocates the second slot on first use, so sorts that need no pass
// hold a single copy.
func (b *buffers[E]) dst() []E {
	other := 1 - b.active
	if b.slots[other] == nil {
		b.slots[other] = make([]E, len(b.slots[b.active]))
	}
	return b.slots[other]
}

func (b *buffers[E]) flip() {
	b.active = 1 - b.active
}

// result returns the active slot. The buffers must not be used afterwards.
func (b *buffers[E]) result() []E {
	return b.slots[b.active]
}
