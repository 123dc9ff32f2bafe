package radix

// insertionCutoff is the length up to which insertion sort beats counting
// passes.
const insertionCutoff = 64

// SequentialSort sorts data in place on the calling goroutine. It is the
// single-threaded baseline the bit-parallel Sorter is benchmarked against:
// a byte-wide LSD radix sort that, like Sorter, stops after the highest
// non-empty digit of the largest key.
func SequentialSort[K Key](data []K) {
	if len(data) <= insertionCutoff {
		insertionSort(data)
		return
	}

	var maxValue K
	for _, x := range data {
		maxValue = max(maxValue, x)
	}
	passes := bytePasses(Digits(maxValue))
	if passes == 0 {
		return
	}

	b := &buffers[K]{slots: [2][]K{data, make([]K, len(data))}}
	for d := 0; d < passes; d++ {
		countingPass(b.src(), b.dst(), uint(8*d))
		b.flip()
	}
	if out := b.result(); &out[0] != &data[0] {
		copy(data, out)
	}
}

// bytePasses is the number of 8-bit digits covering bits significant bits.
func bytePasses(bits int) int {
	return (bits + 7) / 8
}

// countingPass stably distributes src into dst by the byte at shift.
func countingPass[K Key](src, dst []K, shift uint) {
	var offsets [256]int
	for _, x := range src {
		offsets[uint8(x>>shift)]++
	}

	next := 0
	for digit, count := range offsets {
		offsets[digit] = next
		next += count
	}

	for _, x := range src {
		digit := uint8(x >> shift)
		dst[offsets[digit]] = x
		offsets[digit]++
	}
}

func insertionSort[K Key](data []K) {
	for i := 1; i < len(data); i++ {
		x := data[i]
		j := i
		for ; j > 0 && data[j-1] > x; j-- {
			data[j] = data[j-1]
		}
		data[j] = x
	}
}
