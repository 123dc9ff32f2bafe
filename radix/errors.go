package radix

import "errors"

var (
	// ErrCounterOverflow is returned when the input is longer than the
	// running counts or destination indices can represent, or longer than
	// the sorter's configured maximum. It is raised before any output buffer
	// is written.
	ErrCounterOverflow = errors.New("input length exceeds counter range")

	// ErrLengthMismatch is returned by SortPairs when keys and values differ
	// in length.
	ErrLengthMismatch = errors.New("keys and values differ in length")
)
