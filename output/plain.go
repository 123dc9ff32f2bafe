package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxPlainValues caps how many sorted values the plain format prints.
const maxPlainValues = 64

// FormatPlain renders the report for humans.
func (j *JSONOutput) FormatPlain() string {
	var b strings.Builder

	fmt.Fprintf(&b, "bitsort %s (%s)\n", j.Metadata.Command, j.Metadata.Version)
	if j.General.Source != "" {
		fmt.Fprintf(&b, "Source:      %s\n", j.General.Source)
	}
	fmt.Fprintf(&b, "Elements:    %d\n", j.General.Length)
	fmt.Fprintf(&b, "Max value:   %d (%d bits)\n", j.General.MaxValue, j.General.Digits)
	fmt.Fprintf(&b, "Workers:     %d (grain %d)\n", j.General.Workers, j.General.Grain)
	if j.General.CounterBits > 0 {
		fmt.Fprintf(&b, "Counters:    %d-bit\n", j.General.CounterBits)
	}
	fmt.Fprintf(&b, "Sort time:   %s\n", time.Duration(j.General.Sorting.DurationUS)*time.Microsecond)

	if len(j.Passes) > 0 {
		b.WriteString("\nPass  Bit  Mask        Zeros      Ones       Time\n")
		for i, p := range j.Passes {
			fmt.Fprintf(&b, "%-5d %-4d %-11s %-10d %-10d %s\n",
				i, p.Bit, fmt.Sprintf("%#x", p.Mask), p.Zeros, p.Ones,
				time.Duration(p.DurationUS)*time.Microsecond)
		}
	}

	if j.Verification != nil {
		fmt.Fprintf(&b, "\nVerified:    sorted=%t permutation=%t\n", j.Verification.Sorted, j.Verification.Permutation)
	}

	if len(j.Values) > 0 {
		b.WriteString("\nSorted:      ")
		b.WriteString(joinValues(j.Values, maxPlainValues))
		b.WriteString("\n")
	}
	if len(j.Indices) > 0 {
		b.WriteString("Indices:     ")
		b.WriteString(joinInts(j.Indices, maxPlainValues))
		b.WriteString("\n")
	}

	for _, w := range j.Warnings {
		fmt.Fprintf(&b, "warning [%s]: %s\n", w.Type, w.Message)
	}
	for _, e := range j.Errors {
		fmt.Fprintf(&b, "error [%s]: %s\n", e.Type, e.Message)
	}

	return b.String()
}

func joinValues(values []uint32, limit int) string {
	parts := make([]string, 0, min(len(values), limit))
	for i, v := range values {
		if i == limit {
			break
		}
		parts = append(parts, strconv.FormatUint(uint64(v), 10))
	}
	s := strings.Join(parts, " ")
	if len(values) > limit {
		s += fmt.Sprintf(" ... (%d more)", len(values)-limit)
	}
	return s
}

func joinInts(values []int, limit int) string {
	parts := make([]string, 0, min(len(values), limit))
	for i, v := range values {
		if i == limit {
			break
		}
		parts = append(parts, strconv.Itoa(v))
	}
	s := strings.Join(parts, " ")
	if len(values) > limit {
		s += fmt.Sprintf(" ... (%d more)", len(values)-limit)
	}
	return s
}

// FormatNumber inserts thousands separators.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	if n < 0 {
		b.WriteByte('-')
		s = s[1:]
	}
	if len(s) <= 3 {
		b.WriteString(s)
		return b.String()
	}
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
