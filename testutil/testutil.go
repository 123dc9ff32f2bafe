package testutil

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
)

// RandomUint32 returns n pseudo-random values below limit (any value when
// limit is 0) from a fixed seed.
func RandomUint32(seed int64, n int, limit uint32) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]uint32, n)
	for i := range data {
		if limit == 0 {
			data[i] = rng.Uint32()
		} else {
			data[i] = uint32(rng.Int63n(int64(limit)))
		}
	}
	return data
}

// SampleInput is the fixed demo sequence used across packages.
func SampleInput() []uint32 {
	return []uint32{32, 12, 5, 2, 64, 12, 4, 84, 1, 3}
}

// SampleSorted is SampleInput in ascending order.
func SampleSorted() []uint32 {
	return []uint32{1, 2, 3, 4, 5, 12, 12, 32, 64, 84}
}

// WriteTempFile writes content to a new temporary file and returns its
// path. The file is removed when the test ends.
func WriteTempFile(t testing.TB, pattern, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	return tmpFile.Name()
}

// WriteValuesFile writes values to a temporary input file, perLine values
// on each line separated by spaces.
func WriteValuesFile(t testing.TB, values []uint32, perLine int) string {
	t.Helper()

	if perLine <= 0 {
		perLine = 1
	}

	var content strings.Builder
	for i, v := range values {
		content.WriteString(strconv.FormatUint(uint64(v), 10))
		if (i+1)%perLine == 0 || i == len(values)-1 {
			content.WriteString("\n")
		} else {
			content.WriteString(" ")
		}
	}
	return WriteTempFile(t, "values_*.txt", content.String())
}

// TempFilePath returns a path inside the test's temp dir without creating
// the file.
func TempFilePath(t testing.TB, name string) string {
	t.Helper()
	return t.TempDir() + string(os.PathSeparator) + name
}
