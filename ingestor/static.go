package ingestor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// StdinPath selects standard input in ReadFile.
const StdinPath = "-"

// ParseValue parses one unsigned 32-bit key in base 10.
func ParseValue(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseValues parses every whitespace-separated field of s.
func ParseValues(s string) ([]uint32, error) {
	fields := strings.Fields(s)
	values := make([]uint32, 0, len(fields))
	for _, f := range fields {
		v, err := ParseValue(f)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ReadValues reads whitespace-separated keys, any number per line. Lines
// starting with '#' are comments. A key that does not parse fails the read
// with its line number.
func ReadValues(r io.Reader) ([]uint32, error) {
	var values []uint32
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := ParseValues(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		values = append(values, parsed...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}
	if values == nil {
		values = []uint32{}
	}
	return values, nil
}

// ReadFile reads keys from path, or from standard input when path is "-".
func ReadFile(path string) ([]uint32, error) {
	if path == StdinPath {
		return ReadValues(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	return ReadValues(f)
}
