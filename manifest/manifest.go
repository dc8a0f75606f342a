// Package manifest reads and writes the summary file that lists the generated blobs.
// The file holds one digest per line in creation order.
package manifest

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// FileName is the manifest file name inside the output directory.
const FileName = "summary.txt"

// ErrSampleSize is returned if more names are requested than the manifest has.
var ErrSampleSize = errors.New("invalid sample size")

// Write replaces the manifest at path with the given names.
// The names are joined by newlines without a trailing newline.
func Write(path string, names []string) error {
	data := strings.Join(names, "\n")
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read returns the names in the manifest at path.
// Trailing whitespace and empty lines are ignored.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRightFunc(l, func(r rune) bool { return r == '\r' || r == ' ' || r == '\t' })
		if l != "" {
			names = append(names, l)
		}
	}
	return names, nil
}

// Sample returns n distinct names chosen uniformly without replacement.
// The input slice is not modified.
func Sample(names []string, n int, rnd *rand.Rand) ([]string, error) {
	if n < 1 || n > len(names) {
		return nil, fmt.Errorf("%w: %d of %d names", ErrSampleSize, n, len(names))
	}
	if rnd == nil {
		return nil, errors.New("manifest/Sample: rnd is nil")
	}

	// partial Fisher-Yates on a copy
	pool := append([]string(nil), names...)
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n], nil
}
