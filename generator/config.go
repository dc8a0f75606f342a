package generator

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/SchnorcherSepp/blobbench/manifest"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid generator config")

// Default values of the command line.
const (
	DefaultOutputDir = "./random_files"
	DefaultMinSize   = "1KB"
	DefaultMaxSize   = "100KB"
)

// FilesDir is the sub directory of the output directory that holds the generated files.
const FilesDir = "files"

// Config describes one generator run.
// Names are content digests, so the size range must allow Count different contents
// (e.g. 0B..1B allows a single file).
type Config struct {
	Count     int    // number of files
	OutputDir string // gets FilesDir and the manifest
	MinSize   string // e.g. "1KB"
	MaxSize   string // e.g. "100KB" (exclusive)
}

// Validate checks the config. It does not touch the filesystem.
func (c Config) Validate() error {
	_, _, err := c.sizes()
	return err
}

// FilesPath returns the directory of the generated files.
func (c Config) FilesPath() string {
	return filepath.Join(c.OutputDir, FilesDir)
}

// ManifestPath returns the path of the summary file.
func (c Config) ManifestPath() string {
	return filepath.Join(c.OutputDir, manifest.FileName)
}

// sizes checks the config and returns the parsed size limits.
func (c Config) sizes() (min, max int64, err error) {
	if c.Count < 1 {
		return 0, 0, fmt.Errorf("%w: count must be > 0, got %d", ErrInvalidConfig, c.Count)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return 0, 0, fmt.Errorf("%w: empty output dir", ErrInvalidConfig)
	}

	if min, err = ParseSize(c.MinSize); err != nil {
		return 0, 0, fmt.Errorf("%w: min size: %w", ErrInvalidConfig, err)
	}
	if max, err = ParseSize(c.MaxSize); err != nil {
		return 0, 0, fmt.Errorf("%w: max size: %w", ErrInvalidConfig, err)
	}

	if min > max {
		return 0, 0, fmt.Errorf("%w: min size %d > max size %d", ErrInvalidConfig, min, max)
	}
	if max > interf.MaxFileSize {
		return 0, 0, fmt.Errorf("%w: max size %d > %d", ErrInvalidConfig, max, int64(interf.MaxFileSize))
	}
	if n := distinctContents(min, max); int64(c.Count) > n {
		return 0, 0, fmt.Errorf("%w: %d files don't fit in %d different contents of size [%d, %d)", ErrInvalidConfig, c.Count, n, min, max)
	}
	return min, max, nil
}

// distinctContents returns the number of different byte strings with a size in [min, max)
// (or exactly min if min == max). The result saturates at math.MaxInt64.
func distinctContents(min, max int64) int64 {
	end := max
	if end <= min {
		end = min + 1
	}

	var total int64
	for size := min; size < end; size++ {
		if size >= 7 {
			return math.MaxInt64
		}
		total += 1 << (8 * size)
	}
	return total
}
