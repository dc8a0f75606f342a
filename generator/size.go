package generator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned by ParseSize for unreadable size strings.
var ErrInvalidSize = errors.New("invalid size")

// sizeUnits maps a unit suffix to its multiplier. No suffix means bytes.
var sizeUnits = map[string]int64{
	"":    1,
	"B":   1,
	"KB":  1000,
	"KiB": 1 << 10,
	"MB":  1000 * 1000,
	"MiB": 1 << 20,
	"GB":  1000 * 1000 * 1000,
	"GiB": 1 << 30,
}

// ParseSize converts a size like "100KB" or "1MiB" into bytes.
// Units are case sensitive: B, KB, KiB, MB, MiB, GB, GiB.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)

	// split number and unit
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	num, unit := s[:i], strings.TrimSpace(s[i:])

	mul, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q: unknown unit %q", ErrInvalidSize, s, unit)
	}
	if num == "" {
		return 0, fmt.Errorf("%w: %q: missing number", ErrInvalidSize, s)
	}

	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidSize, s, err)
	}
	if n > (1<<63-1)/mul {
		return 0, fmt.Errorf("%w: %q: overflow", ErrInvalidSize, s)
	}
	return n * mul, nil
}
