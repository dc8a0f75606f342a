package server

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidKey is returned for keys that are not a lowercase hex SHA-256 digest.
var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateKey checks that key is a lowercase hex SHA-256 digest.
// Only such keys are ever joined with a filesystem path or sent to the blob store.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
