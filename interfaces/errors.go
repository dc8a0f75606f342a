package interf

import "errors"

// ErrNotFound is returned (wrapped) by every Service if no blob with the requested name exists.
// Test with errors.Is(err, interf.ErrNotFound).
var ErrNotFound = errors.New("blob not found")
