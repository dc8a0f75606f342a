package interf

import (
	"io"
)

// Service is the central interface to access a blob store.
// Blobs are written once under a name and read back through a stream opened by name.
// All methods are thread-safe.
type Service interface {

	// Update the internal file index, which can be accessed with Files().
	// Stores without an offline index (GridFS) only refresh their file list.
	Update() error

	// Files returns all known files.
	// This method is offline and does not trigger a connection to the storage.
	// The internal file index must be updated separately with Update().
	Files() Files

	// Save reads bytes from the io.Reader r and saves them in the storage under the given name.
	// The name can exist multiple times and existing blobs with the same name are not overwritten;
	// OpenByName always returns the latest one.
	// The param max limits the read bytes (see io.LimitedReader). max=0 means read until EOF.
	Save(name string, r io.Reader, max int64) (file File, err error)

	// OpenByName opens a read stream for the latest blob with the given name.
	// If no blob exists, an error wrapping ErrNotFound is returned.
	// The stream must be closed manually with Close() after use.
	OpenByName(name string) (io.ReadCloser, error)

	// Reader enables read access to a file starting at offset off.
	// The connection must be closed manually with Close() after use.
	Reader(file File, off int64) (io.ReadCloser, error)

	// Close releases the connection to the storage.
	Close() error
}
