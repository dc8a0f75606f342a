package interf

// File stands for a single blob in the storage.
// File is an immutable object!
type File interface {

	// Id uniquely identifies a blob inside its storage.
	// Example (GridFS): 65f1c0d2a8e4b1f3c9d7e021
	Id() string

	// Name of the blob. For generated files this is the hex SHA-256 digest of the content.
	// Example: 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
	Name() string

	// ModTime shows the upload time of the blob (unix time; seconds).
	// Example: 1584535538
	ModTime() int64

	// Size is the blob size in bytes.
	// Example 16317
	Size() int64

	// Md5 is the hash of the blob content (hex string).
	// Can be empty if the storage does not report it.
	// Example: 098f6bcd4621d373c0de4e832627b4f6
	Md5() string
}
