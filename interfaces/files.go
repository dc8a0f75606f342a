package interf

// Files is a snapshot of the blob index of a Service.
// Files and File are immutable; all methods are offline and thread-safe.
type Files interface {

	// All returns every blob of the snapshot. The slice is a copy and can be changed.
	All() []File

	// ById returns the blob with the given store id or os.ErrNotExist.
	ById(id string) (File, error)

	// ByName returns the newest blob (File.ModTime) with the given name or os.ErrNotExist.
	// Generated blobs are named by their digest, so a name normally has one blob.
	ByName(name string) (File, error)
}
