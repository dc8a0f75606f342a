package interf

// SectorSize is the size of a sector. A sector is a part of a blob.
// Blobs are cached sector by sector (see impl.NewCachedReader) and
// SectorSize is also the copy buffer size of the server.
const SectorSize = 16384 // 16 kiB

// CacheExpireSeconds is the default value n. The cache stores data for max. n seconds.
// Blobs are content addressed and never change, so a long lifetime is fine.
const CacheExpireSeconds = 2 * 24 * 60 * 60 // 2 days

// MaxFileSize defines the maximum size in byte of the supported files.
const MaxFileSize = 100 * 1024 * 1024 * 1024 // 100 GiB

// DefaultDatabase is the database (or folder) name that holds the benchmark blobs.
const DefaultDatabase = "gridfs_perf_tests"
