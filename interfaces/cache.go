package interf

import "github.com/oxtoacart/bpool"

// Cache keeps blob sectors in memory for repeated reads (@see impl.NewCachedReader).
// A cache holds at least 1024 sectors (~17 MB). Share one cache per process.
type Cache interface {

	// Get copies the sector into buf if it fits and returns it, or returns a 'not found' error.
	Get(name string, sector uint64, buf []byte) ([]byte, error)

	// Set stores a sector for CacheExpireSeconds. Full caches evict old entries.
	Set(name string, sector uint64, data []byte) error

	// Pool returns the shared pool of SectorSize buffers.
	//   buf := c.Pool().Get()
	//   defer c.Pool().Put(buf)
	Pool() *bpool.BytePool

	// Size is the capacity in bytes.
	Size() int64
}
