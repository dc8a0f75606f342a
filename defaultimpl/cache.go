package impl

import (
	"encoding/binary"
	"runtime/debug"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/coocood/freecache"
	"github.com/oxtoacart/bpool"
)

// interface check: interf.Cache
var _ interf.Cache = (*_Cache)(nil)

// @see interf.Cache
//
// Cache stores blob sectors in RAM (freecache) and hands out sector sized buffers (bpool).
type _Cache struct {
	cache *freecache.Cache // RAM cache for sectors
	pool  *bpool.BytePool  // buffer pool
	size  int64            // capacity in bytes
}

// NewCache return the default implementation of interf.Cache.
// cacheSizeMB can't be less than 17 (min. 1024 * SectorSize =~ 17 MB).
func NewCache(cacheSizeMB int) interf.Cache {
	// cache min. size
	min := ((1024 * interf.SectorSize) / (1024 * 1024)) + 1
	if cacheSizeMB < min {
		cacheSizeMB = min
	}

	// init freecache
	cacheSize := cacheSizeMB * 1024 * 1024
	fCache := freecache.NewCache(cacheSize) // > 17 MB
	debug.SetGCPercent(20)

	return &_Cache{
		cache: fCache,
		pool:  NewPool(),
		size:  int64(cacheSize),
	}
}

// NewPool returns the byte pool used for copy buffers:
// 300 buffers with the size of interf.SectorSize (~ 5 MB).
func NewPool() *bpool.BytePool {
	return bpool.NewBytePool(300, interf.SectorSize)
}

// @see interf.Cache
func (c *_Cache) Get(name string, sector uint64, buf []byte) ([]byte, error) {
	key := c.calcCacheKey(name, sector)
	return c.cache.GetWithBuf(key, buf)
}

// @see interf.Cache
func (c *_Cache) Set(name string, sector uint64, data []byte) error {
	key := c.calcCacheKey(name, sector)
	return c.cache.Set(key, data, interf.CacheExpireSeconds)
}

// @see interf.Cache
func (c *_Cache) Pool() *bpool.BytePool {
	return c.pool
}

// @see interf.Cache
func (c *_Cache) Size() int64 {
	return c.size
}

//-----  HELPER  -----------------------------------------------------------------------------------------------------//

// calcCacheKey converts a blob name and a sector into a byte key for freecache.
func (c *_Cache) calcCacheKey(name string, sector uint64) []byte {
	var bKey [8]byte
	binary.LittleEndian.PutUint64(bKey[:], sector)
	return append(bKey[:], []byte(name)...)
}
