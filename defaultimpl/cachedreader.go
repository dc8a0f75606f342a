package impl

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/oxtoacart/bpool"
)

// sizeSector is the cache slot that stores the total blob size (8 bytes, little endian).
// Sector numbers of real data never reach it (see interf.MaxFileSize).
const sizeSector = math.MaxUint64

// OpenFunc opens a new read stream to a blob, starting at byte off.
type OpenFunc func(off int64) (io.ReadCloser, error)

// StoreOpener returns an OpenFunc for the blob name in store s.
// off=0 opens the blob by name. Other offsets are opened with Service.Reader if the
// blob is in the offline index; otherwise the blob is opened by name and off bytes are discarded.
func StoreOpener(s interf.Service, name string) OpenFunc {
	return func(off int64) (io.ReadCloser, error) {
		if off > 0 {
			if f, err := s.Files().ByName(name); err == nil {
				return s.Reader(f, off)
			}
		}

		rc, err := s.OpenByName(name)
		if err != nil || off <= 0 {
			return rc, err
		}
		if _, err := io.CopyN(io.Discard, rc, off); err != nil {
			_ = rc.Close()
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return rc, nil
	}
}

// interface check: io.ReadCloser
var _ io.ReadCloser = (*_CachedReader)(nil)

// _CachedReader reads a blob sequentially, sector by sector.
// Every sector is first looked up in the cache. The blob stream is only opened on the
// first cache miss, at the offset of the missed sector. A stream can't go back: if later
// sectors were served by the cache, the stream skips them (and caches them on the way).
// Every sector read from the stream is stored in the cache.
type _CachedReader struct {
	mux *sync.Mutex // protect everything below

	name  string
	open  OpenFunc
	cache interf.Cache
	pool  *bpool.BytePool
	stat  *_ReaderStat

	buf     []byte        // sector buffer from the pool
	pending []byte        // unread part of the current sector (points into buf)
	sector  uint64        // next sector to deliver
	size    int64         // total size, -1 if unknown
	c       io.ReadCloser // blob stream (nil until the first cache miss)
	pos     uint64        // next sector the blob stream delivers
	err     error         // sticky error (io.EOF at the end)
	closed  bool
}

// NewCachedReader returns a reader for the blob with the given name.
// No connection is made before the first call of Read().
// cache must not be nil; name is the cache namespace and must identify the content
// (blob names are content digests).
func NewCachedReader(name string, open OpenFunc, cache interf.Cache, debugLvl uint8) (io.ReadCloser, error) {
	if name == "" || open == nil || cache == nil {
		return nil, errors.New("can't create new CachedReader with empty name, open=nil or cache=nil")
	}

	r := &_CachedReader{
		mux:   new(sync.Mutex),
		name:  name,
		open:  open,
		cache: cache,
		pool:  cache.Pool(),
		stat: &_ReaderStat{
			debugLvl:    debugLvl,
			packageName: "impl",
		},
		size: -1,
	}
	r.buf = r.pool.Get()

	// a known size lets the reader stop without touching the stream
	if b, err := cache.Get(name, sizeSector, r.buf); err == nil && len(b) == 8 {
		r.size = int64(binary.LittleEndian.Uint64(b))
	}
	return r, nil
}

// Read implements io.Reader.
func (r *_CachedReader) Read(p []byte) (n int, err error) {
	r.mux.Lock() // LOCK
	defer r.mux.Unlock()

	if r.closed {
		return 0, io.ErrClosedPipe
	}

	for n < len(p) {
		if len(r.pending) == 0 {
			if r.err != nil {
				break
			}
			r.fill()
			continue
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

// Close implements io.Closer. It has no effect after the first call.
func (r *_CachedReader) Close() error {
	r.mux.Lock() // LOCK
	defer r.mux.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.c != nil {
		_ = r.c.Close()
		r.c = nil
	}
	r.pending = nil
	r.pool.Put(r.buf)
	r.buf = nil

	r.stat.Close(r.name)
	r.stat.PrintStatAfterClose(r.name)
	return nil
}

// Stat returns the number of times internal processes have been run.
// This method is relevant for testing and debugging purposes.
func (r *_CachedReader) Stat() map[string]uint64 {
	return r.stat.Stat()
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// fill loads the next sector into r.pending or sets r.err.
func (r *_CachedReader) fill() {
	// end reached?
	if r.size >= 0 && int64(r.sector)*interf.SectorSize >= r.size {
		r.err = io.EOF
		return
	}

	// ask cache
	b, err := r.cache.Get(r.name, r.sector, r.buf)
	r.stat.CacheGet(r.name, r.sector, len(b), err)
	if err == nil && len(b) > 0 {
		r.pending = b
		r.sector++
		return
	}

	// open the stream at the first missed sector
	if r.c == nil {
		r.c, err = r.open(int64(r.sector) * interf.SectorSize)
		r.stat.Open(r.name, err)
		if err != nil {
			r.err = err
			return
		}
		r.pos = r.sector
	}

	// a stream can't read backwards: skip to the requested sector (don't waste valid data)
	for r.pos < r.sector {
		n, err := r.readSector()
		r.stat.SectorSkip(r.name, r.pos, n, err)
		if n > 0 && (err == nil || err == io.EOF) {
			r.store(r.pos, r.buf[:n])
		}
		r.pos++
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF // the cache knew more sectors than the stream has
			}
			r.err = err
			return
		}
	}

	// read
	n, err := r.readSector()
	r.stat.SectorRead(r.name, r.sector, n, err)
	if n > 0 && (err == nil || err == io.EOF) {
		r.store(r.sector, r.buf[:n])
	}
	if err == io.EOF {
		// short sector: this is the last one
		r.size = int64(r.sector)*interf.SectorSize + int64(n)
		r.storeSize()
	}

	r.pending = r.buf[:n]
	r.sector++
	r.pos++
	r.err = err
}

// readSector reads exactly len(r.buf) bytes from the stream. A full buffer never returns an error.
// A short buffer returns io.EOF at the end of the blob or the stream error.
func (r *_CachedReader) readSector() (n int, err error) {
	for n < len(r.buf) && err == nil {
		var nn int
		nn, err = r.c.Read(r.buf[n:])
		n += nn
	}
	if n >= len(r.buf) {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return n, err
}

func (r *_CachedReader) store(sector uint64, data []byte) {
	err := r.cache.Set(r.name, sector, data)
	r.stat.CacheSet(r.name, sector, len(data), err)
}

func (r *_CachedReader) storeSize() {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(r.size))
	r.store(sizeSector, b[:])
}
