// Package server serves the generated files over HTTP with two retrieval strategies:
// a direct filesystem read and a read stream from the blob store.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"github.com/oxtoacart/bpool"
)

const packageName = "server"

// Route prefixes. The key follows the prefix.
const (
	RouteFilesystem = "/filesystem/"
	RouteBlob       = "/gridfs/"
)

// Default values of the command line.
const (
	DefaultAddr = "0.0.0.0:8000"
	DefaultDir  = "./random_files/files"
)

// blob buffers grow to the blob size; bigger buffers are not returned to the pool
const blobBufferAlloc = 128 * 1024

// Option configures a Server.
type Option func(*Server)

// WithCache routes all blob reads through a sector cache.
func WithCache(cache interf.Cache) Option {
	return func(s *Server) {
		s.cache = cache
	}
}

// WithDebug sets the debug level [impl.DebugOff, impl.DebugLow, impl.DebugHigh].
func WithDebug(lvl uint8) Option {
	return func(s *Server) {
		s.debugLvl = lvl
	}
}

// Server is an http.Handler. All handles are created once in New and shared by all requests.
type Server struct {
	dir      string
	store    interf.Service
	cache    interf.Cache // nil: no cache
	debugLvl uint8

	copyBufs *bpool.BytePool
	blobBufs *bpool.SizedBufferPool
	mux      *http.ServeMux
}

// interface check: http.Handler
var _ http.Handler = (*Server)(nil)

// New returns a server for the files in dir and the blobs in store.
func New(dir string, store interf.Service, opts ...Option) (*Server, error) {
	if dir == "" || store == nil {
		return nil, errors.New("server/New: empty dir or store=nil")
	}

	s := &Server{
		dir:      dir,
		store:    store,
		blobBufs: bpool.NewSizedBufferPool(300, blobBufferAlloc),
		mux:      http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}

	if s.cache != nil {
		s.copyBufs = s.cache.Pool()
	} else {
		s.copyBufs = impl.NewPool()
	}

	s.mux.HandleFunc("GET "+RouteFilesystem+"{key}", s.handleFilesystem)
	s.mux.HandleFunc("GET "+RouteBlob+"{key}", s.handleBlob)
	return s, nil
}

// ServeHTTP implements http.Handler and writes one log line per request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}

	s.mux.ServeHTTP(sw, r)

	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	log.Printf("INFO: %s: %s %s %d %dB %v", packageName, r.Method, r.URL.Path, sw.status, sw.bytes, time.Since(start))
}

// handleFilesystem streams <dir>/<key>.
func (s *Server) handleFilesystem(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := ValidateKey(key); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		s.fail(w, "handleFilesystem", err)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		s.fail(w, "handleFilesystem", err)
		return
	}
	if !fi.Mode().IsRegular() {
		s.fail(w, "handleFilesystem", fmt.Errorf("%s: %w", key, interf.ErrNotFound))
		return
	}

	buf := s.copyBufs.Get()
	defer s.copyBufs.Put(buf)

	writeHeader(w, fi.Size())
	if _, err := io.CopyBuffer(w, io.LimitReader(f, fi.Size()), buf); err != nil {
		// the header is gone, the client sees a short body
		log.Printf("ERROR: %s/handleFilesystem: %s: %v", packageName, key, err)
	}
}

// handleBlob reads the blob fully from the store and writes it.
func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := ValidateKey(key); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stream, err := s.openBlob(key)
	if err != nil {
		s.fail(w, "handleBlob", err)
		return
	}
	defer stream.Close()

	buf := s.blobBufs.Get()
	defer s.blobBufs.Put(buf)

	if _, err := buf.ReadFrom(stream); err != nil {
		s.fail(w, "handleBlob", err)
		return
	}

	writeHeader(w, int64(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("ERROR: %s/handleBlob: %s: %v", packageName, key, err)
	}
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// openBlob opens the blob stream, through the cache if there is one.
func (s *Server) openBlob(key string) (io.ReadCloser, error) {
	if s.cache == nil {
		return s.store.OpenByName(key)
	}
	return impl.NewCachedReader(key, impl.StoreOpener(s.store, key), s.cache, s.debugLvl)
}

// fail maps missing files to 404 and everything else to 500.
func (s *Server) fail(w http.ResponseWriter, fn string, err error) {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, interf.ErrNotFound) {
		if s.debugLvl >= impl.DebugLow {
			log.Printf("DEBUG: %s/%s: %v", packageName, fn, err)
		}
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	log.Printf("ERROR: %s/%s: %v", packageName, fn, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeHeader(w http.ResponseWriter, size int64) {
	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
}

// statusWriter records status and body size for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}
