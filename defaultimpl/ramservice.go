package impl

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// interface check: interf.Service
var _ interf.Service = (*_RamService)(nil)

// @see interf.Service
//
// RamService keeps all blobs in a map. Nothing survives the process,
// so the generator and the server must share it (tests, dry runs).
type _RamService struct {
	hidden interf.Files // online view, updated by Save
	files  interf.Files // offline view, published by Update
	data   map[string][]byte
	mux    *sync.RWMutex
}

// NewRamService return the RAM implementation of interf.Service.
func NewRamService() interf.Service {
	return &_RamService{
		hidden: NewFiles(nil),
		files:  NewFiles(nil),
		data:   make(map[string][]byte),
		mux:    new(sync.RWMutex),
	}
}

//-----------  IMPLEMENTATION:  @see interf.Service  -----------------------------------------------------------------//

func (s *_RamService) Update() error {
	s.mux.Lock() // WRITE Lock
	defer s.mux.Unlock()

	s.files = s.hidden
	return nil
}

func (s *_RamService) Files() interf.Files {
	s.mux.RLock() // READ Lock
	defer s.mux.RUnlock()

	return s.files
}

func (s *_RamService) Save(name string, r io.Reader, max int64) (interf.File, error) {
	// check input
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty name")
	}
	if r == nil {
		return nil, errors.New("nil reader")
	}

	// limit reader
	if max > 0 {
		r = io.LimitReader(r, max)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f := NewFile(genId(), name, time.Now().Unix(), int64(len(data)), fmt.Sprintf("%x", md5.Sum(data)))

	s.mux.Lock() // WRITE Lock
	defer s.mux.Unlock()

	s.data[f.Id()] = data
	s.hidden = MergeFiles(s.hidden, f)

	return f, nil
}

func (s *_RamService) OpenByName(name string) (io.ReadCloser, error) {
	s.mux.RLock() // READ Lock
	f, err := s.hidden.ByName(name)
	s.mux.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("ram: %q: %w", name, interf.ErrNotFound)
	}
	return s.Reader(f, 0)
}

func (s *_RamService) Reader(file interf.File, off int64) (io.ReadCloser, error) {
	if file == nil {
		return nil, errors.New("nil file")
	}

	s.mux.RLock() // READ Lock
	defer s.mux.RUnlock()

	data, ok := s.data[file.Id()]
	if !ok {
		return nil, fmt.Errorf("ram: id %q: %w", file.Id(), interf.ErrNotFound)
	}

	// check offset
	if off < 0 || off > int64(len(data)) {
		return nil, fmt.Errorf("ram: invalid offset %d (size %d)", off, len(data))
	}

	// the stored slice is never modified, sharing it is safe
	return io.NopCloser(bytes.NewReader(data[off:])), nil
}

func (s *_RamService) Close() error {
	return nil
}

//--------  Helper  --------------------------------------------------------------------------------------------------//

// genId generate a random (unique) id for new blobs.
func genId() string {
	buf := make([]byte, 21)

	if _, err := rand.Read(buf); err != nil {
		log.Printf("ERROR: impl/genId: read error: %v", err)
		return fmt.Sprintf("ram-%d", time.Now().UnixNano())
	}

	return "ram-" + base64.RawURLEncoding.EncodeToString(buf)
}
