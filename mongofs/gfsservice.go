// Package mongofs stores the benchmark blobs in a MongoDB GridFS bucket.
package mongofs

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const packageName = "mongofs"

// DefaultURI is the address of the local MongoDB server.
const DefaultURI = "mongodb://localhost:27017"

// connectTimeout limits Connect and Close.
const connectTimeout = 10 * time.Second

// interface check: interf.Service
var _ interf.Service = (*_GFSService)(nil)

// _GFSService is the GridFS implementation of interf.Service.
// One client (with its own connection pool) is shared by all goroutines.
type _GFSService struct {
	client *mongo.Client
	bucket *gridfs.Bucket
	mux    *sync.RWMutex
	files  interf.Files
}

// Connect opens a connection to MongoDB and returns the default GridFS bucket ("fs")
// of the given database. The server is pinged, so a wrong uri fails here and not
// on the first request.
func Connect(ctx context.Context, uri, database string) (interf.Service, error) {
	if strings.TrimSpace(database) == "" {
		return nil, errors.New("empty database name")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s/Connect: %w", packageName, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s/Connect: ping %s: %w", packageName, uri, err)
	}

	bucket, err := gridfs.NewBucket(client.Database(database))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s/Connect: %w", packageName, err)
	}

	log.Printf("INFO: %s/Connect: connected to %s, database '%s'", packageName, uri, database)
	return &_GFSService{
		client: client,
		bucket: bucket,
		mux:    new(sync.RWMutex),
		files:  impl.NewFiles(nil),
	}, nil
}

//-----------  IMPLEMENTATION:  @see interf.Service  -----------------------------------------------------------------//

// Update reloads the file list from the bucket's files collection.
// GridFS does not need the list to serve blobs; it is used for reporting.
func (s *_GFSService) Update() error {
	cursor, err := s.bucket.Find(bson.D{})
	if err != nil {
		return fmt.Errorf("%s/Update: %w", packageName, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var found []gridfs.File
	if err := cursor.All(ctx, &found); err != nil {
		return fmt.Errorf("%s/Update: %w", packageName, err)
	}

	byId := make(map[string]interf.File, len(found))
	for i := range found {
		f := toFile(&found[i], "")
		byId[f.Id()] = f
	}

	s.mux.Lock() // WRITE Lock
	s.files = impl.NewFiles(byId)
	s.mux.Unlock()

	log.Printf("INFO: %s/Update: %d files", packageName, len(byId))
	return nil
}

func (s *_GFSService) Files() interf.Files {
	s.mux.RLock() // READ Lock
	defer s.mux.RUnlock()

	return s.files
}

// Save uploads the stream in GridFS chunks. Size and md5 are counted while uploading.
func (s *_GFSService) Save(name string, r io.Reader, max int64) (interf.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || r == nil {
		return nil, errors.New("invalid input")
	}
	if max > 0 {
		r = io.LimitReader(r, max)
	}

	hash := md5.New()
	counter := &countWriter{}
	start := time.Now()

	id, err := s.bucket.UploadFromStream(name, io.TeeReader(r, io.MultiWriter(hash, counter)))
	if err != nil {
		return nil, fmt.Errorf("%s/Save: upload '%s': %w", packageName, name, err)
	}

	return impl.NewFile(id.Hex(), name, start.Unix(), counter.n, fmt.Sprintf("%x", hash.Sum(nil))), nil
}

// OpenByName opens a download stream for the latest revision of the blob.
func (s *_GFSService) OpenByName(name string) (io.ReadCloser, error) {
	ds, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %q: %w", packageName, name, interf.ErrNotFound)
		}
		return nil, fmt.Errorf("%s/OpenByName: %w", packageName, err)
	}
	return ds, nil
}

func (s *_GFSService) Reader(file interf.File, off int64) (io.ReadCloser, error) {
	if file == nil {
		return nil, errors.New("nil file")
	}

	oid, err := primitive.ObjectIDFromHex(file.Id())
	if err != nil {
		return nil, fmt.Errorf("%s/Reader: invalid id '%s': %w", packageName, file.Id(), err)
	}

	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: id %q: %w", packageName, file.Id(), interf.ErrNotFound)
		}
		return nil, fmt.Errorf("%s/Reader: %w", packageName, err)
	}

	if off > 0 {
		if _, err := ds.Skip(off); err != nil {
			_ = ds.Close()
			return nil, fmt.Errorf("%s/Reader: skip %d: %w", packageName, off, err)
		}
	}
	return ds, nil
}

func (s *_GFSService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	return s.client.Disconnect(ctx)
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// toFile converts a GridFS files document. md5 is optional (GridFS no longer stores it).
func toFile(f *gridfs.File, md5 string) interf.File {
	id := fmt.Sprintf("%v", f.ID)
	if oid, ok := f.ID.(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	return impl.NewFile(id, f.Name, f.UploadDate.Unix(), f.Length, md5)
}

type countWriter struct {
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
