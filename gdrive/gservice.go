package gdrive

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
	google "google.golang.org/api/drive/v3"
)

const packageName = "gdrive"

const folderMimeType = "application/vnd.google-apps.folder"

// interface check: interf.Service
var _ interf.Service = (*_GService)(nil)

// _GService stores the benchmark blobs as files of one Google Drive folder.
// Must be created with NewGService().
type _GService struct {
	google         *google.Service
	parent         string
	cacheFile      string
	mux            *sync.RWMutex
	files          interf.Files
	initialized    bool
	startPageToken string
	skipFullInit   bool
}

// NewGService returns a blob store backed by Google Drive. The parent specifies the folder id
// that holds the blobs (see EnsureFolder).
// indexCacheFile is used to speed up Update (files are available faster); empty disables it.
// With skipFullInit = true, the init update call ends with a successful loading of indexCacheFile.
//
// Drive has no lookup by name that is fast enough for a benchmark, so OpenByName
// works on the offline index: call Update() before serving.
func NewGService(parent, indexCacheFile string, skipFullInit bool, oauth *google.Service) interf.Service {
	return &_GService{
		google:       oauth,
		parent:       parent,
		cacheFile:    indexCacheFile,
		mux:          new(sync.RWMutex),
		files:        impl.NewFiles(nil), // empty list, set by Update()
		skipFullInit: skipFullInit,
	}
}

// EnsureFolder returns the id of the folder with the given name in the root directory
// of Google Drive. The folder is created if it does not exist.
func EnsureFolder(oauth *google.Service, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "'") {
		return "", fmt.Errorf("%s/EnsureFolder: invalid folder name %q", packageName, name)
	}

	query := fmt.Sprintf("trashed = false and mimeType = '%s' and name = '%s' and 'root' in parents", folderMimeType, name)
	list, err := oauth.Files.List().Q(query).Spaces("drive").Fields("files(id)").Do()
	if err != nil {
		return "", fmt.Errorf("%s/EnsureFolder: %v", packageName, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := oauth.Files.Create(&google.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{"root"},
	}).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("%s/EnsureFolder: %v", packageName, err)
	}
	log.Printf("INFO: %s/EnsureFolder: created folder '%s' (%s)", packageName, name, folder.Id)
	return folder.Id, nil
}

//--------------------------------------------------------------------------------------------------------------------//

// Update is the implementation of Service.Update()
// The first call loads the whole folder (slow), later calls only load the changes.
func (s *_GService) Update() error {
	s.mux.RLock() // READ Lock
	initialized := s.initialized
	s.mux.RUnlock()

	if initialized {
		return s.updateFiles()
	}
	return s.initFiles()
}

// Files is the implementation of Service.Files()
func (s *_GService) Files() interf.Files {
	s.mux.RLock() // READ Lock
	defer s.mux.RUnlock()

	return s.files
}

// Save is the implementation of Service.Save()
// The uploaded file is added to the offline index right away.
func (s *_GService) Save(name string, r io.Reader, max int64) (interf.File, error) {
	name = strings.TrimSpace(name)
	if name == "" || r == nil {
		return nil, errors.New("invalid input")
	}

	if max > 0 {
		r = io.LimitReader(r, max)
	}

	f, err := s.google.Files.Create(&google.File{
		Name:     name,
		Parents:  []string{s.parent},
		MimeType: "application/octet-stream",
	}).Media(r).Fields("id, name, size, modifiedTime, md5Checksum").Do()
	if err != nil {
		if strings.Contains(err.Error(), "insufficientPermissions") {
			return nil, fmt.Errorf("upload error: wrong permissions: create a new oauth token with write permissions: %v", err)
		}
		return nil, fmt.Errorf("upload error: %v", err)
	}

	file := impl.NewFile(f.Id, f.Name, ParseTime(f.ModifiedTime), f.Size, f.Md5Checksum)

	s.mux.Lock() // LOCK
	s.files = impl.MergeFiles(s.files, file)
	s.mux.Unlock()

	return file, nil
}

// OpenByName is the implementation of Service.OpenByName()
func (s *_GService) OpenByName(name string) (io.ReadCloser, error) {
	f, err := s.Files().ByName(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", packageName, name, interf.ErrNotFound)
	}
	return s.Reader(f, 0)
}

// Reader is the implementation of Service.Reader()
func (s *_GService) Reader(file interf.File, off int64) (io.ReadCloser, error) {
	if file == nil {
		return nil, errors.New("nil file")
	}

	get := s.google.Files.Get(file.Id())
	if off > 0 {
		get.Header().Set("Range", fmt.Sprintf("bytes=%d-", off))
	}

	resp, err := get.Download()
	if err != nil {
		if strings.Contains(err.Error(), "notFound") {
			return nil, fmt.Errorf("%s: id %q: %w", packageName, file.Id(), interf.ErrNotFound)
		}
		return nil, err
	}
	return resp.Body, nil
}

// Close is the implementation of Service.Close()
// The drive service has no connection to close; the index is written to the index cache.
func (s *_GService) Close() error {
	if s.cacheFile == "" {
		return nil
	}

	s.mux.Lock() // LOCK
	defer s.mux.Unlock()

	if !s.initialized {
		return nil
	}
	return cacheSave(s, s.files)
}

//---------  Helper  -------------------------------------------------------------------------------------------------//

// initFiles loads all files of the parent folder. Sub folders are ignored.
// This method can be VERY SLOW, but must be called at least once.
// To speed it up, data from the index cache file are used.
func (s *_GService) initFiles() error {
	if s.cacheFile != "" {
		s.mux.Lock() // LOCK
		err := cacheLoad(s)
		s.mux.Unlock()

		if err != nil {
			log.Printf("WARNING: %s/initFiles: cacheLoad() failed: %v", packageName, err)
		} else if err = s.updateFiles(); err != nil {
			log.Printf("ERROR: %s/initFiles: updateFiles() failed with index cache: %v", packageName, err)
		} else if s.skipFullInit {
			s.mux.Lock() // LOCK
			s.initialized = true
			s.mux.Unlock()
			log.Printf("INFO: %s/initFiles: skip full initialisation", packageName)
			return nil
		}
	}

	const fields = "nextPageToken, files(id, name, size, modifiedTime, md5Checksum)"
	query := fmt.Sprintf("trashed = false and mimeType != '%s' and '%s' in parents", folderMimeType, s.parent)

	// get a new StartPageToken to watch changes
	token, err := s.google.Changes.GetStartPageToken().Do()
	if err != nil {
		log.Printf("ERROR: %s/initFiles: can't get StartPageToken: %v", packageName, err)
		return err
	}

	byId := make(map[string]interf.File)
	pageToken := ""
	for {
		list, err := s.google.Files.List().Q(query).PageToken(pageToken).
			Spaces("drive").Corpora("user").PageSize(1000).Fields(fields).Do()
		if err != nil {
			log.Printf("ERROR: %s/initFiles: can't read all result pages: %v", packageName, err)
			return err
		}

		for _, f := range list.Files {
			byId[f.Id] = impl.NewFile(f.Id, f.Name, ParseTime(f.ModifiedTime), f.Size, f.Md5Checksum)
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}
	log.Printf("INFO: %s/initFiles: successful files initialization (%d files)", packageName, len(byId))

	s.mux.Lock() // LOCK
	defer s.mux.Unlock()

	s.startPageToken = token.StartPageToken
	s.files = impl.NewFiles(byId)
	s.initialized = true
	if s.cacheFile != "" {
		if err := cacheSave(s, s.files); err != nil {
			log.Printf("ERROR: %s/initFiles: cacheSave() failed: %v", packageName, err)
		}
	}
	return nil
}

// updateFiles only queries the changes since the last StartPageToken.
func (s *_GService) updateFiles() error {
	s.mux.RLock() // READ Lock
	pageToken := s.startPageToken
	s.mux.RUnlock()

	if pageToken == "" {
		s.mux.Lock() // LOCK
		s.initialized = false
		s.mux.Unlock()
		return errors.New("can't use updateFiles() without StartPageToken, call initFiles()")
	}

	const fields = "nextPageToken, newStartPageToken, changes(file(id, name, size, trashed, mimeType, parents, modifiedTime, md5Checksum))"

	byId := make(map[string]interf.File)
	for _, f := range s.Files().All() {
		byId[f.Id()] = f
	}

	for {
		changes, err := s.google.Changes.List(pageToken).Spaces("drive").PageSize(1000).Fields(fields).Do()
		if err != nil {
			log.Printf("ERROR: %s/updateFiles: can't read all result pages: %v", packageName, err)
			return err
		}

		for _, change := range changes.Changes {
			cf := change.File
			if cf == nil || cf.MimeType == folderMimeType || !inParent(cf.Parents, s.parent) {
				continue
			}
			if cf.Trashed {
				delete(byId, cf.Id)
			} else {
				byId[cf.Id] = impl.NewFile(cf.Id, cf.Name, ParseTime(cf.ModifiedTime), cf.Size, cf.Md5Checksum)
			}
		}

		if changes.NextPageToken == "" {
			pageToken = changes.NewStartPageToken
			break
		}
		pageToken = changes.NextPageToken
	}
	log.Printf("INFO: %s/updateFiles: successful file update (%d files)", packageName, len(byId))

	s.mux.Lock() // LOCK
	defer s.mux.Unlock()

	s.startPageToken = pageToken
	s.files = impl.NewFiles(byId)
	return nil
}

func inParent(parents []string, parent string) bool {
	for _, p := range parents {
		if p == parent {
			return true
		}
	}
	return false
}
