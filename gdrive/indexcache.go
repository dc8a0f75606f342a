package gdrive

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// _IndexCache is the serialized state of the offline index.
// With the StartPageToken a loaded index is brought up to date very fast (only the changes are loaded).
type _IndexCache struct {
	Files          []_File
	StartPageToken string
	CacheSig       string
}

// _File is a helper with exported attributes for serialization.
type _File struct {
	Id      string
	Name    string
	ModTime int64
	Size    int64
	Md5     string
}

//--------------------------------------------------------------------------------------------------------------------//

// cacheSave writes the file list and the StartPageToken to the index cache file.
// The caller must hold the write lock.
func cacheSave(s *_GService, files interf.Files) error {
	all := files.All()
	list := make([]_File, 0, len(all))
	for _, f := range all {
		list = append(list, _File{Id: f.Id(), Name: f.Name(), ModTime: f.ModTime(), Size: f.Size(), Md5: f.Md5()})
	}

	sig, err := cacheSig(s)
	if err != nil {
		return err
	}

	fh, err := os.OpenFile(s.cacheFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer fh.Close()

	return gob.NewEncoder(fh).Encode(_IndexCache{
		Files:          list,
		StartPageToken: s.startPageToken,
		CacheSig:       sig,
	})
}

// cacheLoad loads the last index from the index cache file and sets file list and startPageToken.
// The caller must hold the write lock.
func cacheLoad(s *_GService) error {
	fh, err := os.Open(s.cacheFile)
	if err != nil {
		return err
	}
	defer fh.Close()

	var index _IndexCache
	if err := gob.NewDecoder(fh).Decode(&index); err != nil {
		return err
	}

	sig, err := cacheSig(s)
	if err != nil {
		return err
	}
	if index.CacheSig != sig {
		return errors.New("wrong index cache signature")
	}

	byId := make(map[string]interf.File, len(index.Files))
	for _, v := range index.Files {
		byId[v.Id] = impl.NewFile(v.Id, v.Name, v.ModTime, v.Size, v.Md5)
	}

	s.files = impl.NewFiles(byId)
	s.startPageToken = index.StartPageToken
	return nil
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// cacheSig binds the index cache to the drive user and the parent folder.
// Any change invalidates the index cache. Needs an active connection to Google.
func cacheSig(s *_GService) (string, error) {
	about, err := s.google.About.Get().Fields("user(permissionId)").Do()
	if err != nil {
		return "", err
	}
	permId := about.User.PermissionId
	if len(permId) < 3 {
		return "", errors.New("invalid user permissionId")
	}

	return fmt.Sprintf("%x", md5.Sum([]byte(s.parent+"|"+permId))), nil
}
