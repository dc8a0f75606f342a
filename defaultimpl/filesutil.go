package impl

import (
	"math"
	"os"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// FileById returns the file with the requested file id.
// If no file is found, the os.ErrNotExist error is returned.
func FileById(files map[string]interf.File, id string) (interf.File, error) {
	f, ok := files[id] // a nil map is fine
	if !ok || f == nil {
		return nil, os.ErrNotExist
	}
	return f, nil
}

// FileByName returns the latest (File.ModTime) file found with the requested name.
// If two files share the name and the mod time, the first one in the list wins.
// If no file is found, the os.ErrNotExist error is returned.
func FileByName(files []interf.File, name string) (interf.File, error) {
	var ret interf.File
	var age int64 = math.MinInt64

	for _, f := range files {
		if f != nil && f.Name() == name && f.ModTime() > age {
			ret = f
			age = f.ModTime()
		}
	}

	if ret == nil {
		return nil, os.ErrNotExist
	}
	return ret, nil
}

// MergeFiles returns a new index with all files of base plus add.
// A file in add replaces a file of base with the same id.
func MergeFiles(base interf.Files, add ...interf.File) interf.Files {
	byId := make(map[string]interf.File)
	if base != nil {
		for _, f := range base.All() {
			byId[f.Id()] = f
		}
	}
	for _, f := range add {
		if f != nil {
			byId[f.Id()] = f
		}
	}
	return NewFiles(byId)
}
