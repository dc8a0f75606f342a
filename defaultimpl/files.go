package impl

import (
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// interface check: interf.Files
var _ interf.Files = (*_Files)(nil)

// @see interf.Files
//
// Files is an immutable index of the blobs in a store.
type _Files struct {
	byId map[string]interf.File // this map is never nil (see NewFiles)
	list []interf.File          // set by NewFiles
}

// NewFiles return the default implementation of interf.Files.
// If the map is nil, a valid empty map is generated.
// nil values are dropped.
func NewFiles(byId map[string]interf.File) interf.Files {
	index := make(map[string]interf.File, len(byId))
	list := make([]interf.File, 0, len(byId))
	for id, f := range byId {
		if f != nil {
			index[id] = f
			list = append(list, f)
		}
	}

	return &_Files{
		byId: index,
		list: list,
	}
}

// @see interf.Files
func (fs *_Files) All() []interf.File {
	// return clone, not the inner list!
	list := make([]interf.File, len(fs.list))
	copy(list, fs.list)
	return list
}

// @see interf.Files
func (fs *_Files) ById(id string) (interf.File, error) {
	return FileById(fs.byId, id)
}

// @see interf.Files
func (fs *_Files) ByName(name string) (interf.File, error) {
	return FileByName(fs.list, name)
}
