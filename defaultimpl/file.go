package impl

import (
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// interface check: interf.File
var _ interf.File = (*_File)(nil)

// @see interf.File
//
// File describes a single stored blob.
// File is an immutable object!
type _File struct {
	id      string
	name    string
	modTime int64
	size    int64
	md5     string
}

// NewFile return the default implementation of interf.File.
// Every store (RAM, GridFS, Google Drive) describes its blobs with it.
func NewFile(id, name string, modTime, size int64, md5 string) interf.File {
	return &_File{
		id:      id,
		name:    name,
		modTime: modTime,
		size:    size,
		md5:     md5,
	}
}

// @see interf.File
func (f *_File) Id() string {
	return f.id
}

// @see interf.File
func (f *_File) Name() string {
	return f.name
}

// @see interf.File
func (f *_File) ModTime() int64 {
	return f.modTime
}

// @see interf.File
func (f *_File) Size() int64 {
	return f.size
}

// @see interf.File
func (f *_File) Md5() string {
	return f.md5
}

// String is used by log messages.
func (f *_File) String() string {
	return "[" + f.id + "] " + f.name
}
