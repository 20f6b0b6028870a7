package form

import (
	"iter"
	"os"

	"github.com/hornet-web/hornet/http/query"
)

// Fields holds text values of the form. Repeated fields keep all the values in order.
type Fields = query.Values

// Part describes a single multipart part as announced by its headers.
type Part struct {
	Name        string
	Filename    string
	ContentType string
}

// IsFile reports whether the part carries a file rather than a text value.
func (p Part) IsFile() bool {
	return p.Filename != ""
}

// File is an uploaded file, stored in a temporary file on disk.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Path        string
	Size        int64
}

// Open opens the stored file for reading.
func (f File) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// ReadAll returns the whole content of the stored file.
func (f File) ReadAll() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Remove deletes the stored file.
func (f File) Remove() error {
	return os.Remove(f.Path)
}

// Files maps a field name to all the files uploaded under it.
type Files map[string][]File

func (f Files) Add(file File) {
	f[file.Field] = append(f[file.Field], file)
}

// First returns the first file uploaded under the field.
func (f Files) First(field string) (File, bool) {
	files := f[field]
	if len(files) == 0 {
		return File{}, false
	}

	return files[0], true
}

// All returns an iterator over every stored file.
func (f Files) All() iter.Seq[File] {
	return func(yield func(File) bool) {
		for _, files := range f {
			for _, file := range files {
				if !yield(file) {
					return
				}
			}
		}
	}
}

// Remove deletes all the stored files, returning the first error encountered. Files that
// are already gone are not an error.
func (f Files) Remove() (err error) {
	for file := range f.All() {
		if rmErr := file.Remove(); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}

	return err
}
