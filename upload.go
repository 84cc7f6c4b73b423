package vial

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FileUpload holds one file received through a multipart form. The
// binder fills it for struct fields of this type carrying a form tag.
type FileUpload struct {
	Filename string
	Size     int64
	Header   *multipart.FileHeader `validate:"-"`
	file     multipart.File
}

func newFileUpload(file multipart.File, header *multipart.FileHeader) FileUpload {
	return FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header,
		file:     file,
	}
}

// Open returns a reader over the file contents. The reader is cached:
// repeated calls return the same one, and the caller closes it once.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.file != nil {
		return f.file, nil
	}
	if f.Header == nil {
		return nil, errors.New("no file header")
	}
	file, err := f.Header.Open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return file, nil
}

// ParseFileUpload pulls a single named file out of a multipart request.
// The binder goes through here for FileUpload fields; it is exported for
// raw handlers that parse forms themselves. The underlying FormFile error
// stays reachable through errors.Is for missing-file checks.
func ParseFileUpload(r *http.Request, fieldName string) (*FileUpload, error) {
	file, header, err := r.FormFile(fieldName)
	if err != nil {
		return nil, fmt.Errorf("form file %q: %w", fieldName, err)
	}
	up := newFileUpload(file, header)
	return &up, nil
}
