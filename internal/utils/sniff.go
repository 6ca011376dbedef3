package utils

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// sniffLength is the maximum number of bytes read when classifying content.
const sniffLength = 8000

// ContentSniff describes the leading bytes of a file.
type ContentSniff struct {
	Binary   bool
	MimeType string
}

// IsBinary reports whether data appears to be binary: invalid UTF-8 or containing a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// SniffFile reads up to sniffLength bytes of path from filesystem and classifies them.
func SniffFile(filesystem afero.Fs, path string) (ContentSniff, error) {
	fileHandle, openError := filesystem.Open(path)
	if openError != nil {
		return ContentSniff{MimeType: UnknownMimeType}, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return ContentSniff{MimeType: UnknownMimeType}, readError
	}
	sample := buffer[:bytesRead]
	return ContentSniff{Binary: IsBinary(sample), MimeType: http.DetectContentType(sample)}, nil
}
