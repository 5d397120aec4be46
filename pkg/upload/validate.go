// Package upload validates PDFs before they are sent to the backend and
// drives watch-mode ingestion of a directory.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// PDFContentType is the only content type the backend accepts.
const PDFContentType = "application/pdf"

var (
	ErrNoFile    = errors.New("no file selected")
	ErrNotFound  = errors.New("file not found")
	ErrEmptyFile = errors.New("file is empty")
	ErrNotPDF    = errors.New("only PDF files are allowed")
)

// File is a local file that passed validation.
type File struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Validate checks that path names a non-empty PDF. The content type is sniffed
// from the file's leading bytes; the extension is not trusted.
func Validate(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoFile
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotPDF, path)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting content type of %s: %w", path, err)
	}

	if !mtype.Is(PDFContentType) {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPDF, path, mtype.String())
	}

	return &File{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: PDFContentType,
	}, nil
}

// IsPDF reports whether data starts like a PDF document.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(PDFContentType)
}

// UserMessage maps a validation error to the notice shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFile):
		return "Please select a file first"
	case errors.Is(err, ErrNotPDF):
		return "Please select a PDF file"
	case errors.Is(err, ErrEmptyFile):
		return "File is empty"
	default:
		return err.Error()
	}
}
