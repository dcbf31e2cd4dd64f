package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("cannot upload empty file")
	// ErrFileTooLarge is returned when an upload exceeds the configured
	// maximum size.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
	// ErrInvalidFileType is returned for uploads outside the allowed
	// document/video/image types.
	ErrInvalidFileType = errors.New("invalid file type, only PDF, MP4, JPG, JPEG and PNG files are allowed")
)

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"video/mp4":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".mp4":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store writes course content files to the local filesystem under a base
// directory, one subdirectory per course.
type Store struct {
	Dir      string
	MaxBytes int64
}

// NewStore creates a Store rooted at dir. The directory is created if absent.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{Dir: dir, MaxBytes: maxBytes}, nil
}

// Validate checks an upload against the size and type rules before anything
// touches the disk.
func (s *Store) Validate(header *multipart.FileHeader) error {
	if header.Size == 0 {
		return ErrEmptyFile
	}
	if header.Size > s.MaxBytes {
		return ErrFileTooLarge
	}
	if !allowedContentTypes[header.Header.Get("Content-Type")] {
		return ErrInvalidFileType
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return ErrInvalidFileType
	}
	return nil
}

// Save stores the uploaded file under <dir>/<courseID>/ with a UUID-prefixed
// name and returns the path relative to the base directory.
func (s *Store) Save(header *multipart.FileHeader, courseID string) (string, error) {
	courseDir := filepath.Join(s.Dir, courseID)
	if err := os.MkdirAll(courseDir, 0o755); err != nil {
		return "", fmt.Errorf("creating course directory: %w", err)
	}

	// Only the extension of the client-supplied name is trusted.
	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	relPath := filepath.Join(courseID, name)

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.Dir, relPath))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}

	return relPath, nil
}

// Path resolves a stored relative path to an absolute filesystem path.
func (s *Store) Path(relPath string) string {
	return filepath.Join(s.Dir, relPath)
}

// Remove deletes a stored file. A file already gone is not an error.
func (s *Store) Remove(relPath string) error {
	err := os.Remove(filepath.Join(s.Dir, relPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
