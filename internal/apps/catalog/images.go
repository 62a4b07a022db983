package catalog

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrImageTooLarge = errors.New("image exceeds the upload size limit")
	ErrImageType     = errors.New("image type not allowed")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore keeps product images as flat files under one directory. Rows
// store only the file name.
type ImageStore struct {
	dir     string
	maxSize int64
}

func NewImageStore(dir string, maxSize int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageStore{dir: dir, maxSize: maxSize}, nil
}

func (s *ImageStore) Dir() string { return s.dir }

func (s *ImageStore) MaxSize() int64 { return s.maxSize }

// Validate checks size and sniffed content type and returns the extension
// the stored file will get.
func (s *ImageStore) Validate(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", ErrImageType
	}
	return mt.Extension(), nil
}

// Save stores the upload as product-<uuid><ext> and returns the file name.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext, err := s.Validate(fh)
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := "product-" + uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1)); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return name, nil
}

// Remove deletes a stored image. A missing file is not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(s.Path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// Path resolves a stored name inside the upload dir. Directory components
// are stripped.
func (s *ImageStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
