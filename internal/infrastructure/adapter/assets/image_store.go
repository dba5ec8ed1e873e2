package assets

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/google/uuid"
)

// AllowedExtensions lists the image types accepted for upload
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// placeholderImage is written as the default image when the directory has none
//
//go:embed default_item.jpg
var placeholderImage []byte

// ErrImageTooLarge is returned when an upload exceeds the configured size limit
var ErrImageTooLarge = fmt.Errorf("%w: image is too large", errs.ErrInvalidInput)

// ImageStore saves item images in a local directory
type ImageStore struct {
	dir          string
	defaultImage string
	maxBytes     int64
}

// NewImageStore creates dir if needed and places the default image in it unless
// one is already there. maxBytes <= 0 disables the size limit.
func NewImageStore(dir, defaultImage string, maxBytes int64) (persistence.ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if defaultImage == "" {
		defaultImage = entity.DefaultImage
	}
	s := &ImageStore{dir: dir, defaultImage: defaultImage, maxBytes: maxBytes}
	if err := s.ensureDefault(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ImageStore) ensureDefault() error {
	path, err := s.resolve(s.defaultImage)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create default image: %w", err)
	}
	_, err = f.Write(placeholderImage)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path) //nolint:errcheck
		return fmt.Errorf("create default image: %w", err)
	}
	return nil
}

// AllowedFile reports whether filename has an allowed image extension
func AllowedFile(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return AllowedExtensions[strings.ToLower(filename[i+1:])]
}

// sanitize keeps the base name of an upload with only safe characters
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	return strings.Trim(base, "._")
}

// Save writes content under "<uuid>_<sanitized name>" so uploads never overwrite each other
func (s *ImageStore) Save(_ context.Context, originalName string, content io.Reader) (string, error) {
	if !AllowedFile(originalName) {
		return "", errs.ErrInvalidFileType
	}
	clean := sanitize(originalName)
	if !AllowedFile(clean) {
		return "", errs.ErrInvalidFileType
	}
	name := uuid.NewString() + "_" + clean

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	reader := content
	if s.maxBytes > 0 {
		reader = io.LimitReader(content, s.maxBytes+1)
	}
	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil && s.maxBytes > 0 && written > s.maxBytes {
		err = ErrImageTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name)) //nolint:errcheck
		return "", err
	}
	return name, nil
}

// Remove deletes a stored image. The default image and missing files are ignored.
func (s *ImageStore) Remove(_ context.Context, name string) error {
	if name == "" || name == s.defaultImage {
		return nil
	}
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the file path of a stored image
func (s *ImageStore) Path(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("image %s: %w", name, errs.ErrNotFound)
	}
	return path, nil
}

// resolve rejects names that would escape the image directory
func (s *ImageStore) resolve(name string) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: bad image name %q", errs.ErrInvalidInput, name)
	}
	return filepath.Join(s.dir, name), nil
}
