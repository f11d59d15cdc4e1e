package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrImageTooLarge  = errors.New("image is too large")
	ErrImageType      = errors.New("image must be a file of type: jpg, jpeg, png, webp")
	ErrInvalidPath    = errors.New("invalid storage path")
	allowedImageMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
)

// Disk stores uploaded files and hands back paths relative to its public root.
type Disk interface {
	Put(ctx context.Context, dir string, file *multipart.FileHeader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

// LocalDisk keeps files on the local filesystem under Root; they are served
// publicly at BaseURL.
type LocalDisk struct {
	Root    string
	BaseURL string
}

func NewLocalDisk(root, baseURL string) *LocalDisk {
	return &LocalDisk{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *LocalDisk) Put(ctx context.Context, dir string, file *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if mt, err := mimetype.DetectReader(src); err == nil && mt.Extension() != "" {
		ext = mt.Extension()
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	rel := path.Join(dir, uuid.NewString()+ext)
	full, err := d.abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	return rel, nil
}

func (d *LocalDisk) Delete(relPath string) error {
	full, err := d.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (d *LocalDisk) URL(relPath string) string {
	return d.BaseURL + "/" + strings.TrimLeft(relPath, "/")
}

// abs resolves a relative path inside Root and refuses anything that escapes it.
func (d *LocalDisk) abs(relPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(relPath))
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}

// ValidateImage checks size and sniffed content type of an uploaded image.
func ValidateImage(file *multipart.FileHeader, maxBytes int64) error {
	if maxBytes > 0 && file.Size > maxBytes {
		return ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return fmt.Errorf("detect image type: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowedImageMIMEs...) {
		return ErrImageType
	}
	return nil
}
