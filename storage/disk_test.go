package storage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// fileHeader builds a parsed multipart upload the way gin hands it to handlers.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("img", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["img"][0]
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		max     int64
		want    error
	}{
		{"png", pngHeader, 1 << 20, nil},
		{"text", []byte("just some words"), 1 << 20, ErrImageType},
		{"too large", pngHeader, 4, ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(fileHeader(t, "dish.png", tt.content), tt.max)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateImage() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLocalDiskPutAndDelete(t *testing.T) {
	root := t.TempDir()
	d := NewLocalDisk(root, "/storage/")

	// the sniffed type wins over a misleading filename
	rel, err := d.Put(context.Background(), "menu-items", fileHeader(t, "dish.jpg", pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(rel, "menu-items/") || filepath.Ext(rel) != ".png" {
		t.Errorf("rel = %q, want menu-items/<id>.png", rel)
	}

	got, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, pngHeader) {
		t.Error("stored bytes differ from upload")
	}
	if url := d.URL(rel); url != "/storage/"+rel {
		t.Errorf("URL = %q", url)
	}

	if err := d.Delete(rel); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, rel)); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if err := d.Delete(rel); err != nil {
		t.Errorf("deleting a missing file: %v", err)
	}
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(outside) })

	d := NewLocalDisk(root, "/storage")
	if err := d.Delete("../keep.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside root was removed: %v", err)
	}
	if err := d.Delete(""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("empty path: err = %v, want ErrInvalidPath", err)
	}
}

func TestPutHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewLocalDisk(t.TempDir(), "/storage")
	if _, err := d.Put(ctx, "menu-items", fileHeader(t, "dish.png", pngHeader)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
