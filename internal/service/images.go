package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore keeps uploaded tournament images and hands back the public URL.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(url string) error
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// LocalImageStore writes images under Root/tournaments and serves them from
// /uploads/tournaments/<uuid><ext>.
type LocalImageStore struct {
	Root string
}

const uploadsPrefix = "/uploads/"

func (s LocalImageStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return "", invalid("image", "unsupported image type "+ext)
	}
	dir := filepath.Join(s.Root, "tournaments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(uploadsPrefix, "tournaments", name), nil
}

// Remove deletes a previously saved image.  URLs outside /uploads/ (external
// images) are left alone.
func (s LocalImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, uploadsPrefix) {
		return nil
	}
	rel := path.Clean(strings.TrimPrefix(url, uploadsPrefix))
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
