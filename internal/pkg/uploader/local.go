package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader 本地磁盘存储，文件通过 /uploads 静态路由访问
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory served as static files.
func (u *LocalUploader) Dir() string {
	return u.dir
}

func (u *LocalUploader) Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return u.baseURL + "/uploads/" + name, nil
}

func (u *LocalUploader) Delete(ctx context.Context, name string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid object name %q", name)
	}
	if err := os.Remove(filepath.Join(u.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
