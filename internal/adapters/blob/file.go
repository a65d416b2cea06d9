package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName はオブジェクト名にディレクトリ要素が含まれる場合に返されます。
var ErrInvalidName = errors.New("blob: invalid object name")

// FileStore はローカルディレクトリへ保存し、公開 URL を組み立てるブロブストアです。
type FileStore struct {
	dir     string
	baseURL *url.URL
}

// NewFileStore は FileStore を生成します。dir が存在しなければ作成します。
func NewFileStore(dir, publicURL string) (*FileStore, error) {
	base, err := url.Parse(strings.TrimRight(publicURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("blob: parse public url: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, baseURL: base}, nil
}

// Dir は保存先ディレクトリを返します。
func (s *FileStore) Dir() string {
	return s.dir
}

// Upload は name のファイルを上書き保存して公開 URL を返します。
func (s *FileStore) Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("blob: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("blob: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("blob: store %s: %w", name, err)
	}

	return s.baseURL.JoinPath(name).String(), nil
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
