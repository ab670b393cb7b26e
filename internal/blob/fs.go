package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FS stores uploads under a local directory and serves them through a
// static file route; the returned URL is baseURL + "/" + object name.
type FS struct {
	dir     string
	baseURL string
}

func NewFS(dir string, baseURL string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FS{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *FS) Put(_ context.Context, name string, r io.Reader) (string, error) {
	clean := filepath.Clean("/" + name)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	path := filepath.Join(f.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return "", err
	}
	return f.baseURL + clean, nil
}

func (f *FS) Open(_ context.Context, url string) (io.ReadCloser, error) {
	name, ok := strings.CutPrefix(url, f.baseURL+"/")
	if !ok {
		return nil, ErrNotFound
	}

	clean := filepath.Clean("/" + name)
	if strings.Contains(clean, "..") {
		return nil, ErrNotFound
	}

	file, err := os.Open(filepath.Join(f.dir, filepath.FromSlash(clean)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Dir exposes the storage root so the server can mount a file handler on it.
func (f *FS) Dir() string {
	return f.dir
}
