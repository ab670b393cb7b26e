package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrNotFound reports a retrieval URL that does not resolve to a stored
// object.
var ErrNotFound = errors.New("object not found")

// Storage accepts a named upload and returns a durable retrieval URL.
// Open resolves a URL that Put returned back to the object's bytes.
type Storage interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Memory keeps uploads in a map; used in tests and demo mode.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (m *Memory) Put(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.objects[name] = data
	m.mu.Unlock()

	return m.baseURL + "/" + name, nil
}

func (m *Memory) Open(_ context.Context, url string) (io.ReadCloser, error) {
	name, ok := strings.CutPrefix(url, m.baseURL+"/")
	if !ok {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	data, exists := m.objects[name]
	m.mu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Get is a test helper; production reads go through Open with the
// retrieval URL.
func (m *Memory) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[name]
	return data, ok
}
