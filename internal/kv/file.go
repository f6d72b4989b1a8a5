package kv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "trade-journal/internal/errors"
)

// File persists all keys as a single JSON object on disk. Every write
// rewrites the file through a temp file and rename.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a file-backed store at path. The file is created lazily.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.NewStorageError("file", "open", path, err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", false, apperrors.NewStorageError("file", "get", key, err)
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return apperrors.NewStorageError("file", "set", key, err)
	}
	data[key] = value
	if err := f.write(data); err != nil {
		return apperrors.NewStorageError("file", "set", key, err)
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return apperrors.NewStorageError("file", "remove", key, err)
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	if err := f.write(data); err != nil {
		return apperrors.NewStorageError("file", "remove", key, err)
	}
	return nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError("file", "clear", "", err)
	}
	return nil
}

func (f *File) read() (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *File) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kv-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
