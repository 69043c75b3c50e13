// Package mirror keeps the JSON side file that records every created developer.
//
// The file holds one JSON array that only grows. It is never read back by the
// service: the relational store stays the source of truth.
package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// File appends entries to a JSON array stored at Path.
type File struct {
	Path string

	mu sync.Mutex
}

func New(path string) *File {
	return &File{Path: path}
}

// Append reads the whole array (a missing file counts as empty), appends entry
// and rewrites the file. Appends from one process are serialised; separate
// processes sharing the path can still overwrite each other.
func (f *File) Append(entry any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode mirror entry: %w", err)
	}
	entries = append(entries, raw)

	return f.write(entries)
}

func (f *File) read() ([]jsoniter.RawMessage, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []jsoniter.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror %s: %w", f.Path, err)
	}

	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode mirror %s: %w", f.Path, err)
	}
	return entries, nil
}

func (f *File) write(entries []jsoniter.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace mirror %s: %w", f.Path, err)
	}
	return nil
}
