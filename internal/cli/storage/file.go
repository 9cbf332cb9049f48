package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	storageDirName  = "newshub"
	storageFileName = "storage.json"
)

// errCorruptFile marks a storage file that exists but is not valid JSON
var errCorruptFile = errors.New("storage file is corrupt")

// File stores values in a JSON file for hosts without a usable keyring.
// Entries are kept as {"<scope>": {"<key>": "<value>"}}.
type File struct {
	mu    sync.Mutex
	path  string
	scope string
}

// DefaultFilePath returns ~/.config/newshub/storage.json
func DefaultFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", storageDirName, storageFileName), nil
}

// NewFile creates a file-backed storage at path for the given server scope
func NewFile(path, scope string) *File {
	return &File{path: path, scope: scope}
}

func (f *File) load() (map[string]map[string]string, error) {
	entries := make(map[string]map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse storage file: %w: %w", errCorruptFile, err)
	}
	return entries, nil
}

// save writes to a temp file and renames it over the old one
func (f *File) save(entries map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set storage file mode: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

// Get returns the value stored for key in this scope
func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := entries[f.scope][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set overwrites the value for key in this scope. A corrupt file is
// replaced.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if errors.Is(err, errCorruptFile) {
		entries, err = make(map[string]map[string]string), nil
	}
	if err != nil {
		return err
	}
	if entries[f.scope] == nil {
		entries[f.scope] = make(map[string]string)
	}
	entries[f.scope][key] = value
	return f.save(entries)
}

// Delete removes key from this scope. A corrupt file is reset.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if errors.Is(err, errCorruptFile) {
		return f.save(make(map[string]map[string]string))
	}
	if err != nil {
		return err
	}
	if _, ok := entries[f.scope][key]; !ok {
		return nil
	}
	delete(entries[f.scope], key)
	if len(entries[f.scope]) == 0 {
		delete(entries, f.scope)
	}
	return f.save(entries)
}
