// Package storage provides durable key/value storage for client state that
// must survive between CLI invocations, such as the persisted session blob.
package storage

import "errors"

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("storage: key not found")

// Storage defines durable single-key storage operations.
// Set overwrites the whole value; Delete of a missing key is not an error.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Open returns the storage backend named by backend ("keyring" or "file"),
// scoped to a single backend server so sessions for different servers never mix.
func Open(backend, scope string) (Storage, error) {
	switch backend {
	case "", "keyring":
		return NewKeyring(scope), nil
	case "file":
		path, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return NewFile(path, scope), nil
	default:
		return nil, errors.New("storage: unknown backend " + backend)
	}
}
