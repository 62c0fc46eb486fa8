// Package storage provides the durable key-value store the wallet
// persists its state through.
package storage

import "errors"

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	// Get retrieves the value for a key. Returns ErrNotFound when absent.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
