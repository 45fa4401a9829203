// Package kv defines the string-keyed blob store the ledger and identity
// repositories persist into, plus the helpers that read, write and serialize
// mutations of its values.
package kv

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyUsers        = "users"
	KeySession      = "userSession"
	KeyTransactions = "transactions"
)

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is an asynchronous-safe blob store. Each call is atomic for a single
// key; there are no cross-key transactions.
type Store interface {
	// Get returns the blob stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous blob.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Updater is implemented by stores that can read and rewrite one key
// atomically, even against other processes sharing the same storage. fn sees
// the current blob (exists is false when the key is absent) and returns the
// blob to store. When fn fails nothing is written and its error is returned
// unchanged.
type Updater interface {
	Update(ctx context.Context, key string, fn func(current []byte, exists bool) ([]byte, error)) error
}
