package kv

import (
	"context"
	"encoding/json"
	"errors"

	"pocketledger/internal/core"
)

// Load decodes the JSON value stored under key. The boolean is false when the
// key is absent. Read failures and undecodable blobs come back as *core.StorageError.
func Load[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	blob, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, &core.StorageError{Op: "get", Key: key, Err: err}
	}
	v, err := decode[T](key, blob)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// Save encodes v as JSON and stores it under key.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	blob, err := encode(key, v)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, blob); err != nil {
		return &core.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes key from the store.
func Delete(ctx context.Context, s Store, key string) error {
	if err := s.Remove(ctx, key); err != nil {
		return &core.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func decode[T any](key string, blob []byte) (T, error) {
	var v T
	if err := json.Unmarshal(blob, &v); err != nil {
		return v, &core.StorageError{Op: "decode", Key: key, Err: err}
	}
	return v, nil
}

func encode[T any](key string, v T) ([]byte, error) {
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, &core.StorageError{Op: "encode", Key: key, Err: err}
	}
	return blob, nil
}
