package kv

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"pocketledger/internal/core"
)

// ErrNoChange tells Update that the mutation decided to leave the value as is.
var ErrNoChange = errors.New("kv: no change")

// Writer serializes read-modify-write sequences per key. Callers holding more
// than one key must acquire them in a fixed order (users before userSession).
type Writer struct {
	mu    sync.Mutex
	slots map[string]*semaphore.Weighted
}

// NewWriter returns a Writer with no keys held.
func NewWriter() *Writer {
	return &Writer{slots: make(map[string]*semaphore.Weighted)}
}

func (w *Writer) slot(key string) *semaphore.Weighted {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.slots[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		w.slots[key] = s
	}
	return s
}

// Do runs fn while holding the write slot for key. It fails only if ctx is
// done before the slot frees up, or with fn's own error.
func (w *Writer) Do(ctx context.Context, key string, fn func() error) error {
	s := w.slot(key)
	if err := s.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.Release(1)
	return fn()
}

// Update loads the value under key, applies fn and stores the result, all
// while holding the key's write slot. Stores implementing Updater run the
// whole sequence in one atomic step, which also guards against writers in
// other processes. When fn returns ErrNoChange nothing is written and Update
// returns nil; any other error aborts without writing.
func Update[T any](ctx context.Context, w *Writer, s Store, key string, fn func(current T, exists bool) (T, error)) error {
	return w.Do(ctx, key, func() error {
		var err error
		if u, ok := s.(Updater); ok {
			err = updateAtomic(ctx, u, key, fn)
		} else {
			err = updateInPlace(ctx, s, key, fn)
		}
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	})
}

func updateAtomic[T any](ctx context.Context, u Updater, key string, fn func(current T, exists bool) (T, error)) error {
	var fnErr error
	err := u.Update(ctx, key, func(blob []byte, exists bool) ([]byte, error) {
		var current T
		if exists {
			if current, fnErr = decode[T](key, blob); fnErr != nil {
				return nil, fnErr
			}
		}
		next, err := fn(current, exists)
		if err != nil {
			fnErr = err
			return nil, err
		}
		out, err := encode(key, next)
		if err != nil {
			fnErr = err
			return nil, err
		}
		return out, nil
	})
	if err != nil && fnErr == nil {
		return &core.StorageError{Op: "update", Key: key, Err: err}
	}
	return err
}

func updateInPlace[T any](ctx context.Context, s Store, key string, fn func(current T, exists bool) (T, error)) error {
	current, exists, err := Load[T](ctx, s, key)
	if err != nil {
		return err
	}
	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	return Save(ctx, s, key, next)
}
