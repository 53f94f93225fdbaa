package session

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Storage.Load when no snapshot has been saved
// yet.
var ErrNotFound = errors.New("session: no stored snapshot")

// Storage persists one session's marshaled snapshot. Its methods take no
// key: which session (account, connection name) a Storage holds is up to
// the host that creates it.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Loader is a convenience wrapper around Storage that marshals/unmarshals
// Data directly, so hosts don't need to duplicate the encode/decode calls.
type Loader struct {
	Storage Storage
}

// Load reads and decodes the stored snapshot.
func (l Loader) Load(ctx context.Context) (*Data, error) {
	raw, err := l.Storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Unmarshal(raw)
}

// Save encodes and writes data.
func (l Loader) Save(ctx context.Context, data *Data) error {
	raw, err := data.Marshal()
	if err != nil {
		return err
	}
	return l.Storage.Save(ctx, raw)
}

// StorageMemory is an in-process Storage backed by a byte slice, used by
// tests and by hosts that don't need durability across restarts.
type StorageMemory struct {
	mu  sync.Mutex
	raw []byte
}

// Load implements Storage.
func (s *StorageMemory) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), s.raw...), nil
}

// Save implements Storage.
func (s *StorageMemory) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append([]byte(nil), data...)
	return nil
}
