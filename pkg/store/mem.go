// Package store provides the simulated memory served over the link.
package store

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultSize is the default number of bytes of a MemStore.
const DefaultSize = 128

// ErrOutOfRange indicates an access beyond the end of the store.
var ErrOutOfRange = errors.New("address out of range")

// MemStore is an in-memory byte array addressed from 0.
type MemStore struct {
	data []byte
	lock sync.RWMutex
}

// NewMemStore creates a zero filled MemStore.
func NewMemStore(size int) *MemStore {
	return &MemStore{data: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (m *MemStore) Size() int {
	return len(m.data)
}

// Read returns a copy of n bytes at address.
func (m *MemStore) Read(address byte, n int) ([]byte, error) {
	if err := m.check(address, n); err != nil {
		return nil, err
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := make([]byte, n)
	copy(out, m.data[address:])
	return out, nil
}

// Write stores data at address. Nothing is written if data doesn't fit.
func (m *MemStore) Write(address byte, data []byte) error {
	if err := m.check(address, len(data)); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	copy(m.data[address:], data)
	return nil
}

// Snapshot returns a copy of the whole store.
func (m *MemStore) Snapshot() []byte {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return append([]byte(nil), m.data...)
}

func (m *MemStore) check(address byte, n int) error {
	if n < 0 || int(address)+n > len(m.data) || (n == 0 && int(address) >= len(m.data)) {
		return fmt.Errorf("%w: 0x%02X+%d, size %d", ErrOutOfRange, address, n, len(m.data))
	}
	return nil
}
