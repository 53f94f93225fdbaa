// Package tmap provides a constructor-ID-to-name registry, used for
// diagnostics and logging when a service message's type needs a readable
// name rather than a bare hex ID.
package tmap

import "fmt"

// Map is a read-only registry of constructor IDs to human-readable names.
type Map struct {
	names map[uint32]string
}

// New builds a Map from a constructor-ID-to-name table.
func New(names map[uint32]string) *Map {
	m := &Map{names: make(map[uint32]string, len(names))}
	for id, name := range names {
		m.names[id] = name
	}
	return m
}

// Get returns the registered name for id, or false if none is registered.
func (m *Map) Get(id uint32) (string, bool) {
	name, ok := m.names[id]
	return name, ok
}

// GetOrHex returns the registered name for id, or a "0xXXXXXXXX" fallback
// if none is registered — suitable for direct use in log fields.
func (m *Map) GetOrHex(id uint32) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", id)
}
