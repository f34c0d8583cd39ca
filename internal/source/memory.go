package source

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource holds database images in memory, keyed by reference. It is
// used in tests. Safe for concurrent use.
type MemorySource struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{images: make(map[string][]byte)}
}

// Put stores an image under ref, copying the bytes.
func (s *MemorySource) Put(ref string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[ref] = append([]byte(nil), data...)
}

// Fetch returns a copy of the image stored under ref.
func (s *MemorySource) Fetch(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.images[ref]
	if !ok {
		return nil, fmt.Errorf("no image stored for %s", ref)
	}
	return append([]byte(nil), data...), nil
}
