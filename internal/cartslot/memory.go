package cartslot

import (
	"context"
	"sync"
)

// MemorySlot is an in-process slot. It backs tests and any deployment
// that runs without Redis.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Load(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ok {
		return nil, false, nil
	}
	cp := make([]byte, len(m.data))
	copy(cp, m.data)
	return cp, true, nil
}

func (m *MemorySlot) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make([]byte, len(data))
	copy(m.data, data)
	m.ok = true
	return nil
}

func (m *MemorySlot) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	m.ok = false
	return nil
}
