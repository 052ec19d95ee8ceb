package chat

import (
	"context"
	"sync"
)

// MemoryEmailSet is an in-process, insertion-ordered set of captured emails
type MemoryEmailSet struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	emails []string
}

func NewMemoryEmailSet() *MemoryEmailSet {
	return &MemoryEmailSet{seen: make(map[string]struct{})}
}

func (m *MemoryEmailSet) Add(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[email]; ok {
		return false, nil
	}
	m.seen[email] = struct{}{}
	m.emails = append(m.emails, email)
	return true, nil
}

func (m *MemoryEmailSet) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.emails...), nil
}
