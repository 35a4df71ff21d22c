package record

import (
	"path/filepath"
	"sync"
)

// Locks hands out one mutex per output file. Writers sharing a Locks value
// serialize appends to the same file and never block each other on
// different files.
type Locks struct {
	mu    sync.Mutex
	files map[string]*sync.Mutex
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{files: make(map[string]*sync.Mutex)}
}

// For returns the mutex guarding path. Equivalent paths share a mutex.
func (l *Locks) For(path string) *sync.Mutex {
	key := filepath.Clean(path)

	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.files[key]
	if !ok {
		m = &sync.Mutex{}
		l.files[key] = m
	}

	return m
}

// size returns the number of distinct files seen.
func (l *Locks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.files)
}
