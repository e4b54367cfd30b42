// Package tracker provides a bounded, arrival-ordered history of records.
// It maintains a ring buffer where the oldest entry is evicted once the
// configured size is reached.
package tracker

import "sync"

// DefaultMaxSize is the default maximum number of records to retain
const DefaultMaxSize = 50

// History is a bounded FIFO of records, oldest first.
type History[T any] struct {
	items   []T
	maxSize int
	mu      sync.RWMutex
}

// New creates a History with DefaultMaxSize
func New[T any]() *History[T] {
	return NewWithSize[T](DefaultMaxSize)
}

// NewWithSize creates a History that keeps at most maxSize records.
// A non-positive size falls back to DefaultMaxSize.
func NewWithSize[T any](maxSize int) *History[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History[T]{
		items:   make([]T, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record appends item, evicting the oldest record when at capacity
func (h *History[T]) Record(item T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) >= h.maxSize {
		h.items = h.items[1:]
	}
	h.items = append(h.items, item)
}

// All returns a copy of every retained record, oldest first
func (h *History[T]) All() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]T, len(h.items))
	copy(result, h.items)
	return result
}

// Latest returns up to n of the newest records, newest first
func (h *History[T]) Latest(n int) []T {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.items) {
		n = len(h.items)
	}
	result := make([]T, 0, n)
	for i := len(h.items) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, h.items[i])
	}
	return result
}

// Filter returns the retained records for which keep is true, oldest first
func (h *History[T]) Filter(keep func(T) bool) []T {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]T, 0)
	for _, item := range h.items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

// Count returns the number of retained records
func (h *History[T]) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Cap returns the maximum number of retained records
func (h *History[T]) Cap() int {
	return h.maxSize
}

// Clear removes all records
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = make([]T, 0, h.maxSize)
}

// Coalesced is a run of consecutive records that share a key
type Coalesced[T any] struct {
	First T
	Last  T
	Count int
}

// Coalesce merges consecutive records with equal keys into summary runs.
// Useful for reducing output volume when one failure repeats.
func (h *History[T]) Coalesce(key func(T) string) []Coalesced[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.items) == 0 {
		return nil
	}

	result := make([]Coalesced[T], 0)
	var current *Coalesced[T]
	var currentKey string

	for _, item := range h.items {
		k := key(item)
		if current != nil && k == currentKey {
			// Merge
			current.Count++
			current.Last = item
			continue
		}
		// Start new group
		if current != nil {
			result = append(result, *current)
		}
		current = &Coalesced[T]{First: item, Last: item, Count: 1}
		currentKey = k
	}

	if current != nil {
		result = append(result, *current)
	}
	return result
}
