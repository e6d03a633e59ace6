// Package storage provides the sparse indexed container used by the NDT
// maps: a hash map from integer cell index to a stably addressed value,
// grown lazily and never shrunk.
package storage

import (
	"slices"
	"sync"
	"unsafe"
)

// Storage maps keys to values that keep their address for the lifetime of
// the storage. It is safe for concurrent use.
type Storage[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*V
	compare func(a, b K) int
}

// New creates a storage. capacity is a sizing hint only; compare defines the
// order in which Traverse and Keys report entries.
func New[K comparable, V any](capacity int, compare func(a, b K) int) *Storage[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Storage[K, V]{
		entries: make(map[K]*V, capacity),
		compare: compare,
	}
}

// Get returns the value stored at k, if any. It never allocates an entry.
func (s *Storage[K, V]) Get(k K) (*V, bool) {
	s.mu.RLock()
	v, ok := s.entries[k]
	s.mu.RUnlock()
	return v, ok
}

// GetOrCreate returns the value at k, calling create to build it when absent.
// The existence test, create and the insert all run while the write guard
// is held, so concurrent callers for the same key observe exactly one value
// and never a partially built one. create must not call back into s.
func (s *Storage[K, V]) GetOrCreate(k K, create func() *V) (v *V, created bool) {
	s.mu.RLock()
	v, ok := s.entries[k]
	s.mu.RUnlock()
	if ok {
		return v, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.entries[k]; ok {
		return v, false
	}
	v = create()
	s.entries[k] = v
	return v, true
}

// Insert stores v at k unless k is already present, and returns the value
// now stored at k. An existing entry is kept and v is discarded, so
// references handed out earlier stay valid.
func (s *Storage[K, V]) Insert(k K, v V) *V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[k]; ok {
		return cur
	}
	s.entries[k] = &v
	return &v
}

// Len returns the number of materialized entries.
func (s *Storage[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

type entry[K comparable, V any] struct {
	key K
	val *V
}

func (s *Storage[K, V]) snapshot() []entry[K, V] {
	s.mu.RLock()
	out := make([]entry[K, V], 0, len(s.entries))
	for k, v := range s.entries {
		out = append(out, entry[K, V]{key: k, val: v})
	}
	s.mu.RUnlock()
	if s.compare != nil {
		slices.SortFunc(out, func(a, b entry[K, V]) int { return s.compare(a.key, b.key) })
	}
	return out
}

// Traverse visits every materialized entry. The entry set is captured under
// the read guard and visited after it is released, so visit may call any
// Storage method. Entries created during the traversal are not visited.
func (s *Storage[K, V]) Traverse(visit func(k K, v *V)) {
	for _, e := range s.snapshot() {
		visit(e.key, e.val)
	}
}

// Keys returns the keys of all materialized entries.
func (s *Storage[K, V]) Keys() []K {
	snap := s.snapshot()
	keys := make([]K, len(snap))
	for i, e := range snap {
		keys[i] = e.key
	}
	return keys
}

// ByteSize estimates the memory held by the entries: key, pointer and value
// per entry. Memory referenced from inside values is not counted.
func (s *Storage[K, V]) ByteSize() int {
	var k K
	var v V
	per := int(unsafe.Sizeof(k)) + int(unsafe.Sizeof(&v)) + int(unsafe.Sizeof(v))
	return int(unsafe.Sizeof(*s)) + per*s.Len()
}
