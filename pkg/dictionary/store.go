package dictionary

import (
	"sync/atomic"
)

// Store publishes the current Dictionary to readers.
// Swapping is atomic, so lookups during a reload see either the old or the
// new dictionary and never a partially built one.
type Store struct {
	current atomic.Pointer[Dictionary]
}

// NewStore creates a store holding an empty dictionary.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(Empty())
	return s
}

// Current returns the committed dictionary.
func (s *Store) Current() *Dictionary {
	if d := s.current.Load(); d != nil {
		return d
	}
	return Empty()
}

// Swap commits d and returns the previous dictionary.
func (s *Store) Swap(d *Dictionary) *Dictionary {
	if d == nil {
		d = Empty()
	}
	return s.current.Swap(d)
}

// Lookup reads key from the committed dictionary.
func (s *Store) Lookup(key string) (string, bool) {
	return s.Current().Lookup(key)
}
