package dictionary

import (
	"errors"
	"sync"
	"time"

	"github.com/tchap/go-patricia/v2/patricia"
)

var (
	// ErrEmptyKey is returned when a Put has a blank key.
	ErrEmptyKey = errors.New("dictionary: empty key")
	// ErrSealed is returned when a Put happens after Build.
	ErrSealed = errors.New("dictionary: builder already sealed")
)

// Builder is the single writer of a Dictionary during the load phase.
// Build seals it; the builder cannot be reused afterwards.
type Builder struct {
	mu       sync.Mutex
	trie     *patricia.Trie
	size     int
	replaced int
	sealed   bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{trie: patricia.NewTrie()}
}

// Put stores value under key, replacing any earlier value entirely.
// It reports whether a previous value was replaced.
func (b *Builder) Put(key, value string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return false, ErrSealed
	}

	prefix := patricia.Prefix(key)
	replaced := b.trie.Get(prefix) != nil
	b.trie.Set(prefix, value)
	if replaced {
		b.replaced++
	} else {
		b.size++
	}
	return replaced, nil
}

// Len returns the number of unique keys put so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Replaced returns how many puts overwrote an existing key.
func (b *Builder) Replaced() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replaced
}

// Build seals the builder and returns the finished dictionary.
// Calling Build twice returns the same contents.
func (b *Builder) Build() *Dictionary {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true
	return &Dictionary{
		trie:    b.trie,
		size:    b.size,
		builtAt: time.Now(),
	}
}
