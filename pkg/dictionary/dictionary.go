// Package dictionary holds the key to composed-value map that lookups are served from.
//
// A Dictionary is built once by a Builder and never mutated afterwards.
// Reloading means building a new Dictionary and swapping it into a Store.
package dictionary

import (
	"errors"
	"sort"
	"time"

	"github.com/tchap/go-patricia/v2/patricia"
)

var errStopVisit = errors.New("stop visit")

// Dictionary is an immutable key -> value mapping backed by a patricia trie.
// It is safe for concurrent readers.
type Dictionary struct {
	trie    *patricia.Trie
	size    int
	builtAt time.Time
}

// Empty returns a dictionary with no entries.
func Empty() *Dictionary {
	return &Dictionary{trie: patricia.NewTrie()}
}

// Lookup returns the value stored for key.
func (d *Dictionary) Lookup(key string) (string, bool) {
	if d == nil || d.trie == nil || key == "" {
		return "", false
	}
	item := d.trie.Get(patricia.Prefix(key))
	if item == nil {
		return "", false
	}
	value, ok := item.(string)
	return value, ok
}

// Len returns the number of unique keys.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

// BuiltAt returns when the dictionary was sealed. Zero for Empty().
func (d *Dictionary) BuiltAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.builtAt
}

// Keys returns keys starting with prefix in byte order, at most limit of them.
// limit <= 0 means no limit. An empty prefix matches every key.
func (d *Dictionary) Keys(prefix string, limit int) []string {
	if d == nil || d.trie == nil {
		return nil
	}

	var keys []string
	visit := func(p patricia.Prefix, item patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	}

	var err error
	if prefix == "" {
		err = d.trie.Visit(visit)
	} else {
		err = d.trie.VisitSubtree(patricia.Prefix(prefix), visit)
	}
	if err != nil && !errors.Is(err, errStopVisit) {
		return nil
	}

	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// Each calls fn for every entry until fn returns false.
func (d *Dictionary) Each(fn func(key, value string) bool) {
	if d == nil || d.trie == nil {
		return
	}
	_ = d.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		value, _ := item.(string)
		if !fn(string(p), value) {
			return errStopVisit
		}
		return nil
	})
}
