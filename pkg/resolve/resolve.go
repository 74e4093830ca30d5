// Package resolve turns a raw hover token into a dictionary entry.
//
// Resolution tries the normalized token first. When that misses and the token
// is longer than one character, exactly one trailing character is dropped and
// the shorter key is tried once. Nothing else is attempted.
package resolve

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/exdict/internal/logger"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/charmbracelet/log"
)

// ErrNoCandidate marks a lookup that found neither an exact nor a relaxed entry.
// It only appears in diagnostics; Resolve reports absence with a bool.
var ErrNoCandidate = errors.New("no candidate")

// quotes are removed from anywhere in a token before lookup.
var quotes = strings.NewReplacer(
	"'", "", "\"", "", "`", "",
	"‘", "", "’", "", "‚", "", "‛", "",
	"“", "", "”", "", "„", "", "‟", "",
	"＇", "", "＂", "",
	"「", "", "」", "", "『", "", "』", "",
	"｢", "", "｣", "",
	"〝", "", "〞", "", "〟", "",
)

// Lookuper is the read side of a dictionary.
type Lookuper interface {
	Lookup(key string) (string, bool)
}

// Result is a successful resolution.
type Result struct {
	UsedKey   string
	Requested string
	Value     string
	Exact     bool
}

// Render returns the text to show the user. A relaxed match is prefixed with a
// notice naming both the key used and the token that was asked for.
func (r Result) Render() string {
	if r.Exact || r.UsedKey == r.Requested {
		return r.Value
	}
	return fmt.Sprintf("**%s** (no exact entry for `%s`)", r.UsedKey, r.Requested) +
		source.Separator + r.Value
}

// Normalize strips quotation characters and surrounding whitespace.
func Normalize(raw string) string {
	return strings.TrimSpace(quotes.Replace(raw))
}

// Resolver looks tokens up in a dictionary. It holds no state between calls.
type Resolver struct {
	dict Lookuper
	sink logger.Sink
}

// New creates a resolver over dict. A nil sink discards diagnostics.
func New(dict Lookuper, sink logger.Sink) *Resolver {
	if sink == nil {
		sink = logger.Discard()
	}
	return &Resolver{dict: dict, sink: sink}
}

// Resolve finds the entry for raw. It returns false when there is no candidate.
func (r *Resolver) Resolve(raw string) (Result, bool) {
	token := Normalize(raw)
	if token == "" {
		r.sink.Append(log.InfoLevel, "nothing to look up", "raw", raw, "err", ErrNoCandidate)
		return Result{}, false
	}

	if value, ok := r.dict.Lookup(token); ok {
		r.sink.Append(log.DebugLevel, "exact match", "key", token)
		return Result{UsedKey: token, Requested: token, Value: value, Exact: true}, true
	}

	if truncated, ok := dropLastRune(token); ok {
		if value, ok := r.dict.Lookup(truncated); ok {
			r.sink.Append(log.InfoLevel, "fallback match", "requested", token, "key", truncated)
			return Result{UsedKey: truncated, Requested: token, Value: value, Exact: false}, true
		}
	}

	r.sink.Append(log.InfoLevel, "no entry", "token", token, "err", ErrNoCandidate)
	return Result{}, false
}

// dropLastRune removes one trailing character. Single-character tokens have no
// shorter form.
func dropLastRune(s string) (string, bool) {
	if utf8.RuneCountInString(s) <= 1 {
		return "", false
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size], true
}
