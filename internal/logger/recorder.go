package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Entry is one recorded diagnostic line.
type Entry struct {
	Time    time.Time
	Level   log.Level
	Message string
	Fields  []any
}

// String renders the entry in logfmt-ish form.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Fields[i], e.Fields[i+1])
	}
	if len(e.Fields)%2 == 1 {
		fmt.Fprintf(&b, " %v", e.Fields[len(e.Fields)-1])
	}
	return b.String()
}

// Recorder keeps the last N diagnostics in memory so a host can fetch them.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	next     int
	full     bool
	minLevel log.Level
}

// NewRecorder creates a ring buffer holding up to capacity entries at or above minLevel.
func NewRecorder(capacity int, minLevel log.Level) *Recorder {
	if capacity < 1 {
		capacity = 1
	}
	return &Recorder{
		entries:  make([]Entry, capacity),
		minLevel: minLevel,
	}
}

func (r *Recorder) Append(level log.Level, msg string, keyvals ...any) {
	if level < r.minLevel {
		return
	}
	fields := make([]any, len(keyvals))
	copy(fields, keyvals)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = Entry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  fields,
	}
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Entries returns up to limit of the most recent entries, oldest first.
// limit <= 0 returns everything retained.
func (r *Recorder) Entries(limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []Entry
	if r.full {
		ordered = append(ordered, r.entries[r.next:]...)
	}
	ordered = append(ordered, r.entries[:r.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Len reports how many entries are retained.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}
