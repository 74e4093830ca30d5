package logger

import (
	"github.com/charmbracelet/log"
)

// Sink is an append-only diagnostic log. Writers never expect a response
// and nothing written to a sink affects control flow.
type Sink interface {
	Append(level log.Level, msg string, keyvals ...any)
}

type charmSink struct {
	l *log.Logger
}

// FromLogger adapts a charm logger into a Sink.
func FromLogger(l *log.Logger) Sink {
	if l == nil {
		return Discard()
	}
	return charmSink{l: l}
}

func (s charmSink) Append(level log.Level, msg string, keyvals ...any) {
	s.l.Log(level, msg, keyvals...)
}

type discard struct{}

func (discard) Append(log.Level, string, ...any) {}

// Discard returns a Sink that drops everything.
func Discard() Sink {
	return discard{}
}

// Tee fans every line out to all of its sinks in order.
type Tee []Sink

func (t Tee) Append(level log.Level, msg string, keyvals ...any) {
	for _, s := range t {
		if s != nil {
			s.Append(level, msg, keyvals...)
		}
	}
}
