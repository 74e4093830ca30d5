package logger

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsMostRecent(t *testing.T) {
	r := NewRecorder(3, log.DebugLevel)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		r.Append(log.InfoLevel, msg)
	}

	entries := r.Entries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Message)
	assert.Equal(t, "e", entries[2].Message)

	last := r.Entries(2)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Message)
}

func TestRecorderMinimumLevel(t *testing.T) {
	r := NewRecorder(10, log.WarnLevel)
	r.Append(log.DebugLevel, "noise")
	r.Append(log.InfoLevel, "noise")
	r.Append(log.ErrorLevel, "source unavailable", "path", "/x.csv")

	require.Equal(t, 1, r.Len())
	assert.Equal(t, "ERROR source unavailable path=/x.csv", r.Entries(0)[0].String())
}

func TestTee(t *testing.T) {
	a := NewRecorder(4, log.DebugLevel)
	b := NewRecorder(4, log.DebugLevel)
	Tee{a, nil, b, Discard()}.Append(log.InfoLevel, "loaded", "entries", 2)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel(" Debug "))
	assert.Equal(t, log.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, log.WarnLevel, ParseLevel("chatty"))
}
