package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/exdict/pkg/lookup"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedEngine(t *testing.T) (*lookup.Engine, []source.Descriptor) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.tsv")
	body := "id\tsql\nORDER_TBL\tSELECT * FROM orders\nCUST\tSELECT * FROM customers\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	descs := []source.Descriptor{{Path: path, IDColumn: 0, ValueColumn: 1, HasHeader: true}}
	e := lookup.NewEngine(nil)
	e.Load(descs)
	return e, descs
}

func TestPromptSession(t *testing.T) {
	e, _ := loadedEngine(t)
	input := strings.Join([]string{
		"ORDER_TBL",
		"ORDER_TBLS",
		"NOPE",
		"",
		":complete ORD",
		":complete",
		":stats",
		":reload",
		":bogus",
		strings.Repeat("x", 20),
		":quit",
		"CUST",
	}, "\n")

	var out bytes.Buffer
	h := NewInputHandlerIO(e, Options{MaxTokenLength: 16}, strings.NewReader(input), &out)
	require.NoError(t, h.Start())

	text := out.String()
	assert.Contains(t, text, "SELECT * FROM orders")
	assert.Contains(t, text, "no exact entry for 'ORDER_TBLS', showing 'ORDER_TBL'")
	assert.Contains(t, text, "No entry for 'NOPE'")
	assert.Contains(t, text, "ORDER_TBL")
	assert.Contains(t, text, "Usage: :complete PREFIX")
	assert.Contains(t, text, "entries:")
	assert.Contains(t, text, "Reload is not available")
	assert.Contains(t, text, "Unknown command :bogus")
	assert.Contains(t, text, "Token too long")
	assert.NotContains(t, text, "SELECT * FROM customers", "input after :quit is ignored")
}

func TestReloadCommand(t *testing.T) {
	e, descs := loadedEngine(t)
	missing := filepath.Join(t.TempDir(), "gone.csv")

	calls := 0
	reload := func() ([]source.Report, []string, error) {
		calls++
		if calls == 2 {
			return nil, nil, errors.New("config broken")
		}
		return e.Load(descs), []string{missing}, nil
	}

	var out bytes.Buffer
	h := NewInputHandlerIO(e, Options{Reload: reload}, strings.NewReader(":reload\n:r\n"), &out)
	require.NoError(t, h.Start())

	text := out.String()
	assert.Equal(t, 2, calls)
	assert.Contains(t, text, "Source file not found: "+missing)
	assert.Contains(t, text, "[tsv, utf-8] 2 registered")
	assert.Contains(t, text, "Reload failed: config broken")
	assert.Equal(t, 2, e.Stats().Loads)
}

func TestLastLineWithoutNewline(t *testing.T) {
	e, _ := loadedEngine(t)
	var out bytes.Buffer
	h := NewInputHandlerIO(e, Options{ShowTiming: true}, strings.NewReader("CUST"), &out)
	require.NoError(t, h.Start())
	assert.Contains(t, out.String(), "SELECT * FROM customers")
}
