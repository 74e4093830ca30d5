// Package cli is an interactive lookup prompt for debugging dictionaries.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/exdict/internal/utils"
	"github.com/bastiangx/exdict/pkg/lookup"
	"github.com/charmbracelet/log"
)

// Options configure the prompt.
type Options struct {
	MaxTokenLength int
	CompleteLimit  int
	ShowTiming     bool
	Reload         lookup.Reloader // nil disables :reload
}

// InputHandler reads keys from stdin and prints what the dictionary holds for them.
type InputHandler struct {
	engine lookup.IEngine
	opts   Options
	in     io.Reader
	out    io.Writer
}

// NewInputHandler creates a handler over stdin/stdout.
func NewInputHandler(engine lookup.IEngine, opts Options) *InputHandler {
	return NewInputHandlerIO(engine, opts, os.Stdin, os.Stdout)
}

// NewInputHandlerIO creates a handler over arbitrary streams.
func NewInputHandlerIO(engine lookup.IEngine, opts Options, in io.Reader, out io.Writer) *InputHandler {
	if opts.MaxTokenLength <= 0 {
		opts.MaxTokenLength = 128
	}
	if opts.CompleteLimit <= 0 {
		opts.CompleteLimit = 10
	}
	return &InputHandler{engine: engine, opts: opts, in: in, out: out}
}

// Start runs the prompt until input ends or :quit is entered.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, keyStyle.Render("exdict CLI"))
	fmt.Fprintln(h.out, mutedStyle.Render(helpText))
	reader := bufio.NewReader(h.in)

	for {
		fmt.Fprint(h.out, promptStyle.Render("> "))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		line = strings.TrimSpace(line)
		if line != "" && !h.handleInput(line) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(h.out)
			return nil
		}
	}
}

// handleInput processes one line. It returns false when the prompt should stop.
func (h *InputHandler) handleInput(line string) bool {
	if strings.HasPrefix(line, ":") {
		return h.handleCommand(line)
	}

	if utf8.RuneCountInString(line) > h.opts.MaxTokenLength {
		h.warnf("Token too long: %s", utils.Truncate(line, 32))
		return true
	}

	start := time.Now()
	res, ok := h.engine.Resolve(line)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for token '%s'", elapsed, line)

	if !ok {
		h.warnf("No entry for '%s'", line)
		return true
	}
	fmt.Fprintln(h.out, renderResult(res))
	if h.opts.ShowTiming {
		fmt.Fprintln(h.out, mutedStyle.Render(fmt.Sprintf("(%v)", elapsed)))
	}
	return true
}

func (h *InputHandler) handleCommand(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":q", ":quit", ":exit":
		return false
	case ":help", ":h":
		fmt.Fprintln(h.out, helpText)
	case ":stats":
		fmt.Fprintln(h.out, renderStats(h.engine.Stats()))
	case ":complete", ":c":
		if arg == "" {
			h.warnf("Usage: :complete PREFIX")
			return true
		}
		keys := h.engine.Complete(arg, h.opts.CompleteLimit)
		if len(keys) == 0 {
			h.warnf("No keys start with '%s'", arg)
			return true
		}
		fmt.Fprintln(h.out, renderKeys(keys))
	case ":reload", ":r":
		h.reload()
	default:
		h.warnf("Unknown command %s, try :help", cmd)
	}
	return true
}

func (h *InputHandler) reload() {
	if h.opts.Reload == nil {
		h.warnf("Reload is not available")
		return
	}
	reports, missing, err := h.opts.Reload()
	if err != nil {
		h.warnf("Reload failed: %v", err)
		return
	}
	for _, path := range missing {
		h.warnf("Source file not found: %s", path)
	}
	for _, r := range reports {
		fmt.Fprintln(h.out, renderReport(r))
	}
	fmt.Fprintln(h.out, renderStats(h.engine.Stats()))
}

func (h *InputHandler) warnf(format string, args ...any) {
	fmt.Fprintln(h.out, warnStyle.Render(fmt.Sprintf(format, args...)))
}
