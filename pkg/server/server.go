package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/exdict/internal/logger"
	"github.com/bastiangx/exdict/internal/utils"
	"github.com/bastiangx/exdict/pkg/config"
	"github.com/bastiangx/exdict/pkg/lookup"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultDiagnosticLimit = 50

// Options tune request validation and optional features.
type Options struct {
	MaxTokenLength int
	CompleteLimit  int
	Recorder       *logger.Recorder // nil disables "diagnostics" content
	Reload         lookup.Reloader  // nil makes "reload" fail with 500
}

// OptionsFrom copies limits from the [server] config section.
func OptionsFrom(cfg config.ServerConfig) Options {
	return Options{
		MaxTokenLength: cfg.MaxTokenLength,
		CompleteLimit:  cfg.CompleteLimit,
	}
}

// Server handles the IPC for dictionary lookups
type Server struct {
	engine lookup.IEngine
	opts   Options
	reader io.Reader

	mu     sync.Mutex
	writer io.Writer

	requestCount int
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(engine lookup.IEngine, opts Options) *Server {
	return NewServerIO(engine, opts, os.Stdin, os.Stdout)
}

// NewServerIO creates a server over arbitrary streams.
func NewServerIO(engine lookup.IEngine, opts Options, r io.Reader, w io.Writer) *Server {
	def := config.DefaultConfig().Server
	if opts.MaxTokenLength <= 0 {
		opts.MaxTokenLength = def.MaxTokenLength
	}
	if opts.CompleteLimit <= 0 {
		opts.CompleteLimit = def.CompleteLimit
	}
	return &Server{
		engine: engine,
		opts:   opts,
		reader: r,
		writer: w,
	}
}

// Start begins listening for IPC requests. It returns nil when the client
// closes its end of the stream.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	s.sendResponse(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(s.reader)
	for {
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Client closed the stream")
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleMessage(raw)
	}
}

// handleMessage decodes one message and dispatches on its action.
func (s *Server) handleMessage(raw msgpack.RawMessage) {
	var request Request
	if err := msgpack.Unmarshal(raw, &request); err != nil {
		log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "invalid msgpack request", 400)
		return
	}
	s.requestCount++

	switch request.Action {
	case "lookup":
		s.handleLookup(request)
	case "hover":
		s.handleHover(request)
	case "complete":
		s.handleComplete(request)
	case "reload":
		s.handleReload(request)
	case "stats":
		s.handleStats(request)
	case "diagnostics":
		s.handleDiagnostics(request)
	case "ping":
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case "":
		s.sendError(request.ID, "missing 'action' field", 400)
	default:
		s.sendError(request.ID, fmt.Sprintf("unknown action: %s", request.Action), 400)
	}
}

func (s *Server) tooLong(id, what, text string) bool {
	if utf8.RuneCountInString(text) <= s.opts.MaxTokenLength {
		return false
	}
	s.sendError(id, fmt.Sprintf("%s exceeds maximum length of %d characters", what, s.opts.MaxTokenLength), 400)
	log.Debugf("Rejected %s of %d bytes", what, len(text))
	return true
}

func (s *Server) handleLookup(request Request) {
	if s.tooLong(request.ID, "token", request.Token) {
		return
	}
	start := time.Now()
	result, ok := s.engine.Resolve(request.Token)
	elapsed := time.Since(start)

	response := LookupResponse{ID: request.ID, Requested: request.Token, TimeTaken: elapsed.Microseconds()}
	if ok {
		response.Found = true
		response.Key = result.UsedKey
		response.Requested = result.Requested
		response.Exact = result.Exact
		response.Value = result.Value
		response.Content = result.Render()
	}
	s.sendResponse(response)
}

func (s *Server) handleHover(request Request) {
	if request.Col < 0 {
		s.sendError(request.ID, "'col' must not be negative", 400)
		return
	}
	word := utils.WordAt(request.Line, request.Col)
	if s.tooLong(request.ID, "token", word) {
		return
	}

	response := LookupResponse{ID: request.ID, Requested: word}
	if word == "" {
		s.sendResponse(response)
		return
	}
	start := time.Now()
	result, ok := s.engine.Resolve(word)
	response.TimeTaken = time.Since(start).Microseconds()
	if ok {
		response.Found = true
		response.Key = result.UsedKey
		response.Exact = result.Exact
		response.Value = result.Value
		response.Content = result.Render()
	}
	s.sendResponse(response)
}

func (s *Server) handleComplete(request Request) {
	if request.Prefix == "" {
		s.sendError(request.ID, "missing 'prefix' parameter", 400)
		return
	}
	if s.tooLong(request.ID, "prefix", request.Prefix) {
		return
	}
	limit := request.Limit
	if limit < 1 {
		limit = s.opts.CompleteLimit
	}
	keys := s.engine.Complete(request.Prefix, limit)
	if keys == nil {
		keys = []string{}
	}
	s.sendResponse(CompleteResponse{ID: request.ID, Keys: keys, Count: len(keys)})
}

func (s *Server) handleReload(request Request) {
	response, err := s.reload(request.ID, "ok")
	if err != nil {
		s.sendError(request.ID, err.Error(), 500)
		return
	}
	s.sendResponse(response)
}

// PushReload rebuilds the dictionary and pushes an unsolicited reload
// response with status "changed". The watcher calls it from its own goroutine.
func (s *Server) PushReload() {
	response, err := s.reload("", "changed")
	if err != nil {
		log.Errorf("Reload after change failed: %v", err)
		s.sendError("", err.Error(), 500)
		return
	}
	s.sendResponse(response)
}

func (s *Server) reload(id, status string) (ReloadResponse, error) {
	if s.opts.Reload == nil {
		return ReloadResponse{}, errors.New("reload is not available")
	}
	start := time.Now()
	reports, missing, err := s.opts.Reload()
	if err != nil {
		return ReloadResponse{}, err
	}
	return ReloadResponse{
		ID:        id,
		Status:    status,
		Entries:   s.engine.Stats().Entries,
		Sources:   lo.Map(reports, func(r source.Report, _ int) SourceStatus { return statusOf(r) }),
		Missing:   missing,
		TimeTaken: time.Since(start).Milliseconds(),
	}, nil
}

func statusOf(r source.Report) SourceStatus {
	status := SourceStatus{
		Path:       r.Path,
		Format:     r.Format.String(),
		Encoding:   r.Encoding,
		Fallback:   r.EncodingFallback,
		Rows:       r.Rows,
		Registered: r.Registered,
		Replaced:   r.Replaced,
		Skipped:    r.Skipped,
		Malformed:  r.Malformed,
	}
	if r.Err != nil {
		status.Error = r.Err.Error()
	}
	return status
}

func (s *Server) handleStats(request Request) {
	stats := s.engine.Stats()
	response := StatsResponse{
		ID:            request.ID,
		Entries:       stats.Entries,
		Sources:       stats.Sources,
		FailedSources: stats.FailedSources,
		Replaced:      stats.Replaced,
		Loads:         stats.Loads,
		Requests:      s.requestCount,
		Formats:       source.FormatNames(),
	}
	if !stats.LastLoad.IsZero() {
		response.LastLoad = stats.LastLoad.Unix()
	}
	s.sendResponse(response)
}

func (s *Server) handleDiagnostics(request Request) {
	limit := request.Limit
	if limit < 1 {
		limit = defaultDiagnosticLimit
	}
	lines := []string{}
	if s.opts.Recorder != nil {
		for _, entry := range s.opts.Recorder.Entries(limit) {
			lines = append(lines, entry.String())
		}
	}
	s.sendResponse(DiagnosticsResponse{ID: request.ID, Lines: lines, Count: len(lines)})
}

// sendResponse marshals the response and writes it as one msgpack message.
// Writes are serialized so pushed reloads never interleave with replies.
func (s *Server) sendResponse(response any) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		log.Errorf("Marshaling response: %v", err)
		data, _ = msgpack.Marshal(ErrorResponse{Error: "internal server error", Code: 500})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(data); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
