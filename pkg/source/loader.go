package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/exdict/internal/logger"
	"github.com/charmbracelet/log"
	"golang.org/x/text/transform"
)

// Inserter receives entries. A later Put for the same key replaces the earlier value.
type Inserter interface {
	Put(key, value string) (replaced bool, err error)
}

// Report describes what one descriptor contributed.
type Report struct {
	Path             string
	Format           FileFormat
	Encoding         string
	EncodingFallback bool
	Rows             int // data rows parsed, header excluded
	Registered       int
	Replaced         int
	Skipped          int
	Malformed        int
	Duration         time.Duration
	Err              error
}

// OK reports whether the source was read to the end.
func (r Report) OK() bool {
	return r.Err == nil
}

// Loader reads sources into an Inserter. It never returns an error to the
// caller; every problem is logged to the sink and summarized in the Report.
type Loader struct {
	sink logger.Sink
}

// NewLoader creates a loader writing diagnostics to sink. A nil sink discards them.
func NewLoader(sink logger.Sink) *Loader {
	if sink == nil {
		sink = logger.Discard()
	}
	return &Loader{sink: sink}
}

// LoadAll loads every descriptor in order. Later sources overwrite keys set by
// earlier ones. A failing source does not stop the others.
func (l *Loader) LoadAll(descs []Descriptor, into Inserter) []Report {
	reports := make([]Report, 0, len(descs))
	for _, desc := range descs {
		reports = append(reports, l.Load(desc, into))
	}
	return reports
}

// Load reads one source into into.
func (l *Loader) Load(desc Descriptor, into Inserter) (report Report) {
	start := time.Now()
	report = Report{
		Path:   desc.Path,
		Format: DetectFormat(desc.Path),
	}
	defer func() {
		report.Duration = time.Since(start)
	}()

	if err := desc.Validate(); err != nil {
		report.Err = err
		l.sink.Append(log.ErrorLevel, "skipping source", "path", desc.Path, "err", err)
		return report
	}

	decoder, canonical, err := Decoder(desc.Encoding)
	report.Encoding = canonical
	if err != nil {
		report.EncodingFallback = true
		l.sink.Append(log.WarnLevel, "falling back to utf-8", "path", desc.Path, "encoding", desc.Encoding, "err", err)
	}

	file, err := os.Open(desc.Path)
	if err != nil {
		report.Err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		l.sink.Append(log.ErrorLevel, "cannot open source", "path", desc.Path, "err", err)
		return report
	}
	defer file.Close()

	l.sink.Append(log.InfoLevel, "opening source",
		"path", desc.Path,
		"format", report.Format,
		"encoding", canonical,
		"header", desc.HasHeader)

	rows := newRowReader(transform.NewReader(file, decoder), report.Format)

	headerPending := desc.HasHeader
	for {
		record, line, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.Malformed++
				report.Skipped++
				headerPending = false
				l.sink.Append(log.WarnLevel, "skipping unparsable row",
					"path", desc.Path, "line", parseErr.Line, "err", fmt.Errorf("%w: %v", ErrMalformedRow, parseErr.Err))
				continue
			}
			report.Err = fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
			l.sink.Append(log.ErrorLevel, "read failed, keeping rows read so far", "path", desc.Path, "err", err)
			break
		}

		if blank(record) {
			continue
		}
		if headerPending {
			headerPending = false
			continue
		}

		report.Rows++
		l.register(desc, record, line, into, &report)
	}

	l.sink.Append(log.InfoLevel, "source loaded",
		"path", desc.Path,
		"rows", report.Rows,
		"registered", report.Registered,
		"skipped", report.Skipped)
	return report
}

// register extracts one row and puts it into the dictionary.
func (l *Loader) register(desc Descriptor, record []string, line int, into Inserter, report *Report) {
	if len(record) < desc.minFields() {
		report.Malformed++
		report.Skipped++
		l.sink.Append(log.WarnLevel, "skipping short row",
			"path", desc.Path, "line", line, "fields", len(record),
			"err", fmt.Errorf("%w: need %d fields", ErrMalformedRow, desc.minFields()))
		return
	}

	id := field(record, desc.IDColumn)
	value := field(record, desc.ValueColumn)
	if id == "" || value == "" {
		report.Skipped++
		l.sink.Append(log.DebugLevel, "skipping row with empty id or value", "path", desc.Path, "line", line)
		return
	}

	description := ""
	if desc.Description != nil {
		description = desc.Description.Extract(record)
	}

	replaced, err := into.Put(id, Compose(value, description))
	if err != nil {
		report.Skipped++
		l.sink.Append(log.WarnLevel, "failed to register entry", "path", desc.Path, "line", line, "id", id, "err", err)
		return
	}
	report.Registered++
	if replaced {
		report.Replaced++
	}
	l.sink.Append(log.DebugLevel, "registered entry", "id", id, "line", line, "replaced", replaced)
}

// blank reports whether every field of a record is empty or whitespace.
func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
