package source

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

// maxLineSize bounds a single TSV line.
const maxLineSize = 1 << 20

// rowReader yields records together with the 1-based line they start on.
type rowReader interface {
	Read() (record []string, line int, err error)
}

func newRowReader(r io.Reader, format FileFormat) rowReader {
	if format == FormatTSV {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		return &tsvRows{scanner: scanner}
	}

	reader := csv.NewReader(r)
	reader.Comma = format.Delimiter()
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return &csvRows{reader: reader}
}

// csvRows follows RFC 4180 quoting, so a quoted field may span lines.
type csvRows struct {
	reader *csv.Reader
}

func (c *csvRows) Read() ([]string, int, error) {
	record, err := c.reader.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := c.reader.FieldPos(0)
	return record, line, nil
}

// tsvRows splits each line on tabs. Quotes carry no meaning, a record
// never spans lines.
type tsvRows struct {
	scanner *bufio.Scanner
	line    int
}

func (t *tsvRows) Read() ([]string, int, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, t.line, err
		}
		return nil, t.line, io.EOF
	}
	t.line++
	text := strings.TrimSuffix(t.scanner.Text(), "\r")
	return strings.Split(text, "\t"), t.line, nil
}
