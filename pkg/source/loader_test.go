package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/exdict/internal/logger"
	"github.com/bastiangx/exdict/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func load(t *testing.T, descs ...Descriptor) (*dictionary.Dictionary, []Report) {
	t.Helper()
	b := dictionary.NewBuilder()
	reports := NewLoader(nil).LoadAll(descs, b)
	return b.Build(), reports
}

func lookup(t *testing.T, d *dictionary.Dictionary, key string) string {
	t.Helper()
	v, ok := d.Lookup(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestLoadComposesValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "orders.csv", []byte(
		"id,sql,desc\n"+
			"ORD001, SELECT 1 ,desc text\n"+
			"\n"+
			"ORD002,SELECT 2,\n"+
			"ORD003,\"SELECT a, b FROM t\",\"multi\nline\"\n"))

	d, reports := load(t, Descriptor{
		Path:        path,
		IDColumn:    0,
		ValueColumn: 1,
		Description: SingleColumn(2),
		HasHeader:   true,
	})

	require.Len(t, reports, 1)
	r := reports[0]
	require.NoError(t, r.Err)
	assert.Equal(t, 3, r.Rows)
	assert.Equal(t, 3, r.Registered)
	assert.Equal(t, UTF8, r.Encoding)
	assert.Equal(t, FormatCSV, r.Format)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, "SELECT 1"+Separator+"desc text", lookup(t, d, "ORD001"))
	assert.Equal(t, "SELECT 2", lookup(t, d, "ORD002"))
	assert.Equal(t, "SELECT a, b FROM t"+Separator+"multi\nline", lookup(t, d, "ORD003"))
	_, ok := d.Lookup("id")
	assert.False(t, ok, "header must not be registered")
}

func TestLoadHeaderSkip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "three.csv", []byte("id,value\nA,1\nB,2\n"))

	d, _ := load(t, Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, HasHeader: true})
	assert.Equal(t, 2, d.Len())

	d, _ = load(t, Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, HasHeader: false})
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, "value", lookup(t, d, "id"))
}

func TestLoadMultiColumnDescription(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "multi.tsv", []byte(
		"id\tsql\td1\td2\td3\n"+
			"ORD001\tSELECT 1\tA\t\tB\n"+
			"ORD002\tSELECT 2\t\t\t\n"+
			"ORD003\tSELECT 3\tonly\n"))

	d, reports := load(t, Descriptor{
		Path:        path,
		IDColumn:    0,
		ValueColumn: 1,
		Description: ColumnList{2, 3, 4, 7},
		HasHeader:   true,
	})

	assert.Equal(t, FormatTSV, reports[0].Format)
	assert.Equal(t, "SELECT 1"+Separator+"A"+DescriptionJoiner+"B", lookup(t, d, "ORD001"))
	assert.Equal(t, "SELECT 2", lookup(t, d, "ORD002"))
	assert.Equal(t, "SELECT 3"+Separator+"only", lookup(t, d, "ORD003"))
}

func TestLoadSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.csv", []byte(
		"ORD001,SELECT 1\n"+
			"SHORT\n"+
			",SELECT 2\n"+
			"ORD003,   \n"+
			"ORD004,SELECT 4\n"))

	rec := logger.NewRecorder(50, log.DebugLevel)
	b := dictionary.NewBuilder()
	r := NewLoader(rec).Load(Descriptor{Path: path, IDColumn: 0, ValueColumn: 1}, b)
	d := b.Build()

	require.NoError(t, r.Err)
	assert.Equal(t, 5, r.Rows)
	assert.Equal(t, 2, r.Registered)
	assert.Equal(t, 3, r.Skipped)
	assert.Equal(t, 1, r.Malformed)
	assert.Equal(t, 2, d.Len())

	var warned bool
	for _, e := range rec.Entries(0) {
		if e.Level == log.WarnLevel && e.Message == "skipping short row" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestLoadTSVIgnoresQuotes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sql.tsv", []byte(
		"id\tsql\n"+
			"ORD001\t\"users\".id = 1\n"+
			"ORD002\tSELECT 2\r\n"+
			"ORD003\tSELECT 3\n"))

	d, reports := load(t, Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, HasHeader: true})

	r := reports[0]
	require.NoError(t, r.Err)
	assert.Equal(t, FormatTSV, r.Format)
	assert.Equal(t, 3, r.Rows)
	assert.Equal(t, 3, r.Registered)
	assert.Zero(t, r.Malformed)
	assert.Equal(t, `"users".id = 1`, lookup(t, d, "ORD001"))
	assert.Equal(t, "SELECT 2", lookup(t, d, "ORD002"))
	assert.Equal(t, "SELECT 3", lookup(t, d, "ORD003"))
}

func TestLoadSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "blank.csv", []byte("   \nid,value\n\nA,1\n   \n , \nB,2\n"))
	tsvPath := writeFile(t, dir, "blank.tsv", []byte("id\tvalue\n\t\nA\t1\n   \n\nB\t2\n"))

	for _, path := range []string{csvPath, tsvPath} {
		rec := logger.NewRecorder(50, log.DebugLevel)
		b := dictionary.NewBuilder()
		r := NewLoader(rec).Load(Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, HasHeader: true}, b)
		d := b.Build()

		require.NoError(t, r.Err, path)
		assert.Equal(t, 2, r.Rows, path)
		assert.Equal(t, 2, r.Registered, path)
		assert.Zero(t, r.Skipped, path)
		assert.Zero(t, r.Malformed, path)
		assert.Equal(t, "1", lookup(t, d, "A"))
		for _, e := range rec.Entries(0) {
			assert.NotEqual(t, log.WarnLevel, e.Level, "%s: %s", path, e.Message)
		}
	}
}

func TestLoadMissingFileDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", []byte("ORD001,SELECT 1\n"))

	rec := logger.NewRecorder(50, log.DebugLevel)
	b := dictionary.NewBuilder()
	reports := NewLoader(rec).LoadAll([]Descriptor{
		{Path: filepath.Join(dir, "missing.csv"), IDColumn: 0, ValueColumn: 1},
		{Path: good, IDColumn: 0, ValueColumn: 1},
	}, b)
	d := b.Build()

	require.Len(t, reports, 2)
	assert.True(t, errors.Is(reports[0].Err, ErrSourceUnavailable))
	assert.False(t, reports[0].OK())
	assert.Equal(t, 0, reports[0].Registered)
	assert.True(t, reports[1].OK())
	assert.Equal(t, "SELECT 1", lookup(t, d, "ORD001"))

	assert.Equal(t, log.ErrorLevel, rec.Entries(0)[0].Level)
}

func TestLoadUnreadableSource(t *testing.T) {
	dir := t.TempDir()
	r := NewLoader(nil).Load(Descriptor{Path: dir, IDColumn: 0, ValueColumn: 1}, dictionary.NewBuilder())
	assert.True(t, errors.Is(r.Err, ErrSourceUnavailable))
}

func TestLoadUnsupportedEncodingFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.csv", []byte("ORD001,SELECT 1\nORD002,SELECT 2\n"))

	d, reports := load(t, Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, Encoding: "klingon"})
	require.NoError(t, reports[0].Err)
	assert.True(t, reports[0].EncodingFallback)
	assert.Equal(t, UTF8, reports[0].Encoding)
	assert.Equal(t, 2, d.Len())
}

func TestLoadJapaneseEncodings(t *testing.T) {
	dir := t.TempDir()
	text := "コード,内容,説明\n注文001,SELECT * FROM 注文,受注テーブル\n"

	sjis, err := japanese.ShiftJIS.NewEncoder().String(text)
	require.NoError(t, err)
	euc, err := japanese.EUCJP.NewEncoder().String(text)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		data     string
		encoding string
	}{
		{"sjis.csv", sjis, "Shift-JIS"},
		{"cp932.csv", sjis, "cp932"},
		{"euc.csv", euc, "EUC_JP"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, []byte(tc.data))
			d, reports := load(t, Descriptor{
				Path:        path,
				IDColumn:    0,
				ValueColumn: 1,
				Description: SingleColumn(2),
				Encoding:    tc.encoding,
				HasHeader:   true,
			})
			require.NoError(t, reports[0].Err)
			assert.False(t, reports[0].EncodingFallback)
			assert.Equal(t, "SELECT * FROM 注文"+Separator+"受注テーブル", lookup(t, d, "注文001"))
		})
	}
}

func TestLoadStripsUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("ORD001,SELECT 1\n")...))

	d, _ := load(t, Descriptor{Path: path, IDColumn: 0, ValueColumn: 1})
	assert.Equal(t, "SELECT 1", lookup(t, d, "ORD001"))
}

func TestLoadOverwriteLaw(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", []byte("ORD001,FROM A\nORD002,ONLY A\n"))
	b := writeFile(t, dir, "b.csv", []byte("ORD001,FROM B\n"))

	d, reports := load(t,
		Descriptor{Path: a, IDColumn: 0, ValueColumn: 1},
		Descriptor{Path: b, IDColumn: 0, ValueColumn: 1},
	)
	assert.Equal(t, "FROM B", lookup(t, d, "ORD001"))
	assert.Equal(t, "ONLY A", lookup(t, d, "ORD002"))
	assert.Equal(t, 1, reports[1].Replaced)
}

func TestLoadIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "same.csv", []byte("ORD001,SELECT 1,d\nORD002,SELECT 2,\n"))
	desc := Descriptor{Path: path, IDColumn: 0, ValueColumn: 1, Description: SingleColumn(2)}

	once, _ := load(t, desc)
	twice, _ := load(t, desc, desc)

	assert.Equal(t, once.Len(), twice.Len())
	once.Each(func(k, v string) bool {
		assert.Equal(t, v, lookup(t, twice, k))
		return true
	})
}

func TestLoadInvalidDescriptor(t *testing.T) {
	_, reports := load(t, Descriptor{Path: "whatever.csv", IDColumn: -1, ValueColumn: 1})
	assert.True(t, errors.Is(reports[0].Err, ErrInvalidDescriptor))
}

type failingInserter struct{ calls int }

func (f *failingInserter) Put(string, string) (bool, error) {
	f.calls++
	return false, errors.New("boom")
}

func TestLoadRegistrationFailureContinues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "x.csv", []byte("A,1\nB,2\n"))

	into := &failingInserter{}
	r := NewLoader(nil).Load(Descriptor{Path: path, IDColumn: 0, ValueColumn: 1}, into)
	assert.NoError(t, r.Err)
	assert.Equal(t, 2, into.calls)
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, 0, r.Registered)
}
