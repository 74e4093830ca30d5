package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bastiangx/exdict/internal/utils"
	"github.com/bastiangx/exdict/pkg/source"
	"github.com/samber/lo"
)

// SourceConfig is one [[sources]] entry.
type SourceConfig struct {
	Path               string      `toml:"path"`
	IDColumn           int         `toml:"id_column"`
	ValueColumn        int         `toml:"value_column"`
	DescriptionColumns *ColumnSpec `toml:"description_columns"`
	Encoding           string      `toml:"encoding,omitempty"`
	HasHeader          *bool       `toml:"has_header"`
}

// Header reports whether the first row is a header. Unset means true.
func (s SourceConfig) Header() bool {
	return s.HasHeader == nil || *s.HasHeader
}

// Descriptor converts the entry, resolving Path against baseDir.
func (s SourceConfig) Descriptor(baseDir string) source.Descriptor {
	desc := source.Descriptor{
		Path:        utils.ResolveAgainst(baseDir, s.Path),
		IDColumn:    s.IDColumn,
		ValueColumn: s.ValueColumn,
		Encoding:    s.Encoding,
		HasHeader:   s.Header(),
	}
	if s.DescriptionColumns != nil {
		desc.Description = s.DescriptionColumns.Columns()
	}
	return desc
}

// Descriptors converts every [[sources]] entry in file order.
func (c *Config) Descriptors(baseDir string) []source.Descriptor {
	return lo.Map(c.Sources, func(s SourceConfig, _ int) source.Descriptor {
		return s.Descriptor(baseDir)
	})
}

// MissingSources lists resolved source paths that are not readable files.
func (c *Config) MissingSources(baseDir string) []string {
	return lo.FilterMap(c.Sources, func(s SourceConfig, _ int) (string, bool) {
		path := utils.ResolveAgainst(baseDir, s.Path)
		return path, !utils.IsReadableFile(path)
	})
}

// ColumnSpec is the description_columns value: a single integer or an array of integers.
type ColumnSpec struct {
	single *int
	list   []int
}

// SingleColumnSpec selects one description column.
func SingleColumnSpec(idx int) *ColumnSpec {
	return &ColumnSpec{single: &idx}
}

// ListColumnSpec selects several description columns in order.
func ListColumnSpec(idx ...int) *ColumnSpec {
	return &ColumnSpec{list: append([]int{}, idx...)}
}

// Columns returns the source selector, nil when nothing is configured.
func (c *ColumnSpec) Columns() source.Columns {
	switch {
	case c == nil:
		return nil
	case c.single != nil:
		return source.SingleColumn(*c.single)
	case c.list != nil:
		return source.ColumnList(append([]int{}, c.list...))
	}
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (c *ColumnSpec) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case int64:
		n := int(v)
		c.single, c.list = &n, nil
		return nil
	case []any:
		list := make([]int, 0, len(v))
		for i, item := range v {
			n, ok := item.(int64)
			if !ok {
				return fmt.Errorf("description_columns[%d]: expected integer, got %T", i, item)
			}
			list = append(list, int(n))
		}
		c.single, c.list = nil, list
		return nil
	}
	return fmt.Errorf("description_columns: expected integer or array of integers, got %T", data)
}

// MarshalTOML implements toml.Marshaler.
func (c ColumnSpec) MarshalTOML() ([]byte, error) {
	if c.single != nil {
		return []byte(strconv.Itoa(*c.single)), nil
	}
	parts := lo.Map(c.list, func(n int, _ int) string { return strconv.Itoa(n) })
	return []byte("[" + strings.Join(parts, ", ") + "]"), nil
}
