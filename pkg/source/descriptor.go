// Package source loads delimited tabular files (CSV/TSV) into a dictionary.
//
// Each file is described by a Descriptor: which column holds the key, which
// holds the content, which optional columns hold descriptions, the character
// encoding and whether the first row is a header. Loading never fails as a
// whole; problems are turned into a Report plus diagnostics and the loader
// moves on to the next file.
package source

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Descriptor configures one tabular source.
type Descriptor struct {
	Path        string
	IDColumn    int
	ValueColumn int
	Description Columns
	Encoding    string
	HasHeader   bool
}

// Validate checks the required column indices.
func (d Descriptor) Validate() error {
	if d.IDColumn < 0 {
		return fmt.Errorf("%w: id column %d is negative", ErrInvalidDescriptor, d.IDColumn)
	}
	if d.ValueColumn < 0 {
		return fmt.Errorf("%w: value column %d is negative", ErrInvalidDescriptor, d.ValueColumn)
	}
	return nil
}

// minFields is how many fields a row needs for the id and value columns.
func (d Descriptor) minFields() int {
	return max(d.IDColumn, d.ValueColumn) + 1
}

// Columns selects the description text of a row.
// It is either a SingleColumn or a ColumnList; nil means no description.
type Columns interface {
	// Extract returns the trimmed description text for row, "" when there is none.
	Extract(row []string) string
	// Indices lists the configured column indices in order.
	Indices() []int
	isColumns()
}

// SingleColumn takes the description from one column.
type SingleColumn int

func (c SingleColumn) Extract(row []string) string {
	return field(row, int(c))
}

func (c SingleColumn) Indices() []int {
	return []int{int(c)}
}

func (SingleColumn) isColumns() {}

// ColumnList takes the description from several columns, in the given order.
// Out-of-range and blank columns are skipped; the rest are joined with a blank line.
type ColumnList []int

func (c ColumnList) Extract(row []string) string {
	parts := lo.FilterMap(c, func(idx int, _ int) (string, bool) {
		text := field(row, idx)
		return text, text != ""
	})
	return strings.Join(parts, DescriptionJoiner)
}

func (c ColumnList) Indices() []int {
	out := make([]int, len(c))
	copy(out, c)
	return out
}

func (ColumnList) isColumns() {}

// field returns the trimmed text at idx, or "" when idx is out of range.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
