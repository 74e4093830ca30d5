package source

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileFormat represents the delimited layouts a source can have
type FileFormat int

const (
	FormatCSV FileFormat = iota // comma separated
	FormatTSV                   // tab separated
)

// FormatInfo contains metadata about a source format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	Delimiter   rune
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatCSV: {
		Format:      FormatCSV,
		Description: "Comma Separated Values",
		Extensions:  []string{".csv"},
		Delimiter:   ',',
	},
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab Separated Values",
		Extensions:  []string{".tsv"},
		Delimiter:   '\t',
	},
}

// DetectFormat picks the format from the file extension, ignoring case.
// Names that match no registered extension, or have none, are CSV.
func DetectFormat(path string) FileFormat {
	ext := filepath.Ext(path)
	for _, info := range ListSupportedFormats() {
		for _, candidate := range info.Extensions {
			if strings.EqualFold(ext, candidate) {
				return info.Format
			}
		}
	}
	return FormatCSV
}

// Delimiter returns the field separator for the format.
func (f FileFormat) Delimiter() rune {
	if info, ok := supportedFormats[f]; ok {
		return info.Delimiter
	}
	return ','
}

func (f FileFormat) String() string {
	switch f {
	case FormatTSV:
		return "tsv"
	default:
		return "csv"
	}
}

// ListSupportedFormats returns all supported formats ordered by FileFormat.
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, info := range supportedFormats {
		formats = append(formats, info)
	}
	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Format < formats[j].Format
	})
	return formats
}

// FormatNames lists the short names of the supported formats, e.g. for status output.
func FormatNames() []string {
	formats := ListSupportedFormats()
	names := make([]string, len(formats))
	for i, info := range formats {
		names[i] = info.Format.String()
	}
	return names
}
