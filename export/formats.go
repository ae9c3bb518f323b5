// Package export serializes isa investigations to the tab-delimited ISA-Tab
// investigation format.
//
// A section is an ordered list of attribute lines. Each line carries a label
// followed by one column per entity of the section (one per ontology, per
// publication, per contact...). Comments of list entities are discovered at
// write time and aligned into "Comment[<type>]" rows with the same columns.
//
// Writer only produces investigation files. TableColumns lays out the rows of
// study and assay tables for callers that write those files themselves; the
// investigation writer does not use it.
package export

import (
	"strings"
	"unicode"
)

// Format identifies one of the ISA-Tab file kinds.
type Format string

const (
	// FormatInvestigation is the investigation file written by Writer.
	FormatInvestigation Format = "investigation"

	// FormatStudy is a study table file.
	FormatStudy Format = "study"

	// FormatAssay is an assay table file.
	FormatAssay Format = "assay"
)

// FormatInfo provides metadata about an ISA-Tab file kind.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the MIME type of the file.
	MIMEType string

	// Prefix is the conventional file name prefix.
	Prefix string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all ISA-Tab file kinds.
var FormatRegistry = map[Format]FormatInfo{
	FormatInvestigation: {
		Name:        FormatInvestigation,
		MIMEType:    "text/tab-separated-values",
		Prefix:      "i_",
		Extension:   ".txt",
		Description: "ISA-Tab investigation file",
	},
	FormatStudy: {
		Name:        FormatStudy,
		MIMEType:    "text/tab-separated-values",
		Prefix:      "s_",
		Extension:   ".txt",
		Description: "ISA-Tab study table",
	},
	FormatAssay: {
		Name:        FormatAssay,
		MIMEType:    "text/tab-separated-values",
		Prefix:      "a_",
		Extension:   ".txt",
		Description: "ISA-Tab assay table",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// FileName returns the conventional file name for a document of the given
// format, e.g. "i_INV-1.txt". Characters outside letters, digits, '.', '-'
// and '_' are replaced by '_'; an empty name falls back to the format name.
func FileName(format Format, name string) string {
	info, ok := GetFormatInfo(format)
	if !ok {
		info = FormatRegistry[FormatInvestigation]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, name)
	if name == "" {
		name = string(info.Name)
	}
	return info.Prefix + name + info.Extension
}
