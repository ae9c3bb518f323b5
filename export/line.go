package export

import "strings"

// Separators of the tab-delimited format. Field values are written as is:
// a value containing a tab or newline breaks the column layout.
const (
	tab       = "\t"
	lineBreak = "\n"
	semicolon = ";"
)

// BuildLine renders one attribute line: the label followed by one column per
// item, in item order. extract returns "" for a missing value, so the column
// count always equals len(items).
func BuildLine[T any](label string, items []T, extract func(T) string) string {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(tab)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(tab)
		}
		sb.WriteString(extract(item))
	}
	sb.WriteString(lineBreak)
	return sb.String()
}

// valueLine renders a single-valued attribute line.
func valueLine(label, value string) string {
	return label + tab + value + lineBreak
}

// headerLine renders a section header.
func headerLine(k Key) string {
	return k.Label() + lineBreak
}
