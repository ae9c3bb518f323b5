package export

import (
	"fmt"

	"github.com/c360studio/isatab/isa"
)

// TableColumns lays out the ordered headers of a study or assay table object
// as a header row and a value row. A header carries up to three values: the
// value itself, its term source and its term accession; the last two go
// under "Term Source REF" and "Term Accession Number" columns.
func TableColumns(obj isa.TableObject) (headers, values []string, err error) {
	for _, h := range obj.Headers() {
		switch n := len(h.Values); {
		case n == 0:
			headers = append(headers, h.Label)
			values = append(values, "")
		case n <= 3:
			labels := []string{h.Label, TermSourceREF.Label(), TermAccessionNumber.Label()}
			headers = append(headers, labels[:n]...)
			values = append(values, h.Values...)
		default:
			return nil, nil, fmt.Errorf("table header %q has %d values, at most 3 allowed", h.Label, n)
		}
	}
	return headers, values, nil
}
