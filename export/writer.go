package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/c360studio/isatab/isa"
	"golang.org/x/text/encoding"
)

// DefaultDateLayout renders dates as ISO-8601 calendar dates.
const DefaultDateLayout = "2006-01-02"

// Options configures a Writer.
type Options struct {
	// DateLayout is the time.Format layout for date attributes.
	DateLayout string

	// Encoding is the character encoding of the output (WHATWG label, e.g.
	// "utf-8", "iso-8859-1", "utf-16le"). Empty means UTF-8.
	Encoding string
}

// Stats summarizes one written document.
type Stats struct {
	Lines   int
	Bytes   int64
	Studies int
}

// Writer serializes investigations to the ISA-Tab investigation format.
// A Writer holds no per-document state and may be reused.
type Writer struct {
	dateLayout string
	encoding   encoding.Encoding
}

// NewWriter creates a writer. It fails when the encoding is unknown.
func NewWriter(opts Options) (*Writer, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	layout := opts.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &Writer{dateLayout: layout, encoding: enc}, nil
}

// Write serializes inv to out in a single pass. Sections are written in the
// fixed order of the format: ontology source references, investigation,
// investigation publications, investigation contacts, then every study in
// insertion order. Each study is written as its STUDY section and STUDY
// DESIGN DESCRIPTORS, followed by its STUDY PUBLICATIONS and STUDY CONTACTS
// blocks; those two blocks are written even when the study has none. The
// first write error ends the pass; output already written is left in place.
func (w *Writer) Write(out io.Writer, inv *isa.Investigation) (Stats, error) {
	counter := &countingWriter{w: out}
	sink, closeSink := encodeTo(counter, w.encoding)
	s := &sectionWriter{out: sink, dateLayout: w.dateLayout}

	s.ontologySources(inv.Ontologies)
	s.investigation(inv)
	s.publications(InvestigationPublications, ScopeInvestigation, inv.Publications)
	s.contacts(InvestigationContacts, ScopeInvestigation, inv.Contacts)

	studies := 0
	for _, st := range inv.Studies() {
		if s.err != nil {
			break
		}
		s.study(st)
		if s.err == nil {
			studies++
		}
	}

	err := s.err
	if closeErr := closeSink(); closeErr != nil && err == nil {
		err = closeErr
	}
	stats := Stats{Lines: s.lines, Bytes: counter.n, Studies: studies}
	if err != nil {
		return stats, fmt.Errorf("write investigation %q: %w", inv.Identifier, err)
	}
	return stats, nil
}

// WriteFile writes inv to the file at path, creating or truncating it. The
// file is flushed and closed on every return path, including a panic while
// writing. A failed write may leave a truncated file behind.
func (w *Writer) WriteFile(path string, inv *isa.Investigation) (stats Stats, err error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("create output file: %w", err)
	}
	buf := bufio.NewWriter(f)
	defer func() {
		if flushErr := buf.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("flush %s: %w", path, flushErr)
		}
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return w.Write(buf, inv)
}

// countingWriter counts the bytes accepted by the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (c *countingWriter) WriteString(s string) (int, error) {
	n, err := io.WriteString(c.w, s)
	c.n += int64(n)
	return n, err
}
