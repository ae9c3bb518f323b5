package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the output encoding when none is configured.
const DefaultEncoding = "utf-8"

// ErrUnknownEncoding is returned for an encoding label htmlindex does not know.
var ErrUnknownEncoding = errors.New("unknown character encoding")

// LookupEncoding resolves a WHATWG encoding label. An empty label selects
// UTF-8. The returned encoding is nil for UTF-8, which needs no transcoding.
func LookupEncoding(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, label)
	}
	if name, _ := htmlindex.Name(enc); name == DefaultEncoding {
		return nil, nil
	}
	return enc, nil
}

// encodeTo wraps w with an encoder for enc. The returned close function
// flushes any bytes the encoder still holds; it does not close w.
func encodeTo(w io.Writer, enc encoding.Encoding) (io.Writer, func() error) {
	if enc == nil {
		return w, func() error { return nil }
	}
	ew := enc.NewEncoder().Writer(w)
	return ew, func() error {
		if c, ok := ew.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}
}
