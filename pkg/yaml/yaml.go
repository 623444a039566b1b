// Package yaml decodes a practical subset of YAML 1.1 into generic Go
// values.
//
// Plain scalars go through the core-schema cascade (null, bool, int, float,
// timestamp, string); quoted and block scalars always decode as strings.
// Mappings decode to *Map, which preserves document order and supports
// composite keys; sequences decode to []any. The !!set, !!omap and !!binary
// tags have built-in support, and the tag vocabulary is extensible through a
// Registry.
//
// # Thread Safety
//
// The package-level functions are safe for concurrent use by multiple
// goroutines; each call creates its own decoder with no shared mutable
// state. A Decoder instance is not safe for concurrent use. Registries must
// be fully populated before decoding starts and are read-only afterwards.
//
// # Decoding APIs
//
//   - Decode(string) - decodes a single-document string
//   - DecodeAll(string) - decodes every document of a multi-document stream
//   - DecodeReader(io.Reader) - like Decode, reading the input first
//   - NewDecoder(string) - lazy document-at-a-time decoding via Next
//   - Validate(string) - syntax check without building values
//
// # Example
//
//	v, err := yaml.Decode("name: Alice\nage: 30\n")
//	if err != nil {
//	    // handle error
//	}
//	m := v.(*yaml.Map)
//	name, _ := m.Get("name") // "Alice"
package yaml

import (
	"fmt"
	"io"

	"github.com/driftware/drift-yaml/internal/parser"
	"github.com/driftware/drift-yaml/internal/scanner"
)

// LexicalError reports a malformed token; see the scanner for the cases.
type LexicalError = scanner.LexicalError

// StructuralError reports a malformed document shape or a constraint
// violation such as a duplicate !!set key.
type StructuralError = parser.StructuralError

// Decode decodes a single YAML document. Input containing more than one
// document is an error; empty input decodes to nil.
func Decode(input string) (any, error) {
	d := NewDecoder(input)
	v, err := d.Next()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := d.Next(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("yaml: expected a single document")
	}
	return v, nil
}

// DecodeAll decodes every document in the stream, in order.
func DecodeAll(input string) ([]any, error) {
	d := NewDecoder(input)
	var docs []any
	for {
		v, err := d.Next()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
}

// DecodeReader decodes a single document from r.
func DecodeReader(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return Decode(string(data))
}

// Validate checks the syntax of every document without resolving values.
func Validate(input string) error {
	st := parser.NewStream(input)
	for {
		_, err := st.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
