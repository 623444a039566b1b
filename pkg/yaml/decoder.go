package yaml

import (
	"io"

	"github.com/driftware/drift-yaml/internal/parser"
)

// Decoder yields the documents of a YAML stream one at a time. Decoding is
// lazy: each call to Next parses and resolves exactly one document, so the
// cost of documents after the last one requested is never paid.
//
// A Decoder is single-use and not safe for concurrent use.
type Decoder struct {
	stream  *parser.Stream
	reg     *Registry
	skipBad bool
	readErr error
}

// NewDecoder creates a decoder over the given source text, using the
// package-level registry.
func NewDecoder(input string) *Decoder {
	return &Decoder{stream: parser.NewStream(input), reg: defaultRegistry}
}

// NewDecoderReader creates a decoder that reads all of r up front. A read
// error is reported by the first call to Next.
func NewDecoderReader(r io.Reader) *Decoder {
	data, err := io.ReadAll(r)
	d := NewDecoder(string(data))
	d.readErr = err
	return d
}

// WithRegistry replaces the tag registry. Call before the first Next.
func (d *Decoder) WithRegistry(reg *Registry) *Decoder {
	d.reg = reg
	return d
}

// SkipBadDocuments selects the skip failure policy: a document that fails to
// parse or resolve is dropped and Next resynchronizes at the next "---"
// marker. The default policy is to stop and report the error.
func (d *Decoder) SkipBadDocuments() *Decoder {
	d.skipBad = true
	return d
}

// Next returns the next document's decoded root value. It returns io.EOF
// when the stream is exhausted. Under the default policy any lexical,
// structural or resolution error stops the decoder; under SkipBadDocuments
// the failed document is skipped and the following one is tried.
func (d *Decoder) Next() (any, error) {
	if d.readErr != nil {
		err := d.readErr
		d.readErr = nil
		return nil, err
	}
	for {
		node, err := d.stream.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			if d.skipBad {
				d.stream.SkipToNextDocument()
				continue
			}
			return nil, err
		}

		// Aliases are document-scoped, so each document gets a fresh
		// resolver and memo table.
		v, err := newResolver(d.reg).resolve(node)
		if err != nil {
			if d.skipBad {
				d.stream.SkipToNextDocument()
				continue
			}
			return nil, err
		}
		return v, nil
	}
}
