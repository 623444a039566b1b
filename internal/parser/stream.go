package parser

import (
	"io"

	"github.com/driftware/drift-yaml/internal/scanner"
)

// Stream iterates over the documents of a YAML stream. Each call to Next
// parses exactly one document; documents after the current position stay
// untouched, so abandoning the stream costs nothing.
type Stream struct {
	p       *Parser
	started bool
	done    bool
}

// NewStream creates a document stream over the given source text.
func NewStream(input string) *Stream {
	return &Stream{p: newParser(input)}
}

// Next parses and returns the next document's root node. It returns io.EOF
// when the stream is exhausted. On a lexical or structural error the stream
// position is inside the failed document; SkipToNextDocument resynchronizes.
func (s *Stream) Next() (Node, error) {
	if s.done {
		return nil, io.EOF
	}
	p := s.p
	if !s.started {
		s.started = true
		if err := p.prime(); err != nil {
			return nil, err
		}
	}

	p.resetDocument()

	// Leading trivia: blank lines, trailing "..." from the previous document,
	// and directives for this one.
	for {
		switch p.current.Kind {
		case scanner.KindNewline, scanner.KindDocEnd, scanner.KindDedent:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case scanner.KindDirective:
			p.processDirective(p.current)
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if p.current.Kind == scanner.KindEOF {
		s.done = true
		return nil, io.EOF
	}

	hadStart := false
	startTok := p.current
	if p.current.Kind == scanner.KindDocStart {
		hadStart = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.current.Kind == scanner.KindNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	// "---" with no content before the next marker is an empty document.
	if hadStart {
		switch p.current.Kind {
		case scanner.KindDocStart, scanner.KindDocEnd, scanner.KindEOF, scanner.KindDirective:
			return nullScalar(startTok.Line, startTok.Column), nil
		}
	}

	node, err := p.parseDocumentNode()
	if err != nil {
		return nil, err
	}

	for p.current.Kind == scanner.KindNewline || p.current.Kind == scanner.KindDedent {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	switch p.current.Kind {
	case scanner.KindEOF, scanner.KindDocStart:
		// left in place for the next call
	case scanner.KindDocEnd:
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, structErrf(p.current.Line, p.current.Column,
			"unexpected content after document")
	}
	return node, nil
}

// parseDocumentNode parses the content of one document. A tag alone on the
// "---" line applies to the whole document, whose content starts at column
// zero on the following lines.
func (p *Parser) parseDocumentNode() (Node, error) {
	if p.current.Kind == scanner.KindTag {
		switch p.next.Kind {
		case scanner.KindNewline, scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd:
			tagTok := p.current
			tag, err := p.expandTag(tagTok)
			if err != nil {
				return nil, err
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			for p.current.Kind == scanner.KindNewline {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			switch p.current.Kind {
			case scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd:
				n := nullScalar(tagTok.Line, tagTok.Column)
				n.Tag = tag
				return n, nil
			}
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			setTag(node, tag)
			return node, nil
		}
	}
	return p.parseNode()
}

// SkipToNextDocument advances past the remainder of a failed document,
// stopping at the next "---" marker or at end of input. Scanner errors along
// the way are discarded.
func (s *Stream) SkipToNextDocument() {
	p := s.p
	for {
		switch p.current.Kind {
		case scanner.KindEOF, scanner.KindDocStart:
			return
		}
		if err := p.advance(); err != nil {
			continue
		}
	}
}

// Parse is a convenience for single-document input: it parses the first
// document and returns its root node. Empty input yields a null scalar.
func Parse(input string) (Node, error) {
	st := NewStream(input)
	node, err := st.Next()
	if err == io.EOF {
		return nullScalar(1, 1), nil
	}
	return node, err
}
