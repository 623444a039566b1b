// Package parser builds a structural tree from the scanner's token stream.
// The tree preserves everything resolution needs downstream: mapping pair
// order, scalar presentation style, explicit tags, and node identity for
// aliased anchors.
package parser

import "github.com/driftware/drift-yaml/internal/scanner"

// Node is a value in the structural tree: *Scalar, *Sequence or *Mapping.
// Aliases are represented by sharing the anchored node pointer, so a node may
// appear in the tree more than once.
type Node interface {
	Pos() (line, column int)
}

// Scalar is a leaf node. Value holds the decoded text (escapes processed,
// folding and chomping applied); Style records how it was written, which
// decides whether implicit resolution applies later.
type Scalar struct {
	Value  string
	Style  scanner.Style
	Tag    string // expanded tag URI, empty if untagged
	Line   int
	Column int
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	Items  []Node
	Tag    string
	Line   int
	Column int
}

// Pair is one key/value entry of a mapping. Keys are full nodes: explicit
// "? key" entries and flow collections used as keys produce composite keys.
type Pair struct {
	Key   Node
	Value Node
}

// Mapping is an ordered list of key/value pairs. Duplicate keys are kept;
// consumers decide how to treat them.
type Mapping struct {
	Pairs  []Pair
	Tag    string
	Line   int
	Column int
}

func (s *Scalar) Pos() (int, int)   { return s.Line, s.Column }
func (s *Sequence) Pos() (int, int) { return s.Line, s.Column }
func (m *Mapping) Pos() (int, int)  { return m.Line, m.Column }

// nullScalar builds the node for an absent value (empty mapping value,
// empty document, lone "~").
func nullScalar(line, column int) *Scalar {
	return &Scalar{Style: scanner.StylePlain, Line: line, Column: column}
}
