package parser

import (
	"strings"

	"github.com/driftware/drift-yaml/internal/scanner"
)

// Parser is a recursive-descent parser over the scanner's token stream with
// two tokens of lookahead. The second token decides between a plain scalar
// and a mapping key (scalar followed by ':').
//
// Grammar sketch (block context):
//
//	node     := scalar | alias | anchor node | tag node
//	          | mapping | sequence | flow-seq | flow-map
//	mapping  := (key ':' value | '?' node [':' value])+
//	sequence := ('-' value)+
//
// Indent/Dedent tokens from the scanner delimit nesting; the collection
// loops absorb the levels they themselves opened (compact "- key: val"
// entries open one) and stop on any other Dedent.
type Parser struct {
	sc      *scanner.Scanner
	current scanner.Token
	next    scanner.Token

	anchors     map[string]Node
	tagHandles  map[string]string
	yamlVersion string
}

func newParser(input string) *Parser {
	p := &Parser{sc: scanner.New(input)}
	p.resetDocument()
	return p
}

// prime loads the two lookahead tokens.
func (p *Parser) prime() error {
	if err := p.advance(); err != nil {
		return err
	}
	return p.advance()
}

// advance shifts the lookahead window by one token. On a scanner error the
// next slot is filled with a Newline placeholder so that recovery can keep
// stepping through the stream.
func (p *Parser) advance() error {
	p.current = p.next
	tok, err := p.sc.Next()
	if err != nil {
		p.next = scanner.Token{Kind: scanner.KindNewline}
		return err
	}
	p.next = tok
	return nil
}

// parseNode parses one node starting at the current token.
func (p *Parser) parseNode() (Node, error) {
	switch p.current.Kind {
	case scanner.KindScalar:
		if p.next.Kind == scanner.KindColon {
			return p.parseBlockMapping()
		}
		tok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Scalar{Value: tok.Value, Style: tok.Style, Line: tok.Line, Column: tok.Column}, nil

	case scanner.KindDash:
		return p.parseBlockSequence()

	case scanner.KindQuestion:
		return p.parseBlockMapping()

	case scanner.KindLBracket, scanner.KindLBrace:
		var node Node
		var err error
		if p.current.Kind == scanner.KindLBracket {
			node, err = p.parseFlowSequence()
		} else {
			node, err = p.parseFlowMapping()
		}
		if err != nil {
			return nil, err
		}
		if p.current.Kind == scanner.KindColon {
			// flow collection used as a block mapping key
			return p.parseBlockMappingWithKey(node)
		}
		return node, nil

	case scanner.KindAlias:
		if p.next.Kind == scanner.KindColon {
			return p.parseBlockMapping()
		}
		return p.resolveAlias()

	case scanner.KindAnchor:
		tok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseNodeAfterProperty(tok)
		if err != nil {
			return nil, err
		}
		p.anchors[tok.Value] = node
		return node, nil

	case scanner.KindTag:
		tagTok := p.current
		tag, err := p.expandTag(tagTok)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseNodeAfterProperty(tagTok)
		if err != nil {
			return nil, err
		}
		setTag(node, tag)
		return node, nil
	}

	return nil, structErrf(p.current.Line, p.current.Column,
		"unexpected token %s", p.current.Kind)
}

// parseNodeAfterProperty parses the node that an anchor or tag property
// applies to. A property alone at the end of a line covers an
// indented collection on the following lines or, absent one, an empty
// scalar.
func (p *Parser) parseNodeAfterProperty(propTok scanner.Token) (Node, error) {
	if p.current.Kind == scanner.KindNewline {
		for p.current.Kind == scanner.KindNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.current.Kind == scanner.KindIndent {
			if err := p.advance(); err != nil {
				return nil, err
			}
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if p.current.Kind == scanner.KindDedent {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			return node, nil
		}
		return nullScalar(propTok.Line, propTok.Column), nil
	}

	switch p.current.Kind {
	case scanner.KindDedent, scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd,
		scanner.KindComma, scanner.KindRBracket, scanner.KindRBrace:
		return nullScalar(propTok.Line, propTok.Column), nil
	}
	return p.parseNode()
}

func (p *Parser) resolveAlias() (Node, error) {
	node, ok := p.anchors[p.current.Value]
	if !ok {
		return nil, structErrf(p.current.Line, p.current.Column,
			"undefined alias %q", p.current.Value)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return node, nil
}

// parseBlockMapping parses a block mapping starting at its first key token
// (or at '?' for an explicit entry).
func (p *Parser) parseBlockMapping() (Node, error) {
	m := &Mapping{Line: p.current.Line, Column: p.current.Column}
	if err := p.blockMappingEntries(m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseBlockMappingWithKey parses a block mapping whose first key (a flow
// collection) has already been consumed. The current token is the ':'.
func (p *Parser) parseBlockMappingWithKey(key Node) (Node, error) {
	line, col := key.Pos()
	m := &Mapping{Line: line, Column: col}
	if err := p.advance(); err != nil { // ':'
		return nil, err
	}
	value, err := p.parseValueAfterColon()
	if err != nil {
		return nil, err
	}
	m.Pairs = append(m.Pairs, Pair{Key: key, Value: value})
	if err := p.blockMappingEntries(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) blockMappingEntries(m *Mapping) error {
	indentDepth := 0
	for {
		switch p.current.Kind {
		case scanner.KindNewline:
			if err := p.advance(); err != nil {
				return err
			}
			continue
		case scanner.KindIndent:
			indentDepth++
			if err := p.advance(); err != nil {
				return err
			}
			continue
		case scanner.KindDedent:
			if indentDepth > 0 {
				indentDepth--
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			return nil
		case scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd, scanner.KindDash:
			return nil
		}

		if p.current.Kind == scanner.KindQuestion {
			if err := p.advance(); err != nil {
				return err
			}
			key, err := p.parseExplicitKey()
			if err != nil {
				return err
			}
			for p.current.Kind == scanner.KindNewline {
				if err := p.advance(); err != nil {
					return err
				}
			}
			var value Node
			if p.current.Kind == scanner.KindColon {
				if err := p.advance(); err != nil {
					return err
				}
				value, err = p.parseValueAfterColon()
				if err != nil {
					return err
				}
			} else {
				value = nullScalar(p.current.Line, p.current.Column)
			}
			m.Pairs = append(m.Pairs, Pair{Key: key, Value: value})
			continue
		}

		key, err := p.parseKeyNode()
		if err != nil {
			return err
		}
		if p.current.Kind != scanner.KindColon {
			return structErrf(p.current.Line, p.current.Column,
				"expected ':' after mapping key")
		}
		if err := p.advance(); err != nil {
			return err
		}
		value, err := p.parseValueAfterColon()
		if err != nil {
			return err
		}
		m.Pairs = append(m.Pairs, Pair{Key: key, Value: value})
	}
}

// parseExplicitKey parses the node after '?'. The key may sit on the same
// line or be a collection on the following, deeper-indented lines; a '?'
// with nothing after it yields a null key.
func (p *Parser) parseExplicitKey() (Node, error) {
	switch p.current.Kind {
	case scanner.KindColon:
		return nullScalar(p.current.Line, p.current.Column), nil
	case scanner.KindNewline:
		for p.current.Kind == scanner.KindNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.current.Kind == scanner.KindIndent {
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if p.current.Kind == scanner.KindDedent {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			return key, nil
		}
		return nullScalar(p.current.Line, p.current.Column), nil
	}
	return p.parseNode()
}

// parseKeyNode parses an implicit mapping key: a scalar, alias, flow
// collection, or either of those behind an anchor or tag. It never recurses
// into a block mapping the way parseNode would.
func (p *Parser) parseKeyNode() (Node, error) {
	switch p.current.Kind {
	case scanner.KindScalar:
		tok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Scalar{Value: tok.Value, Style: tok.Style, Line: tok.Line, Column: tok.Column}, nil
	case scanner.KindAlias:
		return p.resolveAlias()
	case scanner.KindAnchor:
		name := p.current.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, err := p.parseKeyNode()
		if err != nil {
			return nil, err
		}
		p.anchors[name] = key
		return key, nil
	case scanner.KindTag:
		tag, err := p.expandTag(p.current)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		key, err := p.parseKeyNode()
		if err != nil {
			return nil, err
		}
		setTag(key, tag)
		return key, nil
	case scanner.KindLBracket:
		return p.parseFlowSequence()
	case scanner.KindLBrace:
		return p.parseFlowMapping()
	}
	return nil, structErrf(p.current.Line, p.current.Column,
		"unexpected token %s where a mapping key was expected", p.current.Kind)
}

// parseValueAfterColon parses the value position of a mapping entry. The
// value may be inline, nested on deeper-indented lines, a block sequence at
// the key's own indentation, or absent (null).
func (p *Parser) parseValueAfterColon() (Node, error) {
	switch p.current.Kind {
	case scanner.KindNewline:
		for p.current.Kind == scanner.KindNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		switch p.current.Kind {
		case scanner.KindIndent:
			if err := p.advance(); err != nil {
				return nil, err
			}
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if p.current.Kind == scanner.KindDedent {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			return node, nil
		case scanner.KindDash:
			// sequence items may sit at the same indentation as their key
			return p.parseBlockSequence()
		}
		return nullScalar(p.current.Line, p.current.Column), nil

	case scanner.KindDedent, scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd:
		return nullScalar(p.current.Line, p.current.Column), nil
	}
	return p.parseNode()
}

// parseBlockSequence parses "- item" entries. The scanner opens an
// indentation level for inline content after each dash; those levels are
// tracked in pending and absorbed when the matching Dedent arrives.
func (p *Parser) parseBlockSequence() (Node, error) {
	seq := &Sequence{Line: p.current.Line, Column: p.current.Column}
	pending := 0
	for {
		switch p.current.Kind {
		case scanner.KindNewline:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case scanner.KindIndent:
			pending++
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case scanner.KindDedent:
			if pending > 0 {
				pending--
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			return seq, nil
		case scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd:
			return seq, nil
		}

		if p.current.Kind != scanner.KindDash {
			return seq, nil
		}
		dashTok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Kind == scanner.KindIndent {
			pending++
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		switch p.current.Kind {
		case scanner.KindNewline:
			// dash alone on its line: item nested below, or null
			for p.current.Kind == scanner.KindNewline {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			if p.current.Kind == scanner.KindIndent {
				if err := p.advance(); err != nil {
					return nil, err
				}
				node, err := p.parseNode()
				if err != nil {
					return nil, err
				}
				if p.current.Kind == scanner.KindDedent {
					if err := p.advance(); err != nil {
						return nil, err
					}
				}
				seq.Items = append(seq.Items, node)
			} else {
				seq.Items = append(seq.Items, nullScalar(dashTok.Line, dashTok.Column))
			}
		case scanner.KindDedent, scanner.KindEOF, scanner.KindDocStart, scanner.KindDocEnd:
			seq.Items = append(seq.Items, nullScalar(dashTok.Line, dashTok.Column))
		default:
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, node)
		}
	}
}

// parseFlowSequence parses "[a, b, ...]". A "key: value" entry inside a flow
// sequence becomes a single-pair mapping.
func (p *Parser) parseFlowSequence() (Node, error) {
	seq := &Sequence{Line: p.current.Line, Column: p.current.Column}
	if err := p.advance(); err != nil { // '['
		return nil, err
	}
	for {
		if p.current.Kind == scanner.KindRBracket {
			return seq, p.advance()
		}
		if p.current.Kind == scanner.KindEOF {
			return nil, structErrf(p.current.Line, p.current.Column,
				"unterminated flow sequence")
		}

		item, err := p.parseFlowNode()
		if err != nil {
			return nil, err
		}
		if p.current.Kind == scanner.KindColon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			var value Node
			if p.current.Kind == scanner.KindComma || p.current.Kind == scanner.KindRBracket {
				value = nullScalar(p.current.Line, p.current.Column)
			} else {
				value, err = p.parseFlowNode()
				if err != nil {
					return nil, err
				}
			}
			line, col := item.Pos()
			item = &Mapping{Pairs: []Pair{{Key: item, Value: value}}, Line: line, Column: col}
		}
		seq.Items = append(seq.Items, item)

		switch p.current.Kind {
		case scanner.KindComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case scanner.KindRBracket:
			return seq, p.advance()
		default:
			return nil, structErrf(p.current.Line, p.current.Column,
				"expected ',' or ']' in flow sequence")
		}
	}
}

// parseFlowMapping parses "{k: v, ...}". A lone "{key}" entry gets a null
// value.
func (p *Parser) parseFlowMapping() (Node, error) {
	m := &Mapping{Line: p.current.Line, Column: p.current.Column}
	if err := p.advance(); err != nil { // '{'
		return nil, err
	}
	for {
		if p.current.Kind == scanner.KindRBrace {
			return m, p.advance()
		}
		if p.current.Kind == scanner.KindEOF {
			return nil, structErrf(p.current.Line, p.current.Column,
				"unterminated flow mapping")
		}

		if p.current.Kind == scanner.KindQuestion {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		var key Node
		var err error
		if p.current.Kind == scanner.KindColon {
			key = nullScalar(p.current.Line, p.current.Column)
		} else {
			key, err = p.parseFlowNode()
			if err != nil {
				return nil, err
			}
		}

		var value Node
		if p.current.Kind == scanner.KindColon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.current.Kind == scanner.KindComma || p.current.Kind == scanner.KindRBrace {
				value = nullScalar(p.current.Line, p.current.Column)
			} else {
				value, err = p.parseFlowNode()
				if err != nil {
					return nil, err
				}
			}
		} else {
			value = nullScalar(p.current.Line, p.current.Column)
		}
		m.Pairs = append(m.Pairs, Pair{Key: key, Value: value})

		switch p.current.Kind {
		case scanner.KindComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case scanner.KindRBrace:
			return m, p.advance()
		default:
			return nil, structErrf(p.current.Line, p.current.Column,
				"expected ',' or '}' in flow mapping")
		}
	}
}

// parseFlowNode parses one node inside a flow collection.
func (p *Parser) parseFlowNode() (Node, error) {
	switch p.current.Kind {
	case scanner.KindScalar:
		tok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Scalar{Value: tok.Value, Style: tok.Style, Line: tok.Line, Column: tok.Column}, nil
	case scanner.KindLBracket:
		return p.parseFlowSequence()
	case scanner.KindLBrace:
		return p.parseFlowMapping()
	case scanner.KindAlias:
		return p.resolveAlias()
	case scanner.KindAnchor:
		name := p.current.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseFlowNode()
		if err != nil {
			return nil, err
		}
		p.anchors[name] = node
		return node, nil
	case scanner.KindTag:
		tagTok := p.current
		tag, err := p.expandTag(tagTok)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.current.Kind {
		case scanner.KindComma, scanner.KindRBracket, scanner.KindRBrace, scanner.KindColon:
			n := nullScalar(tagTok.Line, tagTok.Column)
			n.Tag = tag
			return n, nil
		}
		node, err := p.parseFlowNode()
		if err != nil {
			return nil, err
		}
		setTag(node, tag)
		return node, nil
	}
	return nil, structErrf(p.current.Line, p.current.Column,
		"unexpected token %s in flow collection", p.current.Kind)
}

// expandTag turns a tag token's surface form into a full tag URI. Verbatim
// !<uri> tags pass through; !name uses the primary handle, !!name the
// secondary, and !h!name a handle declared by a %TAG directive.
func (p *Parser) expandTag(tok scanner.Token) (string, error) {
	raw := tok.Value
	if strings.HasPrefix(raw, "!<") && strings.HasSuffix(raw, ">") {
		return raw[2 : len(raw)-1], nil
	}
	if raw == "!" {
		return "!", nil
	}
	rest := raw[1:]
	if i := strings.IndexByte(rest, '!'); i >= 0 {
		handle := raw[:i+2]
		suffix := rest[i+1:]
		prefix, ok := p.tagHandles[handle]
		if !ok {
			return "", structErrf(tok.Line, tok.Column, "undeclared tag handle %q", handle)
		}
		return prefix + suffix, nil
	}
	return p.tagHandles["!"] + rest, nil
}

func setTag(n Node, tag string) {
	switch v := n.(type) {
	case *Scalar:
		v.Tag = tag
	case *Sequence:
		v.Tag = tag
	case *Mapping:
		v.Tag = tag
	}
}
