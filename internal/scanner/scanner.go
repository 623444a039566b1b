package scanner

// Scanner is a single-pass lexer over an in-memory YAML source. Tokens are
// produced lazily: Next does only the work needed to deliver one token.
//
// In block context (flowDepth == 0) the scanner measures the leading-space
// count of every content line and compares it against the indentation stack,
// queueing Indent/Dedent tokens before the line's first content token. A dash
// with inline content additionally opens an indentation level at the column
// of that content, so compact forms like "- name: x" nest correctly.
type Scanner struct {
	data   []byte
	pos    int
	length int
	line   int
	column int

	indents     []int // stack of indentation levels, bottom is always 0
	flowDepth   int   // > 0 inside [...] or {...}
	atLineStart bool
	lineIndent  int // indentation of the current line

	pending []Token // queued synthetic tokens (Indent/Dedent/DocStart/...)
}

// New creates a scanner for the given source text.
func New(input string) *Scanner {
	return &Scanner{
		data:        []byte(input),
		length:      len(input),
		line:        1,
		column:      1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Next returns the next token. At end of input it emits Dedent tokens down to
// the base level followed by an EOF token; calling Next after EOF keeps
// returning EOF. A returned error is a *LexicalError; the scanner skips the
// rest of the offending line so that callers may resynchronize.
func (s *Scanner) Next() (Token, error) {
	for {
		if len(s.pending) > 0 {
			tok := s.pending[0]
			s.pending = s.pending[1:]
			return tok, nil
		}

		if s.flowDepth == 0 && s.atLineStart {
			if err := s.startLine(); err != nil {
				s.recoverLine()
				return Token{}, err
			}
			continue
		}

		s.skipSpaces()

		if s.pos >= s.length {
			if s.flowDepth > 0 {
				err := lexErrf(s.line, s.column, "unterminated flow collection")
				s.recoverLine()
				return Token{}, err
			}
			for len(s.indents) > 1 {
				s.indents = s.indents[:len(s.indents)-1]
				s.pending = append(s.pending, Token{Kind: KindDedent, Line: s.line, Column: s.column})
			}
			s.pending = append(s.pending, Token{Kind: KindEOF, Line: s.line, Column: s.column})
			continue
		}

		c := s.data[s.pos]

		if c == '\n' || c == '\r' {
			if s.flowDepth > 0 {
				// Flow context suspends line structure, except that a
				// document marker still terminates the collection.
				s.consumeLineBreak()
				if s.hasMarker("---") || s.hasMarker("...") {
					s.flowDepth = 0
					s.atLineStart = true
				}
				continue
			}
			tok := Token{Kind: KindNewline, Line: s.line, Column: s.column}
			s.consumeLineBreak()
			s.atLineStart = true
			return tok, nil
		}

		if c == '#' {
			s.skipComment()
			continue
		}

		tok, err := s.lexToken()
		if err != nil {
			s.recoverLine()
			return Token{}, err
		}
		return tok, nil
	}
}

// startLine consumes indentation, blank lines, comment-only lines, directives
// and document markers at the start of a line, queueing any synthetic tokens.
func (s *Scanner) startLine() error {
	for {
		indent := 0
		for s.pos < s.length {
			c := s.data[s.pos]
			if c == ' ' {
				indent++
				s.advance()
				continue
			}
			if c == '\t' {
				return lexErrf(s.line, s.column, "tab character used for indentation")
			}
			break
		}

		if s.pos >= s.length {
			s.lineIndent = indent
			s.atLineStart = false
			return nil
		}

		c := s.data[s.pos]

		if c == '\n' || c == '\r' {
			s.consumeLineBreak()
			continue
		}
		if c == '#' {
			s.skipComment()
			continue
		}

		if indent == 0 && c == '%' {
			s.pending = append(s.pending, s.lexDirective())
			continue
		}

		if indent == 0 && s.hasMarker("---") {
			s.flushDedents()
			s.pending = append(s.pending, Token{Kind: KindDocStart, Line: s.line, Column: s.column})
			s.pos += 3
			s.column += 3
			s.lineIndent = 0
			s.atLineStart = false
			return nil
		}
		if indent == 0 && s.hasMarker("...") {
			s.flushDedents()
			s.pending = append(s.pending, Token{Kind: KindDocEnd, Line: s.line, Column: s.column})
			s.pos += 3
			s.column += 3
			s.lineIndent = 0
			s.atLineStart = false
			return nil
		}

		top := s.indents[len(s.indents)-1]
		for top > indent {
			s.indents = s.indents[:len(s.indents)-1]
			s.pending = append(s.pending, Token{Kind: KindDedent, Line: s.line, Column: s.column})
			top = s.indents[len(s.indents)-1]
		}
		if indent > top {
			s.indents = append(s.indents, indent)
			s.pending = append(s.pending, Token{Kind: KindIndent, Line: s.line, Column: s.column})
		}

		s.lineIndent = indent
		s.atLineStart = false
		return nil
	}
}

// lexToken scans one token starting at a non-space, non-break character.
func (s *Scanner) lexToken() (Token, error) {
	line, col := s.line, s.column
	c := s.data[s.pos]

	switch c {
	case '{':
		s.flowDepth++
		s.advance()
		return Token{Kind: KindLBrace, Line: line, Column: col}, nil
	case '[':
		s.flowDepth++
		s.advance()
		return Token{Kind: KindLBracket, Line: line, Column: col}, nil
	case '}':
		if s.flowDepth > 0 {
			s.flowDepth--
		}
		s.advance()
		return Token{Kind: KindRBrace, Line: line, Column: col}, nil
	case ']':
		if s.flowDepth > 0 {
			s.flowDepth--
		}
		s.advance()
		return Token{Kind: KindRBracket, Line: line, Column: col}, nil
	case ',':
		if s.flowDepth > 0 {
			s.advance()
			return Token{Kind: KindComma, Line: line, Column: col}, nil
		}
	case ':':
		s.advance()
		return Token{Kind: KindColon, Line: line, Column: col}, nil
	case '-':
		if s.separatedAt(1) {
			s.advance()
			if s.flowDepth == 0 {
				s.pushDashIndent()
			}
			return Token{Kind: KindDash, Line: line, Column: col}, nil
		}
	case '?':
		if s.separatedAt(1) {
			s.advance()
			return Token{Kind: KindQuestion, Line: line, Column: col}, nil
		}
	case '&':
		return s.lexName(KindAnchor, "anchor")
	case '*':
		return s.lexName(KindAlias, "alias")
	case '!':
		return s.lexTag()
	case '"':
		return s.lexDoubleQuoted()
	case '\'':
		return s.lexSingleQuoted()
	case '|':
		if s.flowDepth == 0 {
			return s.lexBlockScalar(false)
		}
	case '>':
		if s.flowDepth == 0 {
			return s.lexBlockScalar(true)
		}
	}

	return s.lexPlain(), nil
}

// lexPlain scans an unquoted scalar. Plain scalars may contain spaces
// ("Mark McGwire") and colons not followed by a separator ("http://x"); they
// stop at a line break, at " #" (comment), at ": " (value indicator) and, in
// flow context, at flow delimiters.
func (s *Scanner) lexPlain() Token {
	line, col := s.line, s.column
	start := s.pos

	for s.pos < s.length {
		c := s.data[s.pos]
		if c == '\n' || c == '\r' {
			break
		}
		if c == '#' && s.pos > start && (s.data[s.pos-1] == ' ' || s.data[s.pos-1] == '\t') {
			break
		}
		if c == ':' {
			if s.pos+1 >= s.length {
				break
			}
			n := s.data[s.pos+1]
			if n == ' ' || n == '\t' || n == '\n' || n == '\r' {
				break
			}
			if s.flowDepth > 0 && (n == ',' || n == ']' || n == '}') {
				break
			}
		}
		if s.flowDepth > 0 && (c == ',' || c == '[' || c == ']' || c == '{' || c == '}') {
			break
		}
		s.advance()
	}

	raw := s.data[start:s.pos]
	end := len(raw)
	for end > 0 && (raw[end-1] == ' ' || raw[end-1] == '\t') {
		end--
	}
	return Token{Kind: KindScalar, Value: string(raw[:end]), Style: StylePlain, Line: line, Column: col}
}

// lexName scans an anchor (&name) or alias (*name) token.
func (s *Scanner) lexName(kind Kind, what string) (Token, error) {
	line, col := s.line, s.column
	s.advance() // '&' or '*'

	start := s.pos
	for s.pos < s.length && isNameChar(s.data[s.pos]) {
		s.advance()
	}
	if s.pos == start {
		return Token{}, lexErrf(line, col, "missing %s name", what)
	}
	return Token{Kind: kind, Value: string(s.data[start:s.pos]), Line: line, Column: col}, nil
}

// lexTag scans a tag token: !name, !!name, !handle!name or !<verbatim>.
// The value keeps the raw surface form; handle expansion happens in the
// parser, where %TAG declarations are known.
func (s *Scanner) lexTag() (Token, error) {
	line, col := s.line, s.column
	start := s.pos
	s.advance() // '!'

	if s.pos < s.length && s.data[s.pos] == '<' {
		s.advance()
		for s.pos < s.length {
			c := s.data[s.pos]
			if c == '>' {
				s.advance()
				return Token{Kind: KindTag, Value: string(s.data[start:s.pos]), Line: line, Column: col}, nil
			}
			if c == '\n' || c == '\r' {
				break
			}
			s.advance()
		}
		return Token{}, lexErrf(line, col, "unterminated verbatim tag")
	}

	for s.pos < s.length {
		c := s.data[s.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		if s.flowDepth > 0 && (c == ',' || c == ']' || c == '}') {
			break
		}
		s.advance()
	}
	return Token{Kind: KindTag, Value: string(s.data[start:s.pos]), Line: line, Column: col}, nil
}

// lexDirective consumes a full %NAME ... line, including its line break.
func (s *Scanner) lexDirective() Token {
	line, col := s.line, s.column
	start := s.pos
	for s.pos < s.length && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
		s.advance()
	}
	tok := Token{Kind: KindDirective, Value: string(s.data[start:s.pos]), Line: line, Column: col}
	if s.pos < s.length {
		s.consumeLineBreak()
	}
	return tok
}

// lexDoubleQuoted scans a double-quoted scalar with backslash escapes.
// Line breaks inside the scalar fold to a space; runs of breaks keep
// newlines, matching flow-scalar folding.
func (s *Scanner) lexDoubleQuoted() (Token, error) {
	line, col := s.line, s.column
	s.advance() // opening quote

	var buf []byte
	for {
		if s.pos >= s.length {
			return Token{}, lexErrf(line, col, "unterminated double-quoted scalar")
		}
		c := s.data[s.pos]

		if c == '"' {
			s.advance()
			return Token{Kind: KindScalar, Value: string(buf), Style: StyleDoubleQuoted, Line: line, Column: col}, nil
		}
		if c == '\\' {
			s.advance()
			if s.pos >= s.length {
				return Token{}, lexErrf(line, col, "unterminated double-quoted scalar")
			}
			var err error
			buf, err = s.unescape(buf)
			if err != nil {
				return Token{}, err
			}
			continue
		}
		if c == '\n' || c == '\r' {
			buf = s.foldQuotedBreak(buf)
			continue
		}
		buf = append(buf, c)
		s.advance()
	}
}

// lexSingleQuoted scans a single-quoted scalar. The only escape is a doubled
// single quote.
func (s *Scanner) lexSingleQuoted() (Token, error) {
	line, col := s.line, s.column
	s.advance() // opening quote

	var buf []byte
	for {
		if s.pos >= s.length {
			return Token{}, lexErrf(line, col, "unterminated single-quoted scalar")
		}
		c := s.data[s.pos]

		if c == '\'' {
			s.advance()
			if s.pos < s.length && s.data[s.pos] == '\'' {
				buf = append(buf, '\'')
				s.advance()
				continue
			}
			return Token{Kind: KindScalar, Value: string(buf), Style: StyleSingleQuoted, Line: line, Column: col}, nil
		}
		if c == '\n' || c == '\r' {
			buf = s.foldQuotedBreak(buf)
			continue
		}
		buf = append(buf, c)
		s.advance()
	}
}

// unescape decodes one escape sequence (positioned just after the backslash)
// and appends the result to buf.
func (s *Scanner) unescape(buf []byte) ([]byte, error) {
	e := s.data[s.pos]
	eLine, eCol := s.line, s.column
	s.advance()

	switch e {
	case '"', '\\', '/':
		return append(buf, e), nil
	case 'n':
		return append(buf, '\n'), nil
	case 't':
		return append(buf, '\t'), nil
	case 'r':
		return append(buf, '\r'), nil
	case '0':
		return append(buf, 0), nil
	case 'b':
		return append(buf, '\b'), nil
	case 'f':
		return append(buf, '\f'), nil
	case 'a':
		return append(buf, '\a'), nil
	case 'v':
		return append(buf, '\v'), nil
	case 'e':
		return append(buf, 0x1b), nil
	case ' ':
		return append(buf, ' '), nil
	case 'N':
		return appendRune(buf, '\u0085'), nil
	case '_':
		return appendRune(buf, '\u00a0'), nil
	case 'L':
		return appendRune(buf, '\u2028'), nil
	case 'P':
		return appendRune(buf, '\u2029'), nil
	case 'x':
		v, err := s.readHex(2)
		if err != nil {
			return nil, err
		}
		return appendRune(buf, rune(v)), nil
	case 'u':
		v, err := s.readHex(4)
		if err != nil {
			return nil, err
		}
		return appendRune(buf, rune(v)), nil
	case 'U':
		v, err := s.readHex(8)
		if err != nil {
			return nil, err
		}
		return appendRune(buf, rune(v)), nil
	default:
		return nil, lexErrf(eLine, eCol, "invalid escape sequence '\\%c'", e)
	}
}

// readHex consumes exactly n hex digits and returns their value.
func (s *Scanner) readHex(n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		if s.pos >= s.length {
			return 0, lexErrf(s.line, s.column, "incomplete hex escape")
		}
		c := s.data[s.pos]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return 0, lexErrf(s.line, s.column, "invalid hex digit %q in escape", c)
		}
		v = v*16 + d
		s.advance()
	}
	return v, nil
}

// foldQuotedBreak handles a line break inside a quoted scalar: trailing
// spaces on the broken line are dropped, a single break folds to one space,
// and a run of k breaks folds to k-1 newlines.
func (s *Scanner) foldQuotedBreak(buf []byte) []byte {
	for len(buf) > 0 && (buf[len(buf)-1] == ' ' || buf[len(buf)-1] == '\t') {
		buf = buf[:len(buf)-1]
	}

	breaks := 0
	for s.pos < s.length {
		c := s.data[s.pos]
		if c == '\n' || c == '\r' {
			s.consumeLineBreak()
			breaks++
			continue
		}
		if c == ' ' || c == '\t' {
			s.advance()
			continue
		}
		break
	}

	if breaks <= 1 {
		return append(buf, ' ')
	}
	for i := 1; i < breaks; i++ {
		buf = append(buf, '\n')
	}
	return buf
}

// pushDashIndent opens an indentation level at the column of the content
// following "- " on the same line, so that continuation lines of a compact
// nested collection align with that content instead of the dash.
func (s *Scanner) pushDashIndent() {
	j, n := s.pos, 0
	for j < s.length && s.data[j] == ' ' {
		j++
		n++
	}
	if j >= s.length {
		return
	}
	c := s.data[j]
	if c == '\n' || c == '\r' || c == '#' {
		return
	}

	level := s.column + n - 1 // 0-based column of the inline content
	top := s.indents[len(s.indents)-1]
	if level > top {
		s.indents = append(s.indents, level)
		s.pending = append(s.pending, Token{Kind: KindIndent, Line: s.line, Column: s.column})
	}
}

// flushDedents pops the whole indentation stack, queueing a Dedent per level.
// Used at document markers, which always reset to column zero.
func (s *Scanner) flushDedents() {
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.pending = append(s.pending, Token{Kind: KindDedent, Line: s.line, Column: s.column})
	}
}

// recoverLine skips to the start of the next line after a lexical error so
// the caller can resynchronize on a document marker.
func (s *Scanner) recoverLine() {
	for s.pos < s.length && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
		s.advance()
	}
	if s.pos < s.length {
		s.consumeLineBreak()
	}
	s.flowDepth = 0
	s.atLineStart = true
	s.pending = s.pending[:0]
}

// Helper methods

func (s *Scanner) advance() {
	s.pos++
	s.column++
}

func (s *Scanner) consumeLineBreak() {
	if s.data[s.pos] == '\r' {
		s.pos++
		if s.pos < s.length && s.data[s.pos] == '\n' {
			s.pos++
		}
	} else {
		s.pos++
	}
	s.line++
	s.column = 1
}

func (s *Scanner) skipSpaces() {
	for s.pos < s.length {
		c := s.data[s.pos]
		if c == ' ' || c == '\t' {
			s.advance()
		} else {
			break
		}
	}
}

func (s *Scanner) skipComment() {
	for s.pos < s.length && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
		s.advance()
	}
}

// separatedAt reports whether the byte at pos+offset is a separator
// (whitespace, line break, or end of input).
func (s *Scanner) separatedAt(offset int) bool {
	if s.pos+offset >= s.length {
		return true
	}
	c := s.data[s.pos+offset]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// hasMarker reports whether the input at the current position starts with the
// given document marker followed by a separator.
func (s *Scanner) hasMarker(marker string) bool {
	if s.pos+len(marker) > s.length {
		return false
	}
	if string(s.data[s.pos:s.pos+len(marker)]) != marker {
		return false
	}
	if s.pos+len(marker) == s.length {
		return true
	}
	c := s.data[s.pos+len(marker)]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '-'
}

// appendRune appends a rune to a byte slice as UTF-8.
func appendRune(b []byte, r rune) []byte {
	if r < 0x80 {
		return append(b, byte(r))
	}
	if r < 0x800 {
		return append(b, byte(0xC0|(r>>6)), byte(0x80|(r&0x3F)))
	}
	if r < 0x10000 {
		return append(b, byte(0xE0|(r>>12)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
	}
	return append(b, byte(0xF0|(r>>18)), byte(0x80|((r>>12)&0x3F)), byte(0x80|((r>>6)&0x3F)), byte(0x80|(r&0x3F)))
}
