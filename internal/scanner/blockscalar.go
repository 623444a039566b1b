package scanner

import "strings"

// lexBlockScalar scans a literal (|) or folded (>) block scalar, positioned
// at the indicator character. The whole scalar is consumed here and delivered
// as a single Scalar token; a Newline token is queued behind it so the parser
// sees the same shape as a plain scalar followed by its line break.
//
// Header grammar after the indicator: an optional chomping indicator ('-'
// strip, '+' keep, none clip) and an optional explicit indentation indicator
// (digit 1-9, relative to the parent node's indentation), in either order,
// then an optional comment, then a line break.
func (s *Scanner) lexBlockScalar(folded bool) (Token, error) {
	line, col := s.line, s.column
	parentIndent := s.lineIndent
	s.advance() // '|' or '>'

	chomp := byte(0)
	explicit := 0
	for s.pos < s.length {
		c := s.data[s.pos]
		if c == '-' || c == '+' {
			if chomp != 0 {
				return Token{}, lexErrf(s.line, s.column, "duplicate chomping indicator")
			}
			chomp = c
			s.advance()
			continue
		}
		if c >= '1' && c <= '9' {
			if explicit != 0 {
				return Token{}, lexErrf(s.line, s.column, "duplicate indentation indicator")
			}
			explicit = int(c - '0')
			s.advance()
			continue
		}
		break
	}

	s.skipSpaces()
	if s.pos < s.length && s.data[s.pos] == '#' {
		s.skipComment()
	}
	if s.pos < s.length {
		c := s.data[s.pos]
		if c != '\n' && c != '\r' {
			return Token{}, lexErrf(s.line, s.column, "unexpected character %q after block scalar header", c)
		}
		s.consumeLineBreak()
	}

	contentIndent := -1
	if explicit > 0 {
		contentIndent = parentIndent + explicit
	}

	var lines []string
	for s.pos < s.length {
		j, n := s.pos, 0
		for j < s.length && s.data[j] == ' ' {
			j++
			n++
		}
		if j < s.length && s.data[j] == '\t' && (contentIndent == -1 || n < contentIndent) {
			return Token{}, lexErrf(s.line, n+1, "tab character used for indentation")
		}

		if j >= s.length || s.data[j] == '\n' || s.data[j] == '\r' {
			// Blank line: part of the content regardless of its indentation.
			lines = append(lines, "")
			s.pos = j
			s.column += n
			if s.pos < s.length {
				s.consumeLineBreak()
			}
			continue
		}

		if n <= parentIndent {
			break
		}
		if contentIndent == -1 {
			contentIndent = n
		}
		if n < contentIndent {
			break
		}

		// Content line: everything beyond contentIndent is content, extra
		// indentation included.
		s.pos += contentIndent
		s.column += contentIndent
		start := s.pos
		for s.pos < s.length && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
			s.advance()
		}
		lines = append(lines, string(s.data[start:s.pos]))
		if s.pos < s.length {
			s.consumeLineBreak()
		}
	}

	style := StyleLiteral
	if folded {
		style = StyleFolded
	}

	content := assembleBlockScalar(lines, folded, chomp)

	// The scalar consumed its terminating line break(s); re-enter line-start
	// handling and let the parser see a Newline after the scalar.
	s.atLineStart = true
	s.pending = append(s.pending, Token{Kind: KindNewline, Line: s.line, Column: s.column})

	return Token{Kind: KindScalar, Value: content, Style: style, Line: line, Column: col}, nil
}

// assembleBlockScalar joins collected content lines and applies folding and
// chomping. In folded style a single break between two non-blank,
// equally-indented lines becomes a space; breaks next to blank or
// more-indented lines stay literal.
func assembleBlockScalar(lines []string, folded bool, chomp byte) string {
	var content string
	if folded {
		var b strings.Builder
		prevBlank, prevMore := false, false
		for i, ln := range lines {
			more := ln != "" && (ln[0] == ' ' || ln[0] == '\t')
			if i > 0 {
				if ln == "" || prevBlank || more || prevMore {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString(ln)
			prevBlank = ln == ""
			prevMore = more
		}
		content = b.String()
	} else {
		content = strings.Join(lines, "\n")
	}

	switch chomp {
	case '-':
		return strings.TrimRight(content, "\n")
	case '+':
		if len(lines) == 0 {
			return ""
		}
		return content + "\n"
	default:
		trimmed := strings.TrimRight(content, "\n")
		if trimmed == "" {
			return ""
		}
		return trimmed + "\n"
	}
}
