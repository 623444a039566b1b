package scanner

import "fmt"

// LexicalError reports a malformed token: a bad escape sequence, an
// unterminated quote, flow collection, or anchor name, or a tab character
// inside indentation. It is fatal to the current document.
type LexicalError struct {
	Msg    string
	Line   int
	Column int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("yaml: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

// lexErrf builds a LexicalError at the given position.
func lexErrf(line, column int, format string, args ...interface{}) *LexicalError {
	return &LexicalError{
		Msg:    fmt.Sprintf(format, args...),
		Line:   line,
		Column: column,
	}
}
