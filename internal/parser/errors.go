package parser

import "fmt"

// StructuralError reports a malformed document shape: a missing ':' after a
// key, an unclosed flow collection, an undefined alias, or indentation that
// does not match any open level. It is fatal to the current document but not
// to the stream.
type StructuralError struct {
	Msg    string
	Line   int
	Column int
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("yaml: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

// structErrf builds a StructuralError at the given position.
func structErrf(line, column int, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Msg:    fmt.Sprintf(format, args...),
		Line:   line,
		Column: column,
	}
}
