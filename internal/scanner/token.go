// Package scanner converts YAML source text into a lazy stream of lexical
// tokens. Indentation is significant only in block context: the scanner keeps
// a stack of indentation levels and emits synthetic Indent/Dedent tokens when
// a line's leading-space count rises or falls relative to the stack top. Flow
// context ([...] / {...}) suspends indentation tracking entirely; nesting is
// tracked by a bracket-depth counter.
package scanner

import "fmt"

// Kind identifies the lexical class of a token.
type Kind string

// Token kind constants. These correspond to the terminals of the YAML
// block/flow grammar subset this decoder supports.
const (
	// Structural tokens
	KindColon    Kind = "Colon"    // : (value indicator)
	KindDash     Kind = "Dash"     // - (block sequence item)
	KindComma    Kind = "Comma"    // , (flow style)
	KindLBrace   Kind = "LBrace"   // { (flow mapping start)
	KindRBrace   Kind = "RBrace"   // } (flow mapping end)
	KindLBracket Kind = "LBracket" // [ (flow sequence start)
	KindRBracket Kind = "RBracket" // ] (flow sequence end)
	KindQuestion Kind = "Question" // ? (explicit key marker)

	// Indentation tokens (synthesized from the indent stack)
	KindIndent Kind = "Indent"
	KindDedent Kind = "Dedent"

	// Content tokens
	KindScalar Kind = "Scalar" // plain, quoted, or block scalar content
	KindAnchor Kind = "Anchor" // &name (value is the bare name)
	KindAlias  Kind = "Alias"  // *name (value is the bare name)
	KindTag    Kind = "Tag"    // !name, !!name, !h!name, !<verbatim>

	// Stream tokens
	KindNewline   Kind = "Newline"
	KindDocStart  Kind = "DocStart"  // ---
	KindDocEnd    Kind = "DocEnd"    // ...
	KindDirective Kind = "Directive" // %YAML ..., %TAG ...
	KindEOF       Kind = "EOF"
)

// Style records how a scalar was written in the source. Quoted and block
// scalars never undergo implicit type resolution downstream, so the style
// must survive into the parse tree.
type Style string

const (
	StylePlain        Style = "plain"
	StyleSingleQuoted Style = "single"
	StyleDoubleQuoted Style = "double"
	StyleLiteral      Style = "literal" // |
	StyleFolded       Style = "folded"  // >
)

// Token is a single lexical unit. Tokens are immutable once emitted.
type Token struct {
	Kind   Kind
	Value  string // decoded content for scalars, bare name for anchors/aliases
	Style  Style  // set only for KindScalar
	Line   int    // 1-indexed
	Column int    // 1-indexed
}

func (t Token) String() string {
	if t.Value == "" {
		return string(t.Kind)
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}
