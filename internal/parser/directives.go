package parser

import (
	"strings"

	"github.com/driftware/drift-yaml/internal/scanner"
)

// Tag handle defaults. "!" expands local tags to themselves; "!!" expands to
// the YAML core-schema namespace.
const (
	primaryHandlePrefix   = "!"
	secondaryHandlePrefix = "tag:yaml.org,2002:"
)

// resetDocument clears all per-document state: the anchor table, declared
// tag handles and the %YAML version. Directives never carry across a "---".
func (p *Parser) resetDocument() {
	p.anchors = make(map[string]Node)
	p.yamlVersion = ""
	p.tagHandles = map[string]string{
		"!":  primaryHandlePrefix,
		"!!": secondaryHandlePrefix,
	}
}

// processDirective interprets one %NAME line. %YAML records the declared
// version; %TAG declares a handle; reserved directives are ignored.
func (p *Parser) processDirective(tok scanner.Token) {
	fields := strings.Fields(tok.Value)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "%YAML":
		if len(fields) >= 2 {
			p.yamlVersion = fields[1]
		}
	case "%TAG":
		if len(fields) >= 3 {
			p.tagHandles[fields[1]] = fields[2]
		}
	}
}
