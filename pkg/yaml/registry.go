package yaml

import (
	"fmt"
	"strings"
)

// longTagPrefix is the namespace of the YAML core-schema tags.
const longTagPrefix = "tag:yaml.org,2002:"

// ResolveFunc converts a node carrying a registered tag into a final value.
// The argument is the node's already-decoded generic form: string for
// scalars, []any for sequences, *Map for mappings. Returning an error aborts
// the current document.
type ResolveFunc func(value any) (any, error)

// Registry maps tag URIs to resolve functions. The zero policy for an
// unregistered explicit tag is graceful: the value is wrapped in a
// TaggedValue. Strict mode turns that case into an UnsupportedTagError.
//
// Register all tags before decoding begins; the registry is read-only during
// decoding and safe for concurrent readers.
type Registry struct {
	rules  map[string]ResolveFunc
	strict bool
}

// NewRegistry creates an empty registry with the graceful unknown-tag
// policy.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]ResolveFunc)}
}

// Register binds a resolve function to a tag. The tag may be written in
// shorthand ("!!timestamp", "!shape") or as a full URI
// ("tag:yaml.org,2002:timestamp"). Registering a core-schema tag overrides
// the built-in behavior for explicitly tagged nodes.
func (r *Registry) Register(tag string, fn ResolveFunc) {
	r.rules[normalizeTag(tag)] = fn
}

// SetStrict selects the unknown-tag policy: strict registries fail on
// unregistered explicit tags instead of wrapping them.
func (r *Registry) SetStrict(strict bool) {
	r.strict = strict
}

func (r *Registry) lookup(tag string) (ResolveFunc, bool) {
	fn, ok := r.rules[tag]
	return fn, ok
}

// normalizeTag expands shorthand tags to the form the parser produces:
// "!!name" becomes the core-schema URI, other forms pass through.
func normalizeTag(tag string) string {
	if strings.HasPrefix(tag, "!!") {
		return longTagPrefix + tag[2:]
	}
	return tag
}

// defaultRegistry backs the package-level Decode functions.
var defaultRegistry = NewRegistry()

// Register binds a resolve function in the registry used by the
// package-level Decode functions.
func Register(tag string, fn ResolveFunc) {
	defaultRegistry.Register(tag, fn)
}

// UnsupportedTagError reports an explicit tag with no registered resolver,
// under a strict registry.
type UnsupportedTagError struct {
	Tag    string
	Line   int
	Column int
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("yaml: unsupported tag %q at line %d, column %d", e.Tag, e.Line, e.Column)
}
