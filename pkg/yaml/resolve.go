package yaml

import (
	"encoding/base64"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/driftware/drift-yaml/internal/parser"
	"github.com/driftware/drift-yaml/internal/scanner"
)

// resolver converts a parse tree into generic Go values. Nodes are memoized
// by identity, so a node reached through several aliases resolves once and
// every reference shares the same value.
type resolver struct {
	reg  *Registry
	memo map[parser.Node]any
}

func newResolver(reg *Registry) *resolver {
	return &resolver{reg: reg, memo: make(map[parser.Node]any)}
}

func (r *resolver) resolve(node parser.Node) (any, error) {
	if v, ok := r.memo[node]; ok {
		return v, nil
	}
	var v any
	var err error
	switch n := node.(type) {
	case *parser.Scalar:
		v, err = r.resolveScalar(n)
	case *parser.Sequence:
		v, err = r.resolveSequence(n)
	case *parser.Mapping:
		v, err = r.resolveMapping(n)
	}
	if err != nil {
		return nil, err
	}
	r.memo[node] = v
	return v, nil
}

// resolveScalar applies the scalar-resolution rules: an explicit tag decides
// the type outright; a plain untagged scalar goes through the implicit
// cascade; quoted and block scalars are always strings.
func (r *resolver) resolveScalar(n *parser.Scalar) (any, error) {
	if n.Tag == "!" {
		// non-specific tag forces the default type, string
		return n.Value, nil
	}
	if n.Tag != "" {
		return r.resolveTaggedScalar(n)
	}
	if n.Style == scanner.StylePlain {
		return implicitResolve(n.Value), nil
	}
	return n.Value, nil
}

func (r *resolver) resolveTaggedScalar(n *parser.Scalar) (any, error) {
	if fn, ok := r.reg.lookup(n.Tag); ok {
		return fn(n.Value)
	}
	switch n.Tag {
	case longTagPrefix + "str":
		return n.Value, nil
	case longTagPrefix + "null":
		return nil, nil
	case longTagPrefix + "bool":
		if b, ok := parseBool(n.Value); ok {
			return b, nil
		}
		return n.Value, nil
	case longTagPrefix + "int":
		if i, ok := parseInt(n.Value); ok {
			return i, nil
		}
		return n.Value, nil
	case longTagPrefix + "float":
		if f, ok := parseFloat(n.Value); ok {
			return f, nil
		}
		return n.Value, nil
	case longTagPrefix + "binary":
		data, err := base64.StdEncoding.DecodeString(stripSpace(n.Value))
		if err != nil {
			return n.Value, nil
		}
		return data, nil
	case longTagPrefix + "timestamp":
		if t, ok := parseTimestamp(n.Value); ok {
			return t, nil
		}
		return n.Value, nil
	}
	return r.unknownTag(n.Tag, n.Value, n.Line, n.Column)
}

func (r *resolver) resolveSequence(n *parser.Sequence) (any, error) {
	items := make([]any, 0, len(n.Items))
	for _, it := range n.Items {
		v, err := r.resolve(it)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}

	tag := n.Tag
	if tag == "" || tag == "!" || tag == longTagPrefix+"seq" {
		return items, nil
	}
	if fn, ok := r.reg.lookup(tag); ok {
		return fn(items)
	}
	if tag == longTagPrefix+"omap" {
		o := &Omap{}
		for i, it := range items {
			m, ok := it.(*Map)
			if !ok || m.Len() != 1 {
				line, col := n.Items[i].Pos()
				return nil, &parser.StructuralError{
					Msg: "omap entry must be a single-key mapping", Line: line, Column: col,
				}
			}
			o.pairs = append(o.pairs, m.pairs[0])
		}
		return o, nil
	}
	return r.unknownTag(tag, items, n.Line, n.Column)
}

func (r *resolver) resolveMapping(n *parser.Mapping) (any, error) {
	m := &Map{}
	for _, pair := range n.Pairs {
		k, err := r.resolve(pair.Key)
		if err != nil {
			return nil, err
		}
		v, err := r.resolve(pair.Value)
		if err != nil {
			return nil, err
		}
		m.append(k, v)
	}

	tag := n.Tag
	if tag == "" || tag == "!" || tag == longTagPrefix+"map" {
		return m, nil
	}
	if fn, ok := r.reg.lookup(tag); ok {
		return fn(m)
	}
	if tag == longTagPrefix+"set" {
		set := &Set{}
		for i, p := range m.pairs {
			if p.Value != nil {
				line, col := n.Pairs[i].Value.Pos()
				return nil, &parser.StructuralError{
					Msg: "set entry must not have a value", Line: line, Column: col,
				}
			}
			if set.Has(p.Key) {
				line, col := n.Pairs[i].Key.Pos()
				return nil, &parser.StructuralError{
					Msg: "duplicate key in set", Line: line, Column: col,
				}
			}
			set.values = append(set.values, p.Key)
		}
		return set, nil
	}
	return r.unknownTag(tag, m, n.Line, n.Column)
}

func (r *resolver) unknownTag(tag string, value any, line, col int) (any, error) {
	if r.reg.strict {
		return nil, &UnsupportedTagError{Tag: tag, Line: line, Column: col}
	}
	return TaggedValue{Tag: tag, Value: value}, nil
}

// implicitResolve runs the core-schema cascade over a plain scalar:
// null, bool, int, float, timestamp, and finally string. It never fails;
// anything unrecognized is a string.
func implicitResolve(s string) any {
	switch s {
	case "", "~", "null", "Null", "NULL":
		return nil
	}
	if b, ok := parseBool(s); ok {
		return b
	}
	if i, ok := parseInt(s); ok {
		return i
	}
	if f, ok := parseFloat(s); ok {
		return f
	}
	if t, ok := parseTimestamp(s); ok {
		return t
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE", "yes", "Yes", "YES", "on", "On", "ON":
		return true, true
	case "false", "False", "FALSE", "no", "No", "NO", "off", "Off", "OFF":
		return false, true
	}
	return false, false
}

var (
	decIntRe = regexp.MustCompile(`^[-+]?[0-9]+$`)
	hexIntRe = regexp.MustCompile(`^[-+]?0x[0-9a-fA-F]+$`)
	octIntRe = regexp.MustCompile(`^[-+]?0o[0-7]+$`)
)

// parseInt recognizes decimal, 0x hexadecimal and 0o octal integers. A value
// outside the int64 range is not an integer here; the cascade picks it up as
// a float instead.
func parseInt(s string) (int64, bool) {
	if decIntRe.MatchString(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}
	if hexIntRe.MatchString(s) || octIntRe.MatchString(s) {
		v, err := strconv.ParseInt(s, 0, 64)
		return v, err == nil
	}
	return 0, false
}

var floatRe = regexp.MustCompile(`^[-+]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][-+]?[0-9]+)?$`)

func parseFloat(s string) (float64, bool) {
	switch s {
	case ".inf", "+.inf", ".Inf", "+.Inf", ".INF", "+.INF":
		return math.Inf(1), true
	case "-.inf", "-.Inf", "-.INF":
		return math.Inf(-1), true
	case ".nan", ".NaN", ".NAN":
		return math.NaN(), true
	}
	if !floatRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

var (
	dateRe = regexp.MustCompile(`^([0-9]{4})-([0-9]{1,2})-([0-9]{1,2})$`)
	tsRe   = regexp.MustCompile(`^([0-9]{4})-([0-9]{1,2})-([0-9]{1,2})` +
		`(?:[Tt]|[ \t]+)` +
		`([0-9]{1,2}):([0-9]{2}):([0-9]{2})(\.[0-9]*)?` +
		`(?:[ \t]*(Z|[-+][0-9]{1,2}(?::?[0-9]{2})?))?$`)
)

// parseTimestamp recognizes the three timestamp forms: a bare date (midnight
// UTC), the canonical "T"-separated form, and the space-separated form with
// an optional UTC offset. A missing offset means UTC.
func parseTimestamp(s string) (time.Time, bool) {
	if m := dateRe.FindStringSubmatch(s); m != nil {
		y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validDate(y, mo, d) {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
	}

	m := tsRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
	hh, mi, ss := atoi(m[4]), atoi(m[5]), atoi(m[6])
	if !validDate(y, mo, d) || hh > 23 || mi > 59 || ss > 60 {
		return time.Time{}, false
	}

	nanos := 0
	if frac := m[7]; frac != "" {
		digits := frac[1:]
		if len(digits) > 9 {
			digits = digits[:9]
		}
		nanos = atoi(digits)
		for i := len(digits); i < 9; i++ {
			nanos *= 10
		}
	}

	loc := time.UTC
	if off := m[8]; off != "" && off != "Z" {
		sign := 1
		if off[0] == '-' {
			sign = -1
		}
		rest := off[1:]
		var oh, om int
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			oh, om = atoi(rest[:i]), atoi(rest[i+1:])
		} else if len(rest) > 2 {
			oh, om = atoi(rest[:len(rest)-2]), atoi(rest[len(rest)-2:])
		} else {
			oh = atoi(rest)
		}
		loc = time.FixedZone("", sign*(oh*3600+om*60))
	}

	return time.Date(y, time.Month(mo), d, hh, mi, ss, nanos, loc), true
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func validDate(y, mo, d int) bool {
	return y >= 1 && mo >= 1 && mo <= 12 && d >= 1 && d <= 31
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
