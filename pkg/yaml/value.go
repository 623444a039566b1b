package yaml

import (
	"bytes"
	"encoding/json"
	"time"
)

// MapPair is one key/value entry of a decoded mapping.
type MapPair struct {
	Key   any
	Value any
}

// Map is a decoded mapping with document order preserved. Keys may be any
// decoded value, including composite ones (sequences, maps), so lookups use
// structural equality rather than Go map semantics.
type Map struct {
	pairs []MapPair
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.pairs) }

// Pairs returns the entries in document order. The slice must not be
// modified.
func (m *Map) Pairs() []MapPair { return m.pairs }

// Keys returns the keys in document order.
func (m *Map) Keys() []any {
	keys := make([]any, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Get looks up a key by structural equality. When the document repeated a
// key, the last occurrence wins.
func (m *Map) Get(key any) (any, bool) {
	for i := len(m.pairs) - 1; i >= 0; i-- {
		if Equal(m.pairs[i].Key, key) {
			return m.pairs[i].Value, true
		}
	}
	return nil, false
}

func (m *Map) append(key, value any) {
	m.pairs = append(m.pairs, MapPair{Key: key, Value: value})
}

// MarshalJSON renders the map as a JSON object in document order. Non-string
// keys are rendered through their JSON form.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONKey(buf *bytes.Buffer, key any) error {
	if s, ok := key.(string); ok {
		b, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	// JSON object keys must be strings; render the key's JSON and quote it.
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	q, err := json.Marshal(string(b))
	if err != nil {
		return err
	}
	buf.Write(q)
	return nil
}

// Set is a decoded !!set: an ordered collection of unique values.
type Set struct {
	values []any
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.values) }

// Values returns the members in document order.
func (s *Set) Values() []any { return s.values }

// Has reports membership by structural equality.
func (s *Set) Has(v any) bool {
	for _, x := range s.values {
		if Equal(x, v) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the set as a JSON array.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}

// Omap is a decoded !!omap: an ordered sequence of single-entry mappings.
type Omap struct {
	pairs []MapPair
}

// Len returns the number of entries.
func (o *Omap) Len() int { return len(o.pairs) }

// Pairs returns the entries in document order.
func (o *Omap) Pairs() []MapPair { return o.pairs }

// MarshalJSON renders the omap as a JSON array of single-entry objects.
func (o *Omap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range o.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeJSONKey(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// TaggedValue wraps a value whose explicit tag has no registered resolver.
// It keeps the tag so callers can dispatch on it themselves.
type TaggedValue struct {
	Tag   string
	Value any
}

// MarshalJSON renders only the wrapped value.
func (t TaggedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Value)
}

// Equal reports deep structural equality between two decoded values. It is
// the comparison used for Map.Get, Set membership and duplicate detection,
// so composite keys compare by content, not identity. Map comparison is
// order-insensitive.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, p := range av.pairs {
			v, found := bv.Get(p.Key)
			if !found || !Equal(p.Value, v) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, x := range av.values {
			if !bv.Has(x) {
				return false
			}
		}
		return true
	case *Omap:
		bv, ok := b.(*Omap)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, p := range av.pairs {
			if !Equal(p.Key, bv.pairs[i].Key) || !Equal(p.Value, bv.pairs[i].Value) {
				return false
			}
		}
		return true
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case TaggedValue:
		bv, ok := b.(TaggedValue)
		return ok && av.Tag == bv.Tag && Equal(av.Value, bv.Value)
	}
	return a == b
}
