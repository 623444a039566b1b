package yaml

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitNull(t *testing.T) {
	for _, s := range []string{"", "~", "null", "Null", "NULL"} {
		if v := implicitResolve(s); v != nil {
			t.Errorf("implicitResolve(%q) = %v, want nil", s, v)
		}
	}
}

func TestImplicitBool(t *testing.T) {
	trues := []string{"true", "True", "TRUE", "yes", "Yes", "YES", "on", "On", "ON"}
	falses := []string{"false", "False", "FALSE", "no", "No", "NO", "off", "Off", "OFF"}
	for _, s := range trues {
		if v := implicitResolve(s); v != true {
			t.Errorf("implicitResolve(%q) = %v (%T), want true", s, v, v)
		}
	}
	for _, s := range falses {
		if v := implicitResolve(s); v != false {
			t.Errorf("implicitResolve(%q) = %v (%T), want false", s, v, v)
		}
	}
	// Near-misses stay strings
	for _, s := range []string{"yEs", "tRue", "onn"} {
		if _, ok := implicitResolve(s).(string); !ok {
			t.Errorf("implicitResolve(%q) should stay a string", s)
		}
	}
}

func TestImplicitInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"12345", 12345},
		{"+12345", 12345},
		{"-42", -42},
		{"0xC", 12},
		{"0xff", 255},
		{"-0x1F", -31},
		{"0o14", 12},
		{"-0o7", -7},
		{"010", 10}, // leading zero is still decimal
	}
	for _, tt := range tests {
		v := implicitResolve(tt.in)
		got, ok := v.(int64)
		if !ok {
			t.Errorf("implicitResolve(%q) = %v (%T), want int64", tt.in, v, v)
			continue
		}
		if got != tt.want {
			t.Errorf("implicitResolve(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestImplicitIntOverflowBecomesFloat(t *testing.T) {
	v := implicitResolve("92233720368547758070")
	if _, ok := v.(float64); !ok {
		t.Errorf("overflowing integer = %v (%T), want float64", v, v)
	}
}

func TestImplicitFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3.14", 3.14},
		{"-0.5", -0.5},
		{"1e3", 1000},
		{"1.2e-3", 0.0012},
		{"685230.15", 685230.15},
		{".5", 0.5},
	}
	for _, tt := range tests {
		v := implicitResolve(tt.in)
		got, ok := v.(float64)
		if !ok {
			t.Errorf("implicitResolve(%q) = %v (%T), want float64", tt.in, v, v)
			continue
		}
		if got != tt.want {
			t.Errorf("implicitResolve(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestImplicitInfNaN(t *testing.T) {
	if v := implicitResolve(".inf"); v != math.Inf(1) {
		t.Errorf(".inf = %v", v)
	}
	if v := implicitResolve("-.inf"); v != math.Inf(-1) {
		t.Errorf("-.inf = %v", v)
	}
	if v := implicitResolve("+.INF"); v != math.Inf(1) {
		t.Errorf("+.INF = %v", v)
	}
	f, ok := implicitResolve(".nan").(float64)
	if !ok || !math.IsNaN(f) {
		t.Errorf(".nan = %v", f)
	}
}

func TestImplicitTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2001-12-15T02:59:43.1Z", time.Date(2001, 12, 15, 2, 59, 43, 100000000, time.UTC)},
		{"2001-12-14t21:59:43.10-05:00", time.Date(2001, 12, 14, 21, 59, 43, 100000000, time.FixedZone("", -5*3600))},
		{"2001-12-14 21:59:43.10 -5", time.Date(2001, 12, 14, 21, 59, 43, 100000000, time.FixedZone("", -5*3600))},
		{"2002-12-14", time.Date(2002, 12, 14, 0, 0, 0, 0, time.UTC)},
		{"2001-12-15 02:59:43", time.Date(2001, 12, 15, 2, 59, 43, 0, time.UTC)},
	}
	for _, tt := range tests {
		v := implicitResolve(tt.in)
		got, ok := v.(time.Time)
		if !ok {
			t.Errorf("implicitResolve(%q) = %v (%T), want time.Time", tt.in, v, v)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("implicitResolve(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	// The canonical and offset forms of the same instant compare equal.
	a := implicitResolve("2001-12-15T02:59:43.1Z").(time.Time)
	b := implicitResolve("2001-12-14 21:59:43.10 -5").(time.Time)
	if !a.Equal(b) {
		t.Errorf("instants differ: %v vs %v", a, b)
	}
}

func TestImplicitString(t *testing.T) {
	for _, s := range []string{"hello", "12 monkeys", "2001-13-45", "0x", "1.2.3", "-", "y"} {
		v := implicitResolve(s)
		if got, ok := v.(string); !ok || got != s {
			t.Errorf("implicitResolve(%q) = %v (%T), want the string itself", s, v, v)
		}
	}
}

func TestQuotedScalarsStayStrings(t *testing.T) {
	v, err := Decode("a: \"123\"\nb: 'true'\nc: 123\n")
	require.NoError(t, err)
	m := v.(*Map)

	a, _ := m.Get("a")
	assert.Equal(t, "123", a)
	b, _ := m.Get("b")
	assert.Equal(t, "true", b)
	c, _ := m.Get("c")
	assert.Equal(t, int64(123), c)
}

func TestBlockScalarsStayStrings(t *testing.T) {
	v, err := Decode("n: |\n  123\n")
	require.NoError(t, err)
	m := v.(*Map)
	n, _ := m.Get("n")
	assert.Equal(t, "123\n", n)
}

func TestExplicitStrTagSuppressesResolution(t *testing.T) {
	v, err := Decode("a: !!str 123\n")
	require.NoError(t, err)
	m := v.(*Map)
	a, _ := m.Get("a")
	assert.Equal(t, "123", a)
}

func TestExplicitIntTagOnQuoted(t *testing.T) {
	v, err := Decode("a: !!int \"42\"\n")
	require.NoError(t, err)
	m := v.(*Map)
	a, _ := m.Get("a")
	assert.Equal(t, int64(42), a)
}

func TestExplicitTagParseFailureDegradesToString(t *testing.T) {
	v, err := Decode("a: !!int notanumber\n")
	require.NoError(t, err)
	m := v.(*Map)
	a, _ := m.Get("a")
	assert.Equal(t, "notanumber", a)
}

func TestBinaryTag(t *testing.T) {
	v, err := Decode("data: !!binary aGVsbG8=\n")
	require.NoError(t, err)
	m := v.(*Map)
	data, _ := m.Get("data")
	assert.Equal(t, []byte("hello"), data)
}

func TestBinaryTagMultiline(t *testing.T) {
	v, err := Decode("data: !!binary |\n  aGVs\n  bG8=\n")
	require.NoError(t, err)
	m := v.(*Map)
	data, _ := m.Get("data")
	assert.Equal(t, []byte("hello"), data)
}

func TestSetTag(t *testing.T) {
	v, err := Decode("--- !!set\n? red\n? green\n? blue\n")
	require.NoError(t, err)
	set, ok := v.(*Set)
	require.True(t, ok, "value type = %T", v)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Has("green"))
	assert.False(t, set.Has("purple"))
}

func TestSetDuplicateKey(t *testing.T) {
	_, err := Decode("--- !!set\n? red\n? red\n")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "duplicate key")
}

func TestSetEntryWithValue(t *testing.T) {
	_, err := Decode("--- !!set\nred: 1\n")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
}

func TestOmapTag(t *testing.T) {
	v, err := Decode("--- !!omap\n- a: 1\n- b: 2\n")
	require.NoError(t, err)
	o, ok := v.(*Omap)
	require.True(t, ok, "value type = %T", v)
	require.Equal(t, 2, o.Len())
	assert.Equal(t, "a", o.Pairs()[0].Key)
	assert.Equal(t, int64(2), o.Pairs()[1].Value)
}

func TestOmapRejectsMultiKeyEntry(t *testing.T) {
	_, err := Decode("--- !!omap\n- a: 1\n  b: 2\n")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "single-key")
}

func TestAliasIdentity(t *testing.T) {
	v, err := Decode("base: &b\n  x: 1\nleft: *b\nright: *b\n")
	require.NoError(t, err)
	m := v.(*Map)
	left, _ := m.Get("left")
	right, _ := m.Get("right")
	base, _ := m.Get("base")
	// All three references resolve to the same *Map value.
	require.Same(t, base.(*Map), left.(*Map))
	require.Same(t, left.(*Map), right.(*Map))
}

func TestNonSpecificTagForcesString(t *testing.T) {
	v, err := Decode("a: ! 123\n")
	require.NoError(t, err)
	m := v.(*Map)
	a, _ := m.Get("a")
	assert.Equal(t, "123", a)
}
