package yaml

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	yamlv3 "gopkg.in/yaml.v3"
)

func newV3Decoder(t *testing.T, input string) *yamlv3.Decoder {
	t.Helper()
	return yamlv3.NewDecoder(strings.NewReader(input))
}

// Differential tests against gopkg.in/yaml.v3 on the YAML subset where the
// two decoders agree. yaml.v3 is a test-only dependency.

// normalizeV3 maps yaml.v3 output onto the shapes toPlain produces: int64
// for integers, recursing into maps and slices.
func normalizeV3(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = normalizeV3(e)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeV3(e)
		}
		return out
	case int:
		return int64(x)
	}
	return v
}

func compareWithV3(t *testing.T, input string) {
	t.Helper()

	ours, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var theirs any
	if err := yamlv3.Unmarshal([]byte(input), &theirs); err != nil {
		t.Fatalf("yaml.v3 Unmarshal: %v", err)
	}

	if diff := cmp.Diff(normalizeV3(theirs), toPlain(ours)); diff != "" {
		t.Errorf("decoders disagree on %q (-yaml.v3 +ours):\n%s", input, diff)
	}
}

func TestAgainstV3Scalars(t *testing.T) {
	compareWithV3(t, "str: hello world\nint: 42\nneg: -17\nfloat: 3.14\nexp: 1.2e3\nbool: true\nnope: false\nnothing: null\ntilde: ~\n")
}

func TestAgainstV3QuotedScalars(t *testing.T) {
	compareWithV3(t, "a: \"quoted 123\"\nb: 'single 456'\nc: \"with\\nescapes\\t!\"\n")
}

func TestAgainstV3Nesting(t *testing.T) {
	compareWithV3(t, `server:
  host: localhost
  ports:
    - 8080
    - 8443
  tls:
    enabled: true
    cert: /etc/ssl/cert.pem
clients:
  - name: a
    retries: 3
  - name: b
    retries: 5
`)
}

func TestAgainstV3Flow(t *testing.T) {
	compareWithV3(t, "list: [1, 2, 3]\nmap: {a: x, b: y}\nmixed: [a, {b: c}, [d]]\n")
}

func TestAgainstV3Anchors(t *testing.T) {
	compareWithV3(t, "defaults: &d\n  retries: 3\n  timeout: 30\nprod: *d\n")
}

func TestAgainstV3BlockScalars(t *testing.T) {
	compareWithV3(t, "lit: |\n  line one\n  line two\nfolded: >\n  folds into\n  one line\nstrip: |-\n  no trailing break\n")
}

func TestAgainstV3SequenceOfMappings(t *testing.T) {
	compareWithV3(t, "- item: Super Hoop\n  quantity: 1\n- item: Basketball\n  quantity: 4\n")
}

func TestAgainstV3DeepIndentation(t *testing.T) {
	compareWithV3(t, "a:\n  b:\n    c:\n      d: bottom\n  e: back up\n")
}

func TestAgainstV3MultiDocument(t *testing.T) {
	input := "---\ndoc: 1\n---\ndoc: 2\n"

	ours, err := DecodeAll(input)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}

	var first, second any
	dec := newV3Decoder(t, input)
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("yaml.v3 first: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("yaml.v3 second: %v", err)
	}

	if diff := cmp.Diff(normalizeV3(first), toPlain(ours[0])); diff != "" {
		t.Errorf("first document (-yaml.v3 +ours):\n%s", diff)
	}
	if diff := cmp.Diff(normalizeV3(second), toPlain(ours[1])); diff != "" {
		t.Errorf("second document (-yaml.v3 +ours):\n%s", diff)
	}
}
