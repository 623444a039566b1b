package yaml

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderMultipleDocuments(t *testing.T) {
	d := NewDecoder("---\n- A\n---\n- B\n")

	v, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []any{"A"}, v)

	v, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, []any{"B"}, v)

	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderStopsOnBadDocumentByDefault(t *testing.T) {
	d := NewDecoder("---\nok: 1\n---\n? [\n---\nnever: reached\n")

	_, err := d.Next()
	require.NoError(t, err)

	_, err = d.Next()
	require.Error(t, err)
}

func TestDecoderSkipBadDocuments(t *testing.T) {
	d := NewDecoder("---\nfirst: 1\n---\n? [\n---\nthird: 3\n").SkipBadDocuments()

	v, err := d.Next()
	require.NoError(t, err)
	first, _ := v.(*Map).Get("first")
	assert.Equal(t, int64(1), first)

	v, err = d.Next()
	require.NoError(t, err)
	third, _ := v.(*Map).Get("third")
	assert.Equal(t, int64(3), third)

	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderSkipBadCoversResolutionErrors(t *testing.T) {
	input := "--- !!set\n? dup\n? dup\n---\nok: 1\n"
	d := NewDecoder(input).SkipBadDocuments()

	v, err := d.Next()
	require.NoError(t, err)
	ok, _ := v.(*Map).Get("ok")
	assert.Equal(t, int64(1), ok)
}

func TestDecoderReader(t *testing.T) {
	d := NewDecoderReader(strings.NewReader("a: 1\n"))
	v, err := d.Next()
	require.NoError(t, err)
	a, _ := v.(*Map).Get("a")
	assert.Equal(t, int64(1), a)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestDecoderReaderError(t *testing.T) {
	d := NewDecoderReader(failingReader{})
	_, err := d.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestDecodeSingleDocument(t *testing.T) {
	v, err := Decode("a: 1\n")
	require.NoError(t, err)
	require.IsType(t, &Map{}, v)
}

func TestDecodeRejectsMultipleDocuments(t *testing.T) {
	_, err := Decode("---\na: 1\n---\nb: 2\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single document")
}

func TestDecodeEmptyInput(t *testing.T) {
	v, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDecodeAll(t *testing.T) {
	docs, err := DecodeAll("---\n1\n---\n2\n---\n3\n")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, docs)
}

func TestDecodeReader(t *testing.T) {
	v, err := DecodeReader(strings.NewReader("x: y\n"))
	require.NoError(t, err)
	got, _ := v.(*Map).Get("x")
	assert.Equal(t, "y", got)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("a: 1\nb:\n  - x\n"))
	require.Error(t, Validate("a: [1, 2\n"))
	require.Error(t, Validate("a:\n\tb: 1\n"))
}

func TestDecoderLaziness(t *testing.T) {
	// The error in document three must not prevent reading documents one and
	// two.
	d := NewDecoder("---\n1\n---\n2\n---\n? [\n")

	v, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = d.Next()
	require.Error(t, err)
}

func TestDecoderAbandonedEarly(t *testing.T) {
	d := NewDecoder("---\nfirst: 1\n---\nsecond: 2\n")
	v, err := d.Next()
	require.NoError(t, err)
	first, _ := v.(*Map).Get("first")
	assert.Equal(t, int64(1), first)
	// Dropping the decoder here is fine; the second document is never parsed.
}
