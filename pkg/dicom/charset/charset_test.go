package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownTerms(t *testing.T) {
	for term := range lookupLabelByTerm {
		coding, err := Lookup(term)
		require.NoError(t, err, "term %q", term)
		require.NotNil(t, coding, "term %q", term)
	}
}

func TestLookup_Unknown(t *testing.T) {
	coding, err := Lookup("ISO_IR 999")
	assert.Error(t, err)
	assert.NotNil(t, coding, "unknown terms fall back to the default decoder")
}

func TestLookup_Unsupported(t *testing.T) {
	for _, term := range []string{"ISO 2022 IR 149", "ISO 2022 IR 58"} {
		coding, err := Lookup(term)
		assert.Error(t, err, "term %q is deliberately unsupported", term)
		assert.NotNil(t, coding)
	}
}

func TestDecode_Latin1(t *testing.T) {
	coding, err := Lookup("ISO_IR 100")
	require.NoError(t, err)

	// "café" in ISO-8859-1
	s, err := Decode(coding, []byte{0x63, 0x61, 0x66, 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestEncode_RoundTrip(t *testing.T) {
	coding, err := Lookup("ISO_IR 100")
	require.NoError(t, err)

	b, err := Encode(coding, "café")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x63, 0x61, 0x66, 0xE9}, b)

	s, err := Decode(coding, b)
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestDecode_DefaultIsTransparentASCII(t *testing.T) {
	s, err := Decode(nil, []byte("MONOCHROME2"))
	require.NoError(t, err)
	assert.Equal(t, "MONOCHROME2", s)
}
