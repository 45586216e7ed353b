package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_Key(t *testing.T) {
	tests := []struct {
		tag  Tag
		want string
	}{
		{PixelData, "x7fe00010"},
		{TransferSyntaxUID, "x00020010"},
		{New(0x0008, 0x0005), "x00080005"},
		{New(0xFFFE, 0xE0DD), "xfffee0dd"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.tag.Key())
	}
}

func TestTag_FromKey(t *testing.T) {
	for _, in := range []Tag{PixelData, FileMetaInformationGroupLength, New(0xABCD, 0x1234)} {
		out, ok := FromKey(in.Key())
		require.True(t, ok)
		assert.Equal(t, in, out)
	}

	for _, bad := range []string{"", "x7fe0001", "7fe00010x", "xzzzz0010"} {
		_, ok := FromKey(bad)
		assert.False(t, ok, "key %q should not parse", bad)
	}
}

func TestTag_FromString(t *testing.T) {
	out, ok := FromString("(7FE0,0010)")
	require.True(t, ok)
	assert.Equal(t, PixelData, out)

	_, ok = FromString("7FE00010")
	assert.False(t, ok)
}

func TestTag_String(t *testing.T) {
	assert.Equal(t, "(7FE0,0010)", PixelData.String())
	assert.Equal(t, "(0002,0010)", TransferSyntaxUID.String())
}

func TestTag_IsDelimiter(t *testing.T) {
	assert.True(t, Item.IsDelimiter())
	assert.True(t, ItemDelimitationItem.IsDelimiter())
	assert.True(t, SequenceDelimitationItem.IsDelimiter())
	assert.False(t, PixelData.IsDelimiter())
	assert.False(t, New(0xFFFE, 0x0001).IsDelimiter())
}

func TestDict_Lookup(t *testing.T) {
	entry, ok := Lookup(PatientName)
	require.True(t, ok)
	assert.Equal(t, "PN", entry.VR)
	assert.Equal(t, "PatientName", entry.Keyword)

	entry, ok = Lookup(Rows)
	require.True(t, ok)
	assert.Equal(t, "US", entry.VR)

	_, ok = Lookup(New(0x0009, 0x0001)) // private
	assert.False(t, ok)
}

func TestDict_ByKeyword(t *testing.T) {
	tg, ok := ByKeyword("PixelData")
	require.True(t, ok)
	assert.Equal(t, PixelData, tg)

	_, ok = ByKeyword("NoSuchKeyword")
	assert.False(t, ok)
}

func TestDict_GroupName(t *testing.T) {
	assert.Equal(t, "Meta Element", GroupName(0x0002))
	assert.Equal(t, "Image Presentation", GroupName(0x0028))
	assert.Equal(t, "Pixel Data", GroupName(0x7FE0))
	assert.Equal(t, "", GroupName(0x0009))
}
