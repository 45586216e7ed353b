package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUID(t *testing.T) {
	a := NewUID()
	b := NewUID()
	assert.True(t, strings.HasPrefix(a, "2.25."))
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 64, "UIDs must fit the UI VR limit")
}

func TestHashUID_Deterministic(t *testing.T) {
	a := HashUID("dwv.go")
	b := HashUID("dwv.go")
	c := HashUID("other")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "2.25."))
	assert.LessOrEqual(t, len(a), 64)
}

func TestMd5ThenHex(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Md5ThenHex(nil))
	assert.Len(t, Md5ThenHex([]byte("abc")), 32)
}
