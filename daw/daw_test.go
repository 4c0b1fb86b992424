package daw

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestDecodeColorPackedInt(t *testing.T) {
	c, err := DecodeColor(int(0xFF8040))
	assert.Equal(t, err, nil)
	assert.Equal(t, c, Color{R: 0xFF, G: 0x80, B: 0x40})
}

func TestDecodeColorStruct(t *testing.T) {
	c, err := DecodeColor([3]byte{10, 20, 30})
	assert.Equal(t, err, nil)
	assert.Equal(t, c, Color{R: 10, G: 20, B: 30})
}

func TestDecodeColorAlreadyDecoded(t *testing.T) {
	want := Color{R: 1, G: 2, B: 3}
	c, err := DecodeColor(want)
	assert.Equal(t, err, nil)
	assert.Equal(t, c, want)
}

func TestDecodeColorUnknownShape(t *testing.T) {
	_, err := DecodeColor("not a color")
	assert.NotEqual(t, err, nil)
}
