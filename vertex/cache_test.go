package vertex

import (
	"testing"

	"github.com/gogpu/ge/gecore"
)

func TestDecoderCacheMemoizes(t *testing.T) {
	c := NewDecoderCache()
	key := MakeKey(gecore.PosFloat|gecore.TexFloat, gecore.UVGenCoords)

	d1 := c.Get(key)
	d2 := c.Get(key)
	if d1 != d2 {
		t.Error("Get() returned distinct decoders for the same key")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestDecoderCacheModeBitsDistinct(t *testing.T) {
	c := NewDecoderCache()
	format := gecore.PosFloat | gecore.TexFloat

	tests := []struct {
		name string
		a, b FormatKey
	}{
		{
			name: "through bit",
			a:    MakeKey(format, gecore.UVGenCoords),
			b:    MakeKey(format|gecore.Through, gecore.UVGenCoords),
		},
		{
			name: "uv generation mode",
			a:    MakeKey(format, gecore.UVGenCoords),
			b:    MakeKey(format, gecore.UVGenEnvMap),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a == tt.b {
				t.Fatal("keys unexpectedly equal")
			}
			if c.Get(tt.a) == c.Get(tt.b) {
				t.Error("formats differing only in mode bits shared a decoder")
			}
		})
	}
}

func TestDecoderCacheClear(t *testing.T) {
	c := NewDecoderCache()
	key := MakeKey(gecore.PosInt16, gecore.UVGenCoords)

	before := c.Get(key)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	after := c.Get(key)
	if before == after {
		t.Error("Clear() did not discard the cached decoder")
	}
}
