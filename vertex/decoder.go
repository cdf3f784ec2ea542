// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"encoding/binary"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/ge/gecore"
)

// FormatKey is the full decoder cache key: the layout bits of a vertex format
// tag with the UV generation mode folded into the otherwise unused high bits.
// Tags that differ only in mode bits must not share a decoder, so the mode is
// part of the key.
type FormatKey uint32

// MakeKey builds the cache key for a format tag under the given UV mode.
func MakeKey(format gecore.VertexFormat, uvgen gecore.UVGenMode) FormatKey {
	return FormatKey(format&gecore.LayoutMask) | FormatKey(uvgen)<<24
}

// Format returns the vertex format layout bits of the key.
func (k FormatKey) Format() gecore.VertexFormat {
	return gecore.VertexFormat(k) & gecore.LayoutMask
}

// UVGen returns the UV generation mode folded into the key.
func (k FormatKey) UVGen() gecore.UVGenMode {
	return gecore.UVGenMode(k >> 24)
}

// Decoder converts one vertex format's packed source bytes into canonical
// Vertex records. Decoders are immutable once built; build them through a
// DecoderCache rather than directly.
type Decoder struct {
	key     FormatKey
	through bool

	// Component byte offsets within one source vertex; -1 when absent.
	weightOff int
	texOff    int
	colOff    int
	nrmOff    int
	posOff    int

	weightCount int
	size        int
}

// NewDecoder computes the source byte layout for the given key.
//
// Components are packed in stream order (weights, texture coordinates,
// color, normal, position), each aligned to its element size, and the vertex
// size is padded to the largest element alignment.
func NewDecoder(key FormatKey) *Decoder {
	f := key.Format()
	d := &Decoder{
		key:       key,
		through:   f.IsThrough(),
		weightOff: -1,
		texOff:    -1,
		colOff:    -1,
		nrmOff:    -1,
	}

	off := 0
	maxAlign := 1
	place := func(elemSize, count int) int {
		if elemSize > maxAlign {
			maxAlign = elemSize
		}
		off = align(off, elemSize)
		p := off
		off += elemSize * count
		return p
	}

	if f.HasWeights() {
		d.weightCount = f.WeightCount()
		d.weightOff = place(elemSize(f.Weight()>>gecore.WeightShift), d.weightCount)
	}
	if f.Tex() != gecore.TexNone {
		d.texOff = place(elemSize(f.Tex()>>gecore.TexShift), 2)
	}
	if f.Col() != gecore.ColNone {
		if f.Col() == gecore.Col8888 {
			d.colOff = place(4, 1)
		} else {
			d.colOff = place(2, 1)
		}
	}
	if f.Nrm() != gecore.NrmNone {
		d.nrmOff = place(elemSize(f.Nrm()>>gecore.NrmShift), 3)
	}
	d.posOff = place(elemSize(f.Pos()>>gecore.PosShift), 3)

	d.size = align(off, maxAlign)
	return d
}

// elemSize maps a 2-bit type field value (1=int8/uint8, 2=int16, 3=float32)
// to its byte size.
func elemSize(field gecore.VertexFormat) int {
	switch field {
	case 2:
		return 2
	case 3:
		return 4
	default:
		return 1
	}
}

func align(off, a int) int {
	return (off + a - 1) &^ (a - 1)
}

// Key returns the cache key the decoder was built for.
func (d *Decoder) Key() FormatKey { return d.key }

// Through reports whether the format bypasses transform: positions are
// screen pixels and UVs are texels.
func (d *Decoder) Through() bool { return d.through }

// HasUV reports whether the format carries texture coordinates.
func (d *Decoder) HasUV() bool { return d.texOff >= 0 }

// VertexSize returns the source byte stride of one vertex. Submit uses it to
// report bytes consumed without decoding.
func (d *Decoder) VertexSize() int { return d.size }

// Decode fills dst with the canonical form of source vertices
// [lowerBound, upperBound]. dst must have room for
// upperBound-lowerBound+1 records. It returns the number of vertices decoded.
//
// Decode reads only src and writes only dst; it is safe to call with the
// same decoder from any single goroutine at a time.
func (d *Decoder) Decode(dst []Vertex, src []byte, lowerBound, upperBound int) int {
	n := upperBound - lowerBound + 1
	if n <= 0 {
		return 0
	}
	f := d.key.Format()

	for i := 0; i < n; i++ {
		v := &dst[i]
		*v = Vertex{}
		base := (lowerBound + i) * d.size

		if d.weightOff >= 0 {
			d.decodeWeights(v, src[base+d.weightOff:], f)
		}
		if d.texOff >= 0 {
			d.decodeUV(v, src[base+d.texOff:], f)
		}
		if d.colOff >= 0 {
			decodeColor(v, src[base+d.colOff:], f)
		}
		if d.nrmOff >= 0 {
			decodeNormal(v, src[base+d.nrmOff:], f)
		}
		d.decodePos(v, src[base+d.posOff:], f)
	}
	return n
}

func (d *Decoder) decodePos(v *Vertex, b []byte, f gecore.VertexFormat) {
	switch f.Pos() {
	case gecore.PosInt8:
		x, y, z := float32(int8(b[0])), float32(int8(b[1])), float32(int8(b[2]))
		if d.through {
			v.Pos = f32.Vec3{x, y, z}
		} else {
			v.Pos = f32.Vec3{x * (1.0 / 128), y * (1.0 / 128), z * (1.0 / 128)}
		}
	case gecore.PosInt16:
		x := float32(int16(binary.LittleEndian.Uint16(b)))
		y := float32(int16(binary.LittleEndian.Uint16(b[2:])))
		if d.through {
			// Through-mode depth is unsigned.
			z := float32(binary.LittleEndian.Uint16(b[4:]))
			v.Pos = f32.Vec3{x, y, z}
		} else {
			z := float32(int16(binary.LittleEndian.Uint16(b[4:])))
			v.Pos = f32.Vec3{x * (1.0 / 32768), y * (1.0 / 32768), z * (1.0 / 32768)}
		}
	case gecore.PosFloat:
		v.Pos = f32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(b)),
			math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		}
	}
}

func (d *Decoder) decodeUV(v *Vertex, b []byte, f gecore.VertexFormat) {
	switch f.Tex() {
	case gecore.TexUint8:
		u, t := float32(b[0]), float32(b[1])
		if d.through {
			v.UV = f32.Vec2{u, t}
		} else {
			v.UV = f32.Vec2{u * (1.0 / 128), t * (1.0 / 128)}
		}
	case gecore.TexInt16:
		u := float32(int16(binary.LittleEndian.Uint16(b)))
		t := float32(int16(binary.LittleEndian.Uint16(b[2:])))
		if d.through {
			v.UV = f32.Vec2{u, t}
		} else {
			v.UV = f32.Vec2{u * (1.0 / 32768), t * (1.0 / 32768)}
		}
	case gecore.TexFloat:
		v.UV = f32.Vec2{
			math.Float32frombits(binary.LittleEndian.Uint32(b)),
			math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		}
	}
}

func decodeColor(v *Vertex, b []byte, f gecore.VertexFormat) {
	switch f.Col() {
	case gecore.Col565:
		c := binary.LittleEndian.Uint16(b)
		v.Color = f32.Vec4{
			float32(c&0x1F) * (1.0 / 31),
			float32(c>>5&0x3F) * (1.0 / 63),
			float32(c>>11&0x1F) * (1.0 / 31),
			1,
		}
	case gecore.Col5551:
		c := binary.LittleEndian.Uint16(b)
		v.Color = f32.Vec4{
			float32(c&0x1F) * (1.0 / 31),
			float32(c>>5&0x1F) * (1.0 / 31),
			float32(c>>10&0x1F) * (1.0 / 31),
			float32(c >> 15),
		}
	case gecore.Col4444:
		c := binary.LittleEndian.Uint16(b)
		v.Color = f32.Vec4{
			float32(c&0xF) * (1.0 / 15),
			float32(c>>4&0xF) * (1.0 / 15),
			float32(c>>8&0xF) * (1.0 / 15),
			float32(c>>12&0xF) * (1.0 / 15),
		}
	case gecore.Col8888:
		v.Color = f32.Vec4{
			float32(b[0]) * (1.0 / 255),
			float32(b[1]) * (1.0 / 255),
			float32(b[2]) * (1.0 / 255),
			float32(b[3]) * (1.0 / 255),
		}
	}
}

func decodeNormal(v *Vertex, b []byte, f gecore.VertexFormat) {
	switch f.Nrm() {
	case gecore.NrmInt8:
		v.Normal = f32.Vec3{
			float32(int8(b[0])) * (1.0 / 128),
			float32(int8(b[1])) * (1.0 / 128),
			float32(int8(b[2])) * (1.0 / 128),
		}
	case gecore.NrmInt16:
		v.Normal = f32.Vec3{
			float32(int16(binary.LittleEndian.Uint16(b))) * (1.0 / 32768),
			float32(int16(binary.LittleEndian.Uint16(b[2:]))) * (1.0 / 32768),
			float32(int16(binary.LittleEndian.Uint16(b[4:]))) * (1.0 / 32768),
		}
	case gecore.NrmFloat:
		v.Normal = f32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(b)),
			math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		}
	}
}

func (d *Decoder) decodeWeights(v *Vertex, b []byte, f gecore.VertexFormat) {
	switch f.Weight() {
	case gecore.WeightUint8:
		for i := 0; i < d.weightCount; i++ {
			v.Weights[i] = float32(b[i]) * (1.0 / 128)
		}
	case gecore.WeightInt16:
		for i := 0; i < d.weightCount; i++ {
			v.Weights[i] = float32(int16(binary.LittleEndian.Uint16(b[i*2:]))) * (1.0 / 32768)
		}
	case gecore.WeightFloat:
		for i := 0; i < d.weightCount; i++ {
			v.Weights[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
}
