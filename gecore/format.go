// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gecore

import "fmt"

// VertexFormat is the raw vertex type tag from the command stream. It encodes
// the byte layout of one source vertex as packed bit fields, plus the
// through-mode bit which changes how positions and texture coordinates are
// interpreted without changing the byte layout.
//
// Bit layout (low to high):
//
//	bits  0-1   texture coordinate type (TexNone/TexUint8/TexInt16/TexFloat)
//	bits  2-4   color type (ColNone or Col565/Col5551/Col4444/Col8888)
//	bits  5-6   normal type (NrmNone/NrmInt8/NrmInt16/NrmFloat)
//	bits  7-8   position type (PosInt8/PosInt16/PosFloat; 0 is reserved)
//	bits  9-10  skinning weight type (WeightNone/WeightUint8/WeightInt16/WeightFloat)
//	bits 11-12  index format (none/8-bit/16-bit)
//	bits 14-16  weight count minus one (meaningful only with a weight type)
//	bit  23     through mode (screen-space positions, texel UVs)
//
// Two byte-identical layouts that differ in the through bit are distinct
// formats and must not share a decoder.
type VertexFormat uint32

// Texture coordinate types (bits 0-1).
const (
	TexNone VertexFormat = iota << TexShift
	TexUint8
	TexInt16
	TexFloat
)

// Color types (bits 2-4). Values 1-3 are reserved by the wire format.
const (
	ColNone  VertexFormat = 0 << ColShift
	Col565   VertexFormat = 4 << ColShift
	Col5551  VertexFormat = 5 << ColShift
	Col4444  VertexFormat = 6 << ColShift
	Col8888  VertexFormat = 7 << ColShift
)

// Normal types (bits 5-6).
const (
	NrmNone VertexFormat = iota << NrmShift
	NrmInt8
	NrmInt16
	NrmFloat
)

// Position types (bits 7-8). A zero position field is invalid: every vertex
// carries a position.
const (
	PosInt8 VertexFormat = (iota + 1) << PosShift
	PosInt16
	PosFloat
)

// Weight types (bits 9-10).
const (
	WeightNone VertexFormat = iota << WeightShift
	WeightUint8
	WeightInt16
	WeightFloat
)

// Index formats (bits 11-12).
const (
	IdxNone VertexFormat = iota << IdxShift
	IdxUint8
	IdxUint16
)

// Field shifts and masks.
const (
	TexShift         = 0
	ColShift         = 2
	NrmShift         = 5
	PosShift         = 7
	WeightShift      = 9
	IdxShift         = 11
	WeightCountShift = 14

	TexMask         VertexFormat = 0x3 << TexShift
	ColMask         VertexFormat = 0x7 << ColShift
	NrmMask         VertexFormat = 0x3 << NrmShift
	PosMask         VertexFormat = 0x3 << PosShift
	WeightMask      VertexFormat = 0x3 << WeightShift
	IdxMask         VertexFormat = 0x3 << IdxShift
	WeightCountMask VertexFormat = 0x7 << WeightCountShift

	// Through is the through-mode bit: positions are pre-transformed screen
	// coordinates and texture coordinates address texels directly.
	Through VertexFormat = 1 << 23

	// LayoutMask covers every bit that participates in the byte layout or
	// decoding behavior. Mode bits above bit 23 are folded in separately
	// when building a decoder cache key.
	LayoutMask VertexFormat = 0x00FFFFFF
)

// Tex returns the texture coordinate type field.
func (f VertexFormat) Tex() VertexFormat { return f & TexMask }

// Col returns the color type field.
func (f VertexFormat) Col() VertexFormat { return f & ColMask }

// Nrm returns the normal type field.
func (f VertexFormat) Nrm() VertexFormat { return f & NrmMask }

// Pos returns the position type field.
func (f VertexFormat) Pos() VertexFormat { return f & PosMask }

// Weight returns the skinning weight type field.
func (f VertexFormat) Weight() VertexFormat { return f & WeightMask }

// HasWeights reports whether the format carries skinning weights.
func (f VertexFormat) HasWeights() bool { return f&WeightMask != 0 }

// WeightCount returns the number of skinning weights per vertex (1-8), or 0
// when the format has no weights.
func (f VertexFormat) WeightCount() int {
	if !f.HasWeights() {
		return 0
	}
	return int(f&WeightCountMask>>WeightCountShift) + 1
}

// IndexFormat returns the index element width encoded in the tag.
func (f VertexFormat) IndexFormat() IndexFormat {
	switch f & IdxMask {
	case IdxUint8:
		return IndexUint8
	case IdxUint16:
		return IndexUint16
	default:
		return IndexNone
	}
}

// IsThrough reports whether the through-mode bit is set.
func (f VertexFormat) IsThrough() bool { return f&Through != 0 }

// String returns a compact description of the format fields.
func (f VertexFormat) String() string {
	return fmt.Sprintf("VertexFormat(%#x: pos=%d tex=%d col=%d nrm=%d wt=%dx%d idx=%v through=%v)",
		uint32(f),
		int(f.Pos()>>PosShift), int(f.Tex()>>TexShift), int(f.Col()>>ColShift),
		int(f.Nrm()>>NrmShift), int(f.Weight()>>WeightShift), f.WeightCount(),
		f.IndexFormat(), f.IsThrough())
}
