// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gecore

// UVGenMode selects how texture coordinates are generated downstream. It does
// not change the vertex byte layout, but decoders specialize on it, so it is
// folded into the decoder cache key as a mode bit.
type UVGenMode uint32

const (
	// UVGenCoords uses the texture coordinates from the vertex data.
	UVGenCoords UVGenMode = iota

	// UVGenMatrix generates coordinates from the texture matrix.
	UVGenMatrix

	// UVGenEnvMap generates environment-map coordinates from lights.
	UVGenEnvMap
)

// vertBoundsSentinel is the reset value for the UV bounding box: Min starts at
// the maximum addressable texel so any observed coordinate shrinks it.
const vertBoundsSentinel = 512

// VertexBounds tracks the texel-space bounding box of texture coordinates
// observed while decoding a batch. Downstream texture management reads it to
// limit uploads; the engine resets it at every flush.
type VertexBounds struct {
	MinU, MinV uint16
	MaxU, MaxV uint16
}

// Reset restores the sentinel empty box.
func (b *VertexBounds) Reset() {
	b.MinU = vertBoundsSentinel
	b.MinV = vertBoundsSentinel
	b.MaxU = 0
	b.MaxV = 0
}

// Empty reports whether no coordinate has been observed since the last reset.
func (b *VertexBounds) Empty() bool {
	return b.MaxU < b.MinU || b.MaxV < b.MinV
}

// Expand grows the box to include the texel (u, v).
func (b *VertexBounds) Expand(u, v uint16) {
	if u < b.MinU {
		b.MinU = u
	}
	if v < b.MinV {
		b.MinV = v
	}
	if u > b.MaxU {
		b.MaxU = u
	}
	if v > b.MaxV {
		b.MaxV = v
	}
}

// RenderState is the per-batch rendering context passed explicitly into
// Submit and Flush. It replaces ambient global state: the engine never reads
// process-wide registers, only this object.
//
// The engine mutates only TextureDirty and VertBounds; everything else is
// owned by the caller and read-only from the engine's point of view.
type RenderState struct {
	// TextureAddress is the source address of the currently bound texture.
	TextureAddress uint32

	// FramebufferAddress is the address of the current render target.
	FramebufferAddress uint32

	// TargetWidth and TargetHeight are the render target extent in pixels,
	// used as the clear rectangle for clear-mode dispatch.
	TargetWidth  int
	TargetHeight int

	// UVGen is the active texture coordinate generation mode.
	UVGen UVGenMode

	// ClearMode is set while the stream is drawing in clear mode; the flags
	// below choose which channels the clear writes.
	ClearMode          bool
	ClearModeColor     bool
	ClearModeAlpha     bool
	ClearModeDepth     bool
	ClearModeStencil   bool

	// TextureDirty is set by the engine when a rectangle draw samples the
	// current render target, forcing texture state revalidation.
	TextureDirty bool

	// VertBounds is the UV bounding box accumulated during decoding.
	VertBounds VertexBounds
}

// addressMask strips cache/segment bits so aliased mappings of the same
// physical memory compare equal.
const addressMask = 0x3FFFFFFF

// TextureAliasesTarget reports whether the bound texture reads the same
// memory the current render target writes.
func (s *RenderState) TextureAliasesTarget() bool {
	return s.TextureAddress&addressMask == s.FramebufferAddress&addressMask
}

// ClearFlags derives the channel mask for a clear-mode draw.
func (s *RenderState) ClearFlags() ClearMask {
	var m ClearMask
	if s.ClearModeColor {
		m |= ClearColor
	}
	if s.ClearModeAlpha {
		m |= ClearAlpha
	}
	if s.ClearModeDepth {
		m |= ClearDepth
	}
	if s.ClearModeStencil {
		m |= ClearStencil
	}
	return m
}
