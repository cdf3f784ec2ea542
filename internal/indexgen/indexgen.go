// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package indexgen rewrites per-call primitives into one shared 16-bit index
// stream. Strips and fans are expanded to their list forms so a whole batch
// can be drawn with a single indexed call.
package indexgen

import "github.com/gogpu/ge/gecore"

// Generator accumulates the merged index stream for one batch. It writes into
// a fixed arena supplied by Setup and never allocates afterwards.
//
// Emission comes in two forms: AddPrim synthesizes ascending indices for a
// non-indexed call, and Translate remaps a call's own index data into the
// merged vertex space. The generator tracks whether the stream so far is
// "pure" (trivially 0,1,2,...), in which case the caller can skip index
// binding entirely and issue a plain draw.
type Generator struct {
	buf      []uint16
	count    int
	base     int
	maxIndex int
	prim     gecore.Topology
	pure     bool
}

// Setup points the generator at its index arena and resets it.
func (g *Generator) Setup(buf []uint16) {
	g.buf = buf
	g.Reset()
}

// Reset clears the accumulated stream. The arena is retained.
func (g *Generator) Reset() {
	g.count = 0
	g.base = 0
	g.maxIndex = -1
	g.prim = gecore.TopologyInvalid
	g.pure = true
}

// SetIndex positions the merged vertex base for subsequent emission: index 0
// of the next call maps to merged index base.
func (g *Generator) SetIndex(base int) {
	g.base = base
}

// Count returns the number of indices emitted so far.
func (g *Generator) Count() int { return g.count }

// MaxIndex returns the highest index value emitted so far, or -1 when the
// stream is empty.
func (g *Generator) MaxIndex() int { return g.maxIndex }

// Prim returns the list-form topology of the accumulated stream, or
// TopologyInvalid when nothing has been seen.
func (g *Generator) Prim() gecore.Topology { return g.prim }

// SeenOnlyPurePrims reports whether every index emitted so far equals its own
// position in the stream. A pure stream draws correctly without indices.
func (g *Generator) SeenOnlyPurePrims() bool { return g.pure }

// PureCount returns the vertex count of a pure stream. Only meaningful when
// SeenOnlyPurePrims reports true.
func (g *Generator) PureCount() int { return g.count }

// Indices returns the emitted stream.
func (g *Generator) Indices() []uint16 { return g.buf[:g.count] }

// Fits reports whether a call of the given topology and count still fits in
// the arena once expanded. For indexed calls count is the index count.
func (g *Generator) Fits(top gecore.Topology, count int) bool {
	return ExpandedCount(top, count) <= g.Remaining()
}

// Remaining returns the arena space left, in indices.
func (g *Generator) Remaining() int { return len(g.buf) - g.count }

// ExpandedCount returns the number of list-form indices a call of the given
// topology and vertex (or index) count emits.
func ExpandedCount(top gecore.Topology, n int) int {
	switch top {
	case gecore.TopologyPoints:
		return n
	case gecore.TopologyLines, gecore.TopologyRectangles:
		return n &^ 1
	case gecore.TopologyLineStrip:
		if n < 2 {
			return 0
		}
		return 2 * (n - 1)
	case gecore.TopologyTriangles:
		return n - n%3
	case gecore.TopologyTriangleStrip, gecore.TopologyTriangleFan:
		if n < 3 {
			return 0
		}
		return 3 * (n - 2)
	default:
		return 0
	}
}

// AddPrim emits ascending indices for a non-indexed call of vertexCount
// vertices. Degenerate calls (below the topology's minimum) emit nothing but
// still stamp the batch topology.
func (g *Generator) AddPrim(top gecore.Topology, vertexCount int) {
	g.prim = top.Class()

	n := ExpandedCount(top, vertexCount)
	if n == 0 {
		return
	}
	if g.count+n > len(g.buf) {
		return
	}

	out := g.buf[g.count : g.count+n]
	switch top {
	case gecore.TopologyPoints, gecore.TopologyLines,
		gecore.TopologyTriangles, gecore.TopologyRectangles:
		// Identity emission. The stream stays pure only while each index
		// lands at its own position.
		if g.base != g.count {
			g.pure = false
		}
		for i := range out {
			out[i] = uint16(g.base + i)
		}
	case gecore.TopologyLineStrip:
		g.pure = false
		for i := 0; i < vertexCount-1; i++ {
			out[i*2] = uint16(g.base + i)
			out[i*2+1] = uint16(g.base + i + 1)
		}
	case gecore.TopologyTriangleStrip:
		g.pure = false
		for i := 0; i < vertexCount-2; i++ {
			if i&1 == 0 {
				out[i*3] = uint16(g.base + i)
				out[i*3+1] = uint16(g.base + i + 1)
				out[i*3+2] = uint16(g.base + i + 2)
			} else {
				// Swap the leading edge to keep winding consistent.
				out[i*3] = uint16(g.base + i)
				out[i*3+1] = uint16(g.base + i + 2)
				out[i*3+2] = uint16(g.base + i + 1)
			}
		}
	case gecore.TopologyTriangleFan:
		g.pure = false
		for i := 0; i < vertexCount-2; i++ {
			out[i*3] = uint16(g.base)
			out[i*3+1] = uint16(g.base + i + 1)
			out[i*3+2] = uint16(g.base + i + 2)
		}
	}

	if hi := g.base + vertexCount - 1; hi > g.maxIndex {
		g.maxIndex = hi
	}
	g.count += n
}

// Translate remaps a call's index data into the merged stream. Each source
// index is rebased by the generator's vertex base and the call's lower bound,
// expanding strips and fans along the way. The caller guarantees, via Fits,
// that the expanded run fits the arena.
func Translate[T uint8 | uint16](g *Generator, top gecore.Topology, inds []T, lowerBound int) {
	g.prim = top.Class()
	g.pure = false

	n := ExpandedCount(top, len(inds))
	if n == 0 || g.count+n > len(g.buf) {
		return
	}

	conv := func(i int) uint16 {
		v := g.base + int(inds[i]) - lowerBound
		if v > g.maxIndex {
			g.maxIndex = v
		}
		return uint16(v)
	}

	out := g.buf[g.count : g.count+n]
	switch top {
	case gecore.TopologyPoints, gecore.TopologyLines,
		gecore.TopologyTriangles, gecore.TopologyRectangles:
		for i := range out {
			out[i] = conv(i)
		}
	case gecore.TopologyLineStrip:
		for i := 0; i < len(inds)-1; i++ {
			out[i*2] = conv(i)
			out[i*2+1] = conv(i + 1)
		}
	case gecore.TopologyTriangleStrip:
		for i := 0; i < len(inds)-2; i++ {
			if i&1 == 0 {
				out[i*3] = conv(i)
				out[i*3+1] = conv(i + 1)
				out[i*3+2] = conv(i + 2)
			} else {
				out[i*3] = conv(i)
				out[i*3+1] = conv(i + 2)
				out[i*3+2] = conv(i + 1)
			}
		}
	case gecore.TopologyTriangleFan:
		for i := 0; i < len(inds)-2; i++ {
			out[i*3] = conv(0)
			out[i*3+1] = conv(i + 1)
			out[i*3+2] = conv(i + 2)
		}
	}
	g.count += n
}
