// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gecore

import "fmt"

// Topology identifies how a primitive's vertices are assembled.
//
// The values mirror the command stream's primitive field. TopologyKeepPrevious
// is a sentinel accepted by Submit that resolves to the last explicitly
// submitted topology (or Points when none has been seen yet).
type Topology int

const (
	// TopologyPoints draws one point per vertex.
	TopologyPoints Topology = iota

	// TopologyLines draws independent line segments from vertex pairs.
	TopologyLines

	// TopologyLineStrip draws a connected polyline.
	TopologyLineStrip

	// TopologyTriangles draws independent triangles from vertex triples.
	TopologyTriangles

	// TopologyTriangleStrip draws a strip of triangles sharing edges.
	TopologyTriangleStrip

	// TopologyTriangleFan draws triangles sharing the first vertex.
	TopologyTriangleFan

	// TopologyRectangles draws axis-aligned rectangles from vertex pairs
	// (upper-left, lower-right).
	TopologyRectangles

	// TopologyKeepPrevious repeats the previously submitted topology.
	TopologyKeepPrevious

	// TopologyInvalid marks the absence of an accumulating topology,
	// e.g. immediately after a flush.
	TopologyInvalid Topology = -1
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TopologyPoints:
		return "Points"
	case TopologyLines:
		return "Lines"
	case TopologyLineStrip:
		return "LineStrip"
	case TopologyTriangles:
		return "Triangles"
	case TopologyTriangleStrip:
		return "TriangleStrip"
	case TopologyTriangleFan:
		return "TriangleFan"
	case TopologyRectangles:
		return "Rectangles"
	case TopologyKeepPrevious:
		return "KeepPrevious"
	case TopologyInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// Class returns the list-form topology that t assembles into once strips and
// fans have been expanded. Two topologies may accumulate into the same batch
// exactly when their classes match.
func (t Topology) Class() Topology {
	switch t {
	case TopologyPoints:
		return TopologyPoints
	case TopologyLines, TopologyLineStrip:
		return TopologyLines
	case TopologyTriangles, TopologyTriangleStrip, TopologyTriangleFan:
		return TopologyTriangles
	case TopologyRectangles:
		return TopologyRectangles
	default:
		return TopologyInvalid
	}
}

// MinVertexCount returns the smallest vertex count that yields at least one
// primitive for this topology. Calls below the minimum are degenerate: they
// are still buffered for bounds tracking but draw nothing.
func (t Topology) MinVertexCount() int {
	switch t {
	case TopologyPoints:
		return 1
	case TopologyLines, TopologyLineStrip, TopologyRectangles:
		return 2
	case TopologyTriangles, TopologyTriangleStrip, TopologyTriangleFan:
		return 3
	default:
		return 0
	}
}

// Compatible reports whether a primitive of topology next may be appended to
// a batch currently accumulating topology prev. An empty batch (prev ==
// TopologyInvalid) accepts anything, and the KeepPrevious sentinel is
// compatible by definition.
func Compatible(prev, next Topology) bool {
	if prev == TopologyInvalid || next == TopologyKeepPrevious {
		return true
	}
	return prev.Class() == next.Class()
}

// IndexFormat is the element width of a call's index data.
type IndexFormat int

const (
	// IndexNone means the call has no index data.
	IndexNone IndexFormat = iota

	// IndexUint8 means 8-bit indices.
	IndexUint8

	// IndexUint16 means 16-bit little-endian indices.
	IndexUint16
)

// Bytes returns the byte width of one index element, or 0 for IndexNone.
func (f IndexFormat) Bytes() int {
	switch f {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	default:
		return 0
	}
}

// String returns the index format name.
func (f IndexFormat) String() string {
	switch f {
	case IndexNone:
		return "None"
	case IndexUint8:
		return "Uint8"
	case IndexUint16:
		return "Uint16"
	default:
		return fmt.Sprintf("IndexFormat(%d)", int(f))
	}
}

// ClearMask selects which channels a clear-mode draw writes.
type ClearMask uint32

const (
	// ClearColor clears the RGB channels of the color target.
	ClearColor ClearMask = 1 << iota

	// ClearAlpha clears the alpha channel of the color target.
	ClearAlpha

	// ClearDepth clears the depth buffer.
	ClearDepth

	// ClearStencil clears the stencil buffer.
	ClearStencil
)
