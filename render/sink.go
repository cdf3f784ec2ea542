// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/vertex"
)

// ClearParams describes a channel-masked clear of the current render target.
type ClearParams struct {
	// Color is the clear color, applied per Mask's color/alpha bits.
	Color gputypes.Color

	// Depth is the clear depth in [0, 1].
	Depth float32

	// Mask selects which channels the clear writes.
	Mask gecore.ClearMask

	// Width and Height are the target extent in pixels.
	Width  int
	Height int
}

// CommandSink receives one flushed batch at a time.
//
// The engine calls the Bind methods first, then exactly one of Draw,
// DrawIndexed, or Clear. Bound slices alias the engine's arenas and are only
// valid until the engine's next Submit; sinks that retain data must copy.
type CommandSink interface {
	// BindVertices supplies the decoded vertices of a direct-mode batch.
	BindVertices(verts []vertex.Vertex)

	// BindTransformed supplies clip-space vertices of a software-pipeline
	// batch.
	BindTransformed(verts []TransformedVertex)

	// BindIndices supplies the merged index stream for an indexed draw.
	BindIndices(inds []uint16, format gecore.IndexFormat)

	// Draw issues a non-indexed draw of vertexCount bound vertices.
	Draw(top gecore.Topology, vertexCount int) error

	// DrawIndexed issues an indexed draw reading indexCount bound indices
	// over vertexCount bound vertices.
	DrawIndexed(top gecore.Topology, vertexCount, indexCount int) error

	// Clear performs a channel-masked clear instead of a draw.
	Clear(params ClearParams) error
}

// NullSink discards every batch. It stands in for a backend when output is
// not wanted, e.g. while measuring submission overhead.
type NullSink struct{}

// BindVertices discards the batch vertices.
func (NullSink) BindVertices(verts []vertex.Vertex) {}

// BindTransformed discards the transformed vertices.
func (NullSink) BindTransformed(verts []TransformedVertex) {}

// BindIndices discards the index stream.
func (NullSink) BindIndices(inds []uint16, format gecore.IndexFormat) {}

// Draw does nothing.
func (NullSink) Draw(top gecore.Topology, vertexCount int) error { return nil }

// DrawIndexed does nothing.
func (NullSink) DrawIndexed(top gecore.Topology, vertexCount, indexCount int) error {
	return nil
}

// Clear does nothing.
func (NullSink) Clear(params ClearParams) error { return nil }

var _ CommandSink = NullSink{}
