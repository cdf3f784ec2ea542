// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/vertex"
)

// OpKind identifies a recorded sink operation.
type OpKind int

const (
	// OpDraw is a non-indexed draw.
	OpDraw OpKind = iota

	// OpDrawIndexed is an indexed draw.
	OpDrawIndexed

	// OpClear is a channel-masked clear.
	OpClear
)

// Op is one recorded draw or clear.
type Op struct {
	Kind        OpKind
	Topology    gecore.Topology
	VertexCount int
	IndexCount  int
	Clear       ClearParams
}

// Recorder is a CommandSink that copies everything it receives. The engine's
// arenas are reused after each flush, so the recorder snapshots bound data at
// draw time rather than aliasing it.
//
// It is the reference sink for tests and for capturing a frame's batches for
// inspection.
type Recorder struct {
	Ops []Op

	// Last bound data, snapshotted per batch.
	Vertices    []vertex.Vertex
	Transformed []TransformedVertex
	Indices     []uint16
	IndexFormat gecore.IndexFormat
}

// BindVertices snapshots the decoded vertices.
func (r *Recorder) BindVertices(verts []vertex.Vertex) {
	r.Vertices = append(r.Vertices[:0], verts...)
}

// BindTransformed snapshots the clip-space vertices.
func (r *Recorder) BindTransformed(verts []TransformedVertex) {
	r.Transformed = append(r.Transformed[:0], verts...)
}

// BindIndices snapshots the index stream.
func (r *Recorder) BindIndices(inds []uint16, format gecore.IndexFormat) {
	r.Indices = append(r.Indices[:0], inds...)
	r.IndexFormat = format
}

// Draw records a non-indexed draw.
func (r *Recorder) Draw(top gecore.Topology, vertexCount int) error {
	r.Ops = append(r.Ops, Op{
		Kind:        OpDraw,
		Topology:    top,
		VertexCount: vertexCount,
	})
	return nil
}

// DrawIndexed records an indexed draw.
func (r *Recorder) DrawIndexed(top gecore.Topology, vertexCount, indexCount int) error {
	r.Ops = append(r.Ops, Op{
		Kind:        OpDrawIndexed,
		Topology:    top,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	})
	return nil
}

// Clear records a clear.
func (r *Recorder) Clear(params ClearParams) error {
	r.Ops = append(r.Ops, Op{Kind: OpClear, Clear: params})
	return nil
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.Vertices = r.Vertices[:0]
	r.Transformed = r.Transformed[:0]
	r.Indices = r.Indices[:0]
	r.IndexFormat = gecore.IndexNone
}

var _ CommandSink = (*Recorder)(nil)
