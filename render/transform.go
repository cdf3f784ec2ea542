// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/vertex"
)

// ErrEmptyTarget is returned when a batch is transformed against a target
// with a zero extent.
var ErrEmptyTarget = errors.New("render: target has zero extent")

// TransformedVertex is one clip-space vertex produced by the software
// pipeline. Layout matches the backend vertex buffer: position, fog factor,
// texture coordinates, color.
type TransformedVertex struct {
	Pos   f32.Vec3
	Fog   float32
	UV    f32.Vec2
	Color f32.Vec4
}

// TransformAction tells the flush path what to do with a transform result.
type TransformAction int

const (
	// ActionDraw draws the transformed vertices.
	ActionDraw TransformAction = iota

	// ActionClear replaces the batch with a channel-masked clear.
	ActionClear
)

// TransformInput is one decoded batch handed to the software pipeline.
// Slices alias the engine's arenas and are valid only for the duration of
// the Transform call.
type TransformInput struct {
	Vertices []vertex.Vertex
	Indices  []uint16
	Topology gecore.Topology
	State    *gecore.RenderState
}

// TransformResult is the outcome of software-transforming a batch.
type TransformResult struct {
	Action TransformAction

	// Draw fields, valid when Action == ActionDraw.
	Vertices []TransformedVertex
	Indices  []uint16
	Indexed  bool
	Count    int

	// Clear fields, valid when Action == ActionClear.
	Color gputypes.Color
	Depth float32
}

// Transformer runs the software vertex pipeline over a decoded batch.
type Transformer interface {
	Transform(in TransformInput) (TransformResult, error)
}

// ThroughTransformer maps through-mode vertices (screen pixels, texel UVs,
// 16-bit depth) to clip space, and collapses clear-mode batches into a single
// clear taken from the final vertex, the way the command stream encodes
// clears as full-screen rectangles.
type ThroughTransformer struct {
	verts []TransformedVertex
}

// NewThroughTransformer creates a transformer with an output arena sized for
// capacity vertices.
func NewThroughTransformer(capacity int) *ThroughTransformer {
	return &ThroughTransformer{
		verts: make([]TransformedVertex, capacity),
	}
}

// Transform implements Transformer.
func (t *ThroughTransformer) Transform(in TransformInput) (TransformResult, error) {
	if in.State.ClearMode {
		return clearResult(in), nil
	}

	w := float32(in.State.TargetWidth)
	h := float32(in.State.TargetHeight)
	if w <= 0 || h <= 0 {
		return TransformResult{}, ErrEmptyTarget
	}

	n := len(in.Vertices)
	if n > len(t.verts) {
		t.verts = make([]TransformedVertex, n)
	}
	out := t.verts[:n]
	for i, v := range in.Vertices {
		out[i] = TransformedVertex{
			Pos: f32.Vec3{
				v.Pos[0]*(2/w) - 1,
				1 - v.Pos[1]*(2/h),
				v.Pos[2] * (1.0 / 65535),
			},
			Fog:   1,
			UV:    v.UV,
			Color: v.Color,
		}
	}

	return TransformResult{
		Action:   ActionDraw,
		Vertices: out,
		Indices:  in.Indices,
		Indexed:  len(in.Indices) > 0,
		Count:    len(in.Indices),
	}, nil
}

// clearResult derives the clear color and depth from the last vertex of a
// clear-mode batch. The stream draws clears as rectangles whose second corner
// carries the fill value.
func clearResult(in TransformInput) TransformResult {
	var c f32.Vec4
	var depth float32
	if n := len(in.Vertices); n > 0 {
		last := in.Vertices[n-1]
		c = last.Color
		depth = last.Pos[2] * (1.0 / 65535)
	}
	return TransformResult{
		Action: ActionClear,
		Color: gputypes.Color{
			R: float64(c[0]),
			G: float64(c[1]),
			B: float64(c[2]),
			A: float64(c[3]),
		},
		Depth: depth,
	}
}

var _ Transformer = (*ThroughTransformer)(nil)
