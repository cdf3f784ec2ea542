// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import "golang.org/x/image/math/f32"

// MaxWeights is the maximum number of skinning weights a vertex format can
// carry.
const MaxWeights = 8

// Vertex is one canonical decoded vertex record. Decoders expand every
// source component to float form so downstream transform code never touches
// packed formats.
//
// In through mode, Pos holds screen-space pixel coordinates and UV holds
// texel coordinates; otherwise both are in the normalized ranges produced by
// the format's fixed-point scaling.
type Vertex struct {
	Pos     f32.Vec3
	UV      f32.Vec2
	Color   f32.Vec4
	Normal  f32.Vec3
	Weights [MaxWeights]float32
}
