// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements render.CommandSink on the gogpu/wgpu HAL.
//
// The sink owns persistent vertex, index, and uniform buffers sized for the
// engine's arenas, and a small set of render pipelines (one per primitive
// class, for pixel-space and clip-space input). Each flushed batch becomes
// one fence-synchronized submission: upload via WriteBuffer, a single render
// pass, one draw.
//
// The device and queue come from the host application; the sink never
// creates its own.
package wgpu
