// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the draw submission boundary between the batching
// engine and rendering backends.
//
// The engine accumulates deferred draw calls and, at flush time, hands the
// decoded batch to a CommandSink. Backends implement CommandSink against a
// real GPU (see backend/wgpu); tests use Recorder or NullSink.
//
// Software-pipeline batches pass through a Transformer first, which either
// produces clip-space vertices for a regular draw or collapses a clear-mode
// rectangle into a channel-masked clear.
package render
