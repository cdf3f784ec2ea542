// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ge batches deferred draw calls from a GPU command stream.
//
// An Engine buffers primitive submissions without touching their vertex
// data, merges adjacent indexed draws that share a vertex source, and
// decodes vertices lazily at flush time, so a burst of small draws reaches
// the backend as one call with one decode pass.
//
// The typical loop is:
//
//	eng := ge.NewEngine(ge.WithSink(sink))
//	for each primitive command {
//	    n, err := eng.Submit(state, verts, inds, format, top, count)
//	    ...
//	}
//	err := eng.Flush(state)        // at state changes, frame end, ...
//
// Submit only reads index data (to bound the referenced vertex range);
// vertex bytes must stay valid and unchanged until the batch is flushed.
package ge
