// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ge

import (
	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/render"
)

// Flush drains the current batch and hands it to the sink as a single draw
// (or clear), then resets the engine to the empty state. Flushing an empty
// engine is a no-op.
//
// With a transformer configured, the batch passes through the software
// vertex pipeline first; otherwise decoded vertices go to the sink directly.
//
// Flush panics when called re-entrantly, e.g. from a sink or observer.
func (e *Engine) Flush(state *gecore.RenderState) error {
	if e.flushing {
		panic("ge: re-entrant Flush")
	}
	if len(e.calls) == 0 && e.numDecoded == 0 {
		return nil
	}
	e.flushing = true
	defer func() {
		e.flushing = false
		e.reset(state)
	}()

	e.drain(state)

	prim := e.gen.Prim()
	if prim == gecore.TopologyInvalid {
		// Every call in the batch was dropped or carried no deducible
		// topology. Draw nothing, deterministically.
		Logger().Error("flush with undeducible topology",
			"calls", len(e.calls))
		prim = gecore.TopologyPoints
		e.gen.AddPrim(prim, 0)
	}

	var err error
	if e.transformer != nil {
		err = e.flushTransformed(state, prim)
	} else {
		err = e.flushDirect(prim)
	}

	e.stats.Flushes++
	e.stats.DrawCallsBatched += uint64(len(e.calls))
	e.stats.VertsDecoded += uint64(e.numDecoded)
	Logger().Debug("flushed batch",
		"calls", len(e.calls),
		"vertices", e.numDecoded,
		"indices", e.gen.Count(),
		"topology", prim)

	if e.observer != nil {
		e.observer.DrawFlushed()
	}
	return err
}

// flushDirect sends decoded vertices straight to the sink. A pure index
// stream (trivially ascending) skips index binding entirely.
func (e *Engine) flushDirect(prim gecore.Topology) error {
	e.sink.BindVertices(e.decoded[:e.numDecoded])
	if e.gen.SeenOnlyPurePrims() {
		return e.sink.Draw(prim, e.gen.PureCount())
	}
	e.sink.BindIndices(e.gen.Indices(), gecore.IndexUint16)
	return e.sink.DrawIndexed(prim, e.gen.MaxIndex()+1, e.gen.Count())
}

// flushTransformed runs the software pipeline and dispatches its result:
// either a clip-space draw or a channel-masked clear.
func (e *Engine) flushTransformed(state *gecore.RenderState, prim gecore.Topology) error {
	// A pure stream needs no index data downstream.
	var inds []uint16
	if !e.gen.SeenOnlyPurePrims() {
		inds = e.gen.Indices()
	}
	res, err := e.transformer.Transform(render.TransformInput{
		Vertices: e.decoded[:e.numDecoded],
		Indices:  inds,
		Topology: prim,
		State:    state,
	})
	if err != nil {
		return err
	}

	switch res.Action {
	case render.ActionClear:
		return e.sink.Clear(render.ClearParams{
			Color:  res.Color,
			Depth:  res.Depth,
			Mask:   state.ClearFlags(),
			Width:  state.TargetWidth,
			Height: state.TargetHeight,
		})
	default:
		e.sink.BindTransformed(res.Vertices)
		if res.Indexed {
			e.sink.BindIndices(res.Indices, gecore.IndexUint16)
			return e.sink.DrawIndexed(prim, len(res.Vertices), res.Count)
		}
		return e.sink.Draw(prim, len(res.Vertices))
	}
}

// reset returns the engine to the empty state. Arenas and the decoder cache
// are retained; the batch topology and the state's UV bounds are not.
func (e *Engine) reset(state *gecore.RenderState) {
	e.calls = e.calls[:0]
	e.vertexCount = 0
	e.numDecoded = 0
	e.drainCursor = 0
	e.gen.Reset()
	e.prevTopology = gecore.TopologyInvalid
	state.VertBounds.Reset()
}
