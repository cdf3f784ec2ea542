// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ge

import (
	"encoding/binary"
	"unsafe"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/internal/indexgen"
)

// drain decodes every still-deferred call of the current batch into the
// vertex arena, merging adjacent indexed calls that read the same vertex
// source so the shared range is decoded once.
func (e *Engine) drain(state *gecore.RenderState) {
	for e.drainCursor < len(e.calls) {
		e.step(state)
	}
}

// step drains one call, or one merged run of indexed calls.
func (e *Engine) step(state *gecore.RenderState) {
	call := &e.calls[e.drainCursor]

	if call.indexFmt == gecore.IndexNone {
		// A single call can exceed the whole arena; the submit-time budget
		// flushes beforehand but cannot shrink the call itself.
		if call.count > len(e.decoded)-e.numDecoded {
			Logger().Warn("vertex arena exhausted, dropping call",
				"needed", call.count,
				"remaining", len(e.decoded)-e.numDecoded)
			e.stats.DroppedRuns++
			e.drainCursor++
			return
		}
		e.gen.SetIndex(e.numDecoded)
		n := call.dec.Decode(e.decoded[e.numDecoded:], call.verts, 0, call.count-1)
		e.expandBounds(state, call, n)
		e.gen.AddPrim(call.topology, call.count)
		e.numDecoded += n
		e.drainCursor++
		return
	}

	// Scan forward for indexed calls sharing this call's vertex source and
	// take the union of their bounds.
	lower, upper := call.lower, call.upper
	last := e.drainCursor
	src := unsafe.SliceData(call.verts)
	for j := e.drainCursor + 1; j < len(e.calls); j++ {
		c := &e.calls[j]
		if c.indexFmt == gecore.IndexNone || unsafe.SliceData(c.verts) != src {
			break
		}
		if c.lower < lower {
			lower = c.lower
		}
		if c.upper > upper {
			upper = c.upper
		}
		last = j
	}

	// Reject the whole run before translating any part of it; a partially
	// translated run would leave indices pointing at vertices that were
	// never decoded.
	needed := 0
	for j := e.drainCursor; j <= last; j++ {
		needed += indexgen.ExpandedCount(e.calls[j].topology, e.calls[j].count)
	}
	if needed > e.gen.Remaining() {
		Logger().Warn("index arena exhausted, dropping run",
			"calls", last-e.drainCursor+1,
			"needed", needed,
			"remaining", e.gen.Remaining())
		e.stats.DroppedRuns++
		e.drainCursor = last + 1
		return
	}
	// The union of a run's bounds can exceed the per-call ranges the submit
	// budget counted, e.g. two sparse index sets over one large buffer.
	if upper-lower+1 > len(e.decoded)-e.numDecoded {
		Logger().Warn("vertex arena exhausted, dropping run",
			"calls", last-e.drainCursor+1,
			"needed", upper-lower+1,
			"remaining", len(e.decoded)-e.numDecoded)
		e.stats.DroppedRuns++
		e.drainCursor = last + 1
		return
	}

	e.gen.SetIndex(e.numDecoded)
	n := call.dec.Decode(e.decoded[e.numDecoded:], call.verts, lower, upper)
	e.expandBounds(state, call, n)

	for j := e.drainCursor; j <= last; j++ {
		c := &e.calls[j]
		switch c.indexFmt {
		case gecore.IndexUint8:
			indexgen.Translate(&e.gen, c.topology, c.inds[:c.count], lower)
		case gecore.IndexUint16:
			indexgen.Translate(&e.gen, c.topology, e.indices16(c), lower)
		}
	}

	e.numDecoded += n
	e.drainCursor = last + 1
}

// indices16 reads a call's 16-bit little-endian index bytes into the scratch
// arena.
func (e *Engine) indices16(c *deferredCall) []uint16 {
	if cap(e.scratch16) < c.count {
		e.scratch16 = make([]uint16, c.count)
	}
	out := e.scratch16[:c.count]
	src := c.inds[:c.count*2]
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(src[i*2:])
	}
	return out
}

// expandBounds folds the UVs of freshly decoded through-mode vertices into
// the batch texel bounding box.
func (e *Engine) expandBounds(state *gecore.RenderState, call *deferredCall, n int) {
	if !call.dec.Through() || !call.dec.HasUV() {
		return
	}
	for _, v := range e.decoded[e.numDecoded : e.numDecoded+n] {
		state.VertBounds.Expand(uint16(v.UV[0]), uint16(v.UV[1]))
	}
}
