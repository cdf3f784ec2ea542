// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ge

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/internal/indexgen"
	"github.com/gogpu/ge/render"
	"github.com/gogpu/ge/vertex"
)

const (
	// DefaultCallCapacity is the deferred call window before an automatic
	// flush.
	DefaultCallCapacity = 128

	// DefaultVertexCapacity is the decoded vertex budget per batch.
	DefaultVertexCapacity = 65536

	// indexArenaFactor oversizes the index arena relative to the vertex
	// budget: strip and fan expansion emits up to three indices per
	// interior vertex, plus translated reuse.
	indexArenaFactor = 4
)

// deferredCall is one buffered primitive submission. The engine records the
// source slices and bounds at submit time; vertex bytes are not read until
// the batch drains.
type deferredCall struct {
	verts []byte
	inds  []byte

	dec      *vertex.Decoder
	indexFmt gecore.IndexFormat
	topology gecore.Topology

	// count is the vertex count, or the index count for indexed calls.
	count int

	// lower and upper bound the vertex range the call references.
	lower int
	upper int
}

// Engine accumulates deferred draw calls and flushes them as merged batches.
//
// An Engine is single-goroutine: the command stream interpreter owns it.
// Submit and Flush panic on integration errors (re-entry, missing data)
// rather than returning them, since those indicate a broken caller, not a
// condition to handle.
type Engine struct {
	sink        render.CommandSink
	transformer render.Transformer
	observer    Observer

	decoders *vertex.DecoderCache
	lastKey  vertex.FormatKey
	lastDec  *vertex.Decoder

	calls          []deferredCall
	vertexCount    int // decoded vertex budget consumed by buffered calls
	callCapacity   int
	vertexCapacity int

	// Fixed arenas, allocated once.
	decoded    []vertex.Vertex
	numDecoded int
	gen        indexgen.Generator
	scratch16  []uint16

	// drainCursor separates drained calls from still-deferred ones within
	// the current batch.
	drainCursor int

	prevTopology gecore.Topology
	flushing     bool

	stats Stats
}

// NewEngine creates an engine with all arenas preallocated.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		sink:           o.sink,
		transformer:    o.transformer,
		observer:       o.observer,
		decoders:       vertex.NewDecoderCache(),
		calls:          make([]deferredCall, 0, o.callCapacity),
		callCapacity:   o.callCapacity,
		vertexCapacity: o.vertexCapacity,
		decoded:        make([]vertex.Vertex, o.vertexCapacity),
		prevTopology:   gecore.TopologyInvalid,
	}
	e.gen.Setup(make([]uint16, o.vertexCapacity*indexArenaFactor))
	return e
}

// Submit buffers one primitive. verts holds packed vertex data in the given
// format; inds holds index data when the format carries an index component,
// and count is then the index count rather than the vertex count.
//
// Submit returns the number of source bytes the call consumes from the
// command stream: index bytes for indexed calls, vertex bytes otherwise.
// The returned error is a flush error; the call itself is always accepted.
//
// Submit panics when called during a flush, when verts is nil, or when an
// indexed format arrives without index data.
func (e *Engine) Submit(
	state *gecore.RenderState,
	verts, inds []byte,
	format gecore.VertexFormat,
	top gecore.Topology,
	count int,
) (int, error) {
	if e.flushing {
		panic("ge: Submit during flush")
	}
	if verts == nil {
		panic("ge: Submit with nil vertex data")
	}
	if count <= 0 {
		return 0, nil
	}

	indexFmt := format.IndexFormat()
	if indexFmt != gecore.IndexNone && inds == nil {
		panic(fmt.Sprintf("ge: indexed format %v without index data", format))
	}

	lower, upper := indexBounds(indexFmt, inds, count)
	needed := upper - lower + 1

	// Flush before accepting a call the current batch cannot take.
	var flushErr error
	if !gecore.Compatible(e.prevTopology, top) ||
		len(e.calls) >= e.callCapacity ||
		needed > e.vertexCapacity-e.vertexCount {
		flushErr = e.Flush(state)
	}

	if top == gecore.TopologyKeepPrevious {
		if e.prevTopology != gecore.TopologyInvalid {
			top = e.prevTopology
		} else {
			Logger().Debug("keep-previous on an empty batch, falling back to points")
			top = gecore.TopologyPoints
		}
	} else {
		e.prevTopology = top
	}

	dec := e.decoder(format, state.UVGen)

	e.calls = append(e.calls, deferredCall{
		verts:    verts,
		inds:     inds,
		dec:      dec,
		indexFmt: indexFmt,
		topology: top,
		count:    count,
		lower:    lower,
		upper:    upper,
	})
	e.vertexCount += needed
	e.stats.VertsSubmitted += uint64(count)

	// Skinned formats decode eagerly: their weights feed matrix state that
	// later submissions may overwrite.
	if format.HasWeights() {
		e.drain(state)
	}

	// A rectangle sampling the render target it draws to must be resolved
	// now, with texture state revalidated.
	if top == gecore.TopologyRectangles && state.TextureAliasesTarget() {
		state.TextureDirty = true
		if err := e.Flush(state); err != nil && flushErr == nil {
			flushErr = err
		}
	}

	bytes := count * indexFmt.Bytes()
	if indexFmt == gecore.IndexNone {
		bytes = count * dec.VertexSize()
	}
	return bytes, flushErr
}

// decoder resolves the format's decoder, memoizing the last lookup since
// streams repeat one format for long runs.
func (e *Engine) decoder(format gecore.VertexFormat, uvgen gecore.UVGenMode) *vertex.Decoder {
	key := vertex.MakeKey(format, uvgen)
	if e.lastDec == nil || key != e.lastKey {
		e.lastDec = e.decoders.Get(key)
		e.lastKey = key
	}
	return e.lastDec
}

// indexBounds scans a call's index data for the smallest and largest vertex
// referenced. Non-indexed calls reference [0, count-1] directly.
func indexBounds(indexFmt gecore.IndexFormat, inds []byte, count int) (lower, upper int) {
	switch indexFmt {
	case gecore.IndexUint8:
		lower, upper = 255, 0
		for _, v := range inds[:count] {
			if int(v) < lower {
				lower = int(v)
			}
			if int(v) > upper {
				upper = int(v)
			}
		}
	case gecore.IndexUint16:
		lower, upper = 65535, 0
		src := inds[:count*2]
		for i := 0; i < count; i++ {
			v := int(binary.LittleEndian.Uint16(src[i*2:]))
			if v < lower {
				lower = v
			}
			if v > upper {
				upper = v
			}
		}
	default:
		return 0, count - 1
	}
	if upper < lower {
		lower, upper = 0, 0
	}
	return lower, upper
}

// InvalidateContext discards every cached decoder. Call it when the
// rendering context is lost or reconfigured (e.g. a viewport resize changes
// decode parameters). Panics if a batch is mid-accumulation; flush first.
func (e *Engine) InvalidateContext() {
	if e.flushing || len(e.calls) > 0 {
		panic("ge: InvalidateContext with a batch in flight")
	}
	e.decoders.Clear()
	e.lastDec = nil
	e.lastKey = 0
}

// Stats returns a snapshot of the engine's cumulative counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.DecoderHits, s.DecoderMisses = e.decoders.Stats()
	return s
}
