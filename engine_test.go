package ge

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/render"
)

// posVerts packs n float32 position-only vertices with x = vertex number.
func posVerts(n int) []byte {
	b := make([]byte, n*12)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[i*12:], math.Float32bits(float32(i)))
	}
	return b
}

func u16Inds(vals ...uint16) []byte {
	b := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

func newState() *gecore.RenderState {
	s := &gecore.RenderState{TargetWidth: 480, TargetHeight: 272}
	s.VertBounds.Reset()
	return s
}

func TestSubmitReturnsBytesConsumed(t *testing.T) {
	eng := NewEngine()
	state := newState()

	n, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if n != 36 {
		t.Errorf("non-indexed bytes = %d, want 36", n)
	}

	n, err = eng.Submit(state, posVerts(3), u16Inds(0, 1, 2),
		gecore.PosFloat|gecore.IdxUint16, gecore.TopologyTriangles, 3)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if n != 6 {
		t.Errorf("indexed bytes = %d, want 6 (index bytes only)", n)
	}
}

func TestBatchingSingleDraw(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	// Several compatible submissions must reach the sink as one draw.
	for i := 0; i < 4; i++ {
		if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
			gecore.TopologyTriangles, 3); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if len(rec.Ops) != 0 {
		t.Fatalf("sink saw %d ops before flush", len(rec.Ops))
	}

	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("sink saw %d ops, want 1", len(rec.Ops))
	}
	op := rec.Ops[0]
	if op.Kind != render.OpDraw || op.VertexCount != 12 {
		t.Errorf("op = %+v, want non-indexed draw of 12 vertices", op)
	}
	if op.Topology != gecore.TopologyTriangles {
		t.Errorf("topology = %v, want Triangles", op.Topology)
	}
}

func TestMergeSharedVertexSource(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	// Two indexed calls over the same vertex bytes: the shared range is
	// decoded once and the second call's indices land after the first's.
	verts := posVerts(5)
	format := gecore.PosFloat | gecore.IdxUint16

	if _, err := eng.Submit(state, verts, u16Inds(0, 1, 2), format,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := eng.Submit(state, verts, u16Inds(2, 3, 4), format,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if len(rec.Ops) != 1 || rec.Ops[0].Kind != render.OpDrawIndexed {
		t.Fatalf("ops = %+v, want one indexed draw", rec.Ops)
	}
	if rec.Ops[0].VertexCount != 5 || rec.Ops[0].IndexCount != 6 {
		t.Errorf("draw = %+v, want 5 vertices, 6 indices", rec.Ops[0])
	}
	if len(rec.Vertices) != 5 {
		t.Fatalf("decoded %d vertices, want 5", len(rec.Vertices))
	}
	for i, v := range rec.Vertices {
		if v.Pos[0] != float32(i) {
			t.Errorf("vertex %d x = %v, want %d", i, v.Pos[0], i)
		}
	}
	want := []uint16{0, 1, 2, 2, 3, 4}
	for i, w := range want {
		if rec.Indices[i] != w {
			t.Errorf("indices = %v, want %v", rec.Indices, want)
			break
		}
	}

	stats := eng.Stats()
	if stats.VertsSubmitted != 6 || stats.VertsDecoded != 5 {
		t.Errorf("stats = %+v, want 6 submitted, 5 decoded", stats)
	}
}

func TestDistinctSourcesDecodeSeparately(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	format := gecore.PosFloat | gecore.IdxUint16
	a, b := posVerts(3), posVerts(3)

	for _, verts := range [][]byte{a, b} {
		if _, err := eng.Submit(state, verts, u16Inds(0, 1, 2), format,
			gecore.TopologyTriangles, 3); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if rec.Ops[0].VertexCount != 6 {
		t.Errorf("decoded vertex count = %d, want 6 (no merge across sources)",
			rec.Ops[0].VertexCount)
	}
	want := []uint16{0, 1, 2, 3, 4, 5}
	for i, w := range want {
		if rec.Indices[i] != w {
			t.Errorf("indices = %v, want %v", rec.Indices, want)
			break
		}
	}
}

func TestIncompatibleTopologyFlushes(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	// Lines cannot join a triangle batch.
	if _, err := eng.Submit(state, posVerts(2), nil, gecore.PosFloat,
		gecore.TopologyLines, 2); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("ops after incompatible submit = %d, want 1", len(rec.Ops))
	}

	// Strip joins the triangle class, so no flush.
	rec.Reset()
	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("lines batch should have flushed on triangle submit")
	}
	rec.Reset()
	if _, err := eng.Submit(state, posVerts(4), nil, gecore.PosFloat,
		gecore.TopologyTriangleStrip, 4); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 0 {
		t.Error("strip should batch with triangles without flushing")
	}
}

func TestKeepPreviousTopology(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyKeepPrevious, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 1 || rec.Ops[0].Topology != gecore.TopologyTriangles {
		t.Errorf("ops = %+v, want one triangle draw", rec.Ops)
	}
}

func TestKeepPreviousOnEmptyBatchFallsBackToPoints(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	if _, err := eng.Submit(state, posVerts(2), nil, gecore.PosFloat,
		gecore.TopologyKeepPrevious, 2); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 1 || rec.Ops[0].Topology != gecore.TopologyPoints {
		t.Errorf("ops = %+v, want a point draw", rec.Ops)
	}
}

func TestCallCapacityAutoFlush(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec), WithCallCapacity(2))
	state := newState()

	for i := 0; i < 3; i++ {
		if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
			gecore.TopologyTriangles, 3); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("ops = %d, want 1 auto-flush at capacity", len(rec.Ops))
	}
	if rec.Ops[0].VertexCount != 6 {
		t.Errorf("auto-flushed draw = %+v, want 6 vertices", rec.Ops[0])
	}

	// The post-flush batch holds only the third call.
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 2 || rec.Ops[1].VertexCount != 3 {
		t.Errorf("ops = %+v, want second draw of 3 vertices", rec.Ops)
	}
}

func TestVertexBudgetAutoFlush(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec), WithVertexCapacity(8))
	state := newState()

	if _, err := eng.Submit(state, posVerts(6), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 6); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 0 {
		t.Fatal("budget flush fired early")
	}
	if _, err := eng.Submit(state, posVerts(6), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 6); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 1 || rec.Ops[0].VertexCount != 6 {
		t.Errorf("ops = %+v, want one draw of the first 6 vertices", rec.Ops)
	}
}

func TestFlushEmptyIsNoOp(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 0 {
		t.Errorf("empty flush produced %d ops", len(rec.Ops))
	}
	if eng.Stats().Flushes != 0 {
		t.Error("empty flush counted in stats")
	}
}

func TestDegenerateCallDrawsNothing(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()

	// Two vertices cannot form a triangle; the call is buffered but the
	// flush emits an empty draw.
	if _, err := eng.Submit(state, posVerts(2), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 2); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(rec.Ops))
	}
	if rec.Ops[0].Kind != render.OpDraw || rec.Ops[0].VertexCount != 0 {
		t.Errorf("op = %+v, want empty draw", rec.Ops[0])
	}
}

func TestRectangleAliasingFlushesImmediately(t *testing.T) {
	var rec render.Recorder
	eng := NewEngine(WithSink(&rec))
	state := newState()
	state.TextureAddress = 0x44000000 // same physical memory,
	state.FramebufferAddress = 0x04000000

	if _, err := eng.Submit(state, posVerts(2), nil, gecore.PosFloat,
		gecore.TopologyRectangles, 2); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(rec.Ops) != 1 {
		t.Fatalf("ops = %d, want immediate flush", len(rec.Ops))
	}
	if !state.TextureDirty {
		t.Error("TextureDirty not set for target-sampling rectangle")
	}
}

func TestSubmitDuringFlushPanics(t *testing.T) {
	eng := NewEngine()
	state := newState()
	eng.flushing = true

	defer func() {
		if recover() == nil {
			t.Error("Submit during flush did not panic")
		}
	}()
	_, _ = eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3)
}

func TestSubmitNilVertsPanics(t *testing.T) {
	eng := NewEngine()
	defer func() {
		if recover() == nil {
			t.Error("Submit with nil verts did not panic")
		}
	}()
	_, _ = eng.Submit(newState(), nil, nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3)
}

func TestSubmitIndexedWithoutIndicesPanics(t *testing.T) {
	eng := NewEngine()
	defer func() {
		if recover() == nil {
			t.Error("indexed format without index data did not panic")
		}
	}()
	_, _ = eng.Submit(newState(), posVerts(3), nil,
		gecore.PosFloat|gecore.IdxUint16, gecore.TopologyTriangles, 3)
}

func TestInvalidateContext(t *testing.T) {
	eng := NewEngine()
	state := newState()

	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("InvalidateContext mid-batch did not panic")
			}
		}()
		eng.InvalidateContext()
	}()

	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	missesBefore := eng.Stats().DecoderMisses
	eng.InvalidateContext()

	// The same format must be rebuilt after invalidation.
	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if eng.Stats().DecoderMisses != missesBefore+1 {
		t.Errorf("DecoderMisses = %d, want %d",
			eng.Stats().DecoderMisses, missesBefore+1)
	}
}

func TestThroughModeUpdatesVertBounds(t *testing.T) {
	eng := NewEngine()
	state := newState()

	format := gecore.PosInt16 | gecore.TexInt16 | gecore.Through
	// Two vertices: UVs (16, 8) and (128, 64).
	b := make([]byte, 20)
	binary.LittleEndian.PutUint16(b[0:], 16)
	binary.LittleEndian.PutUint16(b[2:], 8)
	binary.LittleEndian.PutUint16(b[10:], 128)
	binary.LittleEndian.PutUint16(b[12:], 64)

	if _, err := eng.Submit(state, b, nil, format,
		gecore.TopologyRectangles, 2); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Bounds accumulate during drain; force it via flush and read the
	// values the sink would have seen through a recording observer.
	var seen gecore.VertexBounds
	eng.observer = observerFunc(func() { seen = state.VertBounds })
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if seen.MinU != 16 || seen.MinV != 8 || seen.MaxU != 128 || seen.MaxV != 64 {
		t.Errorf("bounds = %+v", seen)
	}
	if !state.VertBounds.Empty() {
		t.Error("bounds not reset after flush")
	}
}

// observerFunc adapts a func to the Observer interface.
type observerFunc func()

func (f observerFunc) DrawFlushed() { f() }

func TestObserverNotified(t *testing.T) {
	calls := 0
	eng := NewEngine(WithObserver(observerFunc(func() { calls++ })))
	state := newState()

	if _, err := eng.Submit(state, posVerts(3), nil, gecore.PosFloat,
		gecore.TopologyTriangles, 3); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("observer called %d times, want 1 (empty flush is silent)", calls)
	}
}
