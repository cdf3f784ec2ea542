package render

import (
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/vertex"
)

func TestThroughTransformerMapsToClipSpace(t *testing.T) {
	tr := NewThroughTransformer(16)
	state := &gecore.RenderState{TargetWidth: 480, TargetHeight: 272}

	res, err := tr.Transform(TransformInput{
		Vertices: []vertex.Vertex{
			{Pos: f32.Vec3{0, 0, 0}},
			{Pos: f32.Vec3{480, 272, 65535}},
			{Pos: f32.Vec3{240, 136, 32767.5}},
		},
		Topology: gecore.TopologyTriangles,
		State:    state,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Action != ActionDraw {
		t.Fatalf("Action = %v, want ActionDraw", res.Action)
	}

	want := []f32.Vec3{
		{-1, 1, 0},
		{1, -1, 1},
		{0, 0, 0.5},
	}
	for i, w := range want {
		if res.Vertices[i].Pos != w {
			t.Errorf("vertex %d pos = %v, want %v", i, res.Vertices[i].Pos, w)
		}
		if res.Vertices[i].Fog != 1 {
			t.Errorf("vertex %d fog = %v, want 1", i, res.Vertices[i].Fog)
		}
	}
}

func TestThroughTransformerIndexedPassthrough(t *testing.T) {
	tr := NewThroughTransformer(16)
	state := &gecore.RenderState{TargetWidth: 480, TargetHeight: 272}

	inds := []uint16{0, 1, 2, 2, 1, 0}
	res, err := tr.Transform(TransformInput{
		Vertices: make([]vertex.Vertex, 3),
		Indices:  inds,
		Topology: gecore.TopologyTriangles,
		State:    state,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !res.Indexed || res.Count != len(inds) {
		t.Errorf("Indexed = %v, Count = %d; want indexed with %d indices",
			res.Indexed, res.Count, len(inds))
	}
}

func TestThroughTransformerClearMode(t *testing.T) {
	tr := NewThroughTransformer(16)
	state := &gecore.RenderState{
		TargetWidth:  480,
		TargetHeight: 272,
		ClearMode:    true,
	}

	res, err := tr.Transform(TransformInput{
		Vertices: []vertex.Vertex{
			{Pos: f32.Vec3{0, 0, 0}},
			{
				Pos:   f32.Vec3{480, 272, 65535},
				Color: f32.Vec4{1, 0.5, 0, 1},
			},
		},
		Topology: gecore.TopologyRectangles,
		State:    state,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if res.Action != ActionClear {
		t.Fatalf("Action = %v, want ActionClear", res.Action)
	}
	if res.Color.R != 1 || res.Color.G != 0.5 || res.Color.B != 0 || res.Color.A != 1 {
		t.Errorf("clear color = %+v", res.Color)
	}
	if res.Depth != 1 {
		t.Errorf("clear depth = %v, want 1", res.Depth)
	}
}

func TestThroughTransformerZeroExtent(t *testing.T) {
	tr := NewThroughTransformer(4)
	_, err := tr.Transform(TransformInput{
		Vertices: make([]vertex.Vertex, 3),
		State:    &gecore.RenderState{},
	})
	if err != ErrEmptyTarget {
		t.Errorf("err = %v, want ErrEmptyTarget", err)
	}
}

func TestRecorderSnapshots(t *testing.T) {
	var r Recorder

	verts := []vertex.Vertex{{Pos: f32.Vec3{1, 2, 3}}}
	inds := []uint16{0, 0, 0}
	r.BindVertices(verts)
	r.BindIndices(inds, gecore.IndexUint16)
	if err := r.DrawIndexed(gecore.TopologyTriangles, 1, 3); err != nil {
		t.Fatalf("DrawIndexed() error = %v", err)
	}

	// Mutating the source must not change the recording.
	verts[0].Pos[0] = 99
	inds[0] = 7

	if r.Vertices[0].Pos[0] != 1 {
		t.Error("recorder aliased the vertex slice instead of copying")
	}
	if r.Indices[0] != 0 {
		t.Error("recorder aliased the index slice instead of copying")
	}
	if len(r.Ops) != 1 || r.Ops[0].Kind != OpDrawIndexed || r.Ops[0].IndexCount != 3 {
		t.Errorf("Ops = %+v", r.Ops)
	}
}

func TestRecorderReset(t *testing.T) {
	var r Recorder
	r.BindVertices(make([]vertex.Vertex, 2))
	if err := r.Draw(gecore.TopologyPoints, 2); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	r.Reset()
	if len(r.Ops) != 0 || len(r.Vertices) != 0 {
		t.Error("Reset() left recorded state behind")
	}
}
