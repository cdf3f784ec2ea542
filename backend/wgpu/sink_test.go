package wgpu

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/render"
)

func TestHALTopology(t *testing.T) {
	tests := []struct {
		top  gecore.Topology
		want gputypes.PrimitiveTopology
	}{
		{gecore.TopologyPoints, gputypes.PrimitiveTopologyPointList},
		{gecore.TopologyLines, gputypes.PrimitiveTopologyLineList},
		{gecore.TopologyLineStrip, gputypes.PrimitiveTopologyLineList},
		{gecore.TopologyTriangles, gputypes.PrimitiveTopologyTriangleList},
		{gecore.TopologyTriangleStrip, gputypes.PrimitiveTopologyTriangleList},
		{gecore.TopologyTriangleFan, gputypes.PrimitiveTopologyTriangleList},
		{gecore.TopologyRectangles, gputypes.PrimitiveTopologyTriangleList},
	}
	for _, tt := range tests {
		got, err := halTopology(tt.top)
		if err != nil {
			t.Errorf("halTopology(%v) error: %v", tt.top, err)
			continue
		}
		if got != tt.want {
			t.Errorf("halTopology(%v) = %v, want %v", tt.top, got, tt.want)
		}
	}

	if _, err := halTopology(gecore.TopologyInvalid); err == nil {
		t.Error("invalid topology should not map to a pipeline")
	}
}

func TestExpandRects(t *testing.T) {
	s := &Sink{}
	s.staged = []render.TransformedVertex{}

	tl := render.TransformedVertex{
		Pos: [3]float32{10, 20, 0},
		UV:  [2]float32{0, 0},
	}
	br := render.TransformedVertex{
		Pos:   [3]float32{30, 50, 7},
		UV:    [2]float32{1, 1},
		Color: [4]float32{1, 0, 0, 1},
	}
	s.expandRects([]render.TransformedVertex{tl, br})

	if len(s.staged) != 6 {
		t.Fatalf("expanded %d vertices, want 6", len(s.staged))
	}
	// All corners carry the second vertex's color and depth.
	for i, v := range s.staged {
		if v.Color != br.Color {
			t.Errorf("vertex %d color = %v, want provoking color", i, v.Color)
		}
		if v.Pos[2] != br.Pos[2] {
			t.Errorf("vertex %d depth = %v, want %v", i, v.Pos[2], br.Pos[2])
		}
	}
	// First triangle: upper left, upper right, lower right.
	wantXY := [][2]float32{{10, 20}, {30, 20}, {30, 50}, {10, 20}, {30, 50}, {10, 50}}
	for i, want := range wantXY {
		got := [2]float32{s.staged[i].Pos[0], s.staged[i].Pos[1]}
		if got != want {
			t.Errorf("vertex %d at %v, want %v", i, got, want)
		}
	}
	// UVs follow their corners.
	if got := s.staged[1].UV; got != [2]float32{1, 0} {
		t.Errorf("upper right UV = %v, want (1,0)", got)
	}
	if got := s.staged[5].UV; got != [2]float32{0, 1} {
		t.Errorf("lower left UV = %v, want (0,1)", got)
	}
}

func TestVertsToBytesLength(t *testing.T) {
	verts := make([]render.TransformedVertex, 3)
	if got := len(vertsToBytes(verts)); got != 3*vertexStride {
		t.Errorf("byte length = %d, want %d", got, 3*vertexStride)
	}
	if vertsToBytes(nil) != nil {
		t.Error("empty slice should produce no bytes")
	}
	if got := len(indsToBytes([]uint16{1, 2, 3})); got != 6 {
		t.Errorf("index byte length = %d, want 6", got)
	}
}
