// Command gedemo feeds a small stream of raw draw calls through the batching
// engine and prints what reached the sink. It uses the software transform
// pipeline and a recording sink, so it runs without a GPU.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/ge"
	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/render"
)

func main() {
	var (
		width   = flag.Int("width", 480, "target width in pixels")
		height  = flag.Int("height", 272, "target height in pixels")
		verbose = flag.Bool("v", false, "log engine activity")
	)
	flag.Parse()

	if *verbose {
		ge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	rec := &render.Recorder{}
	eng := ge.NewEngine(
		ge.WithSink(rec),
		ge.WithTransformer(render.NewThroughTransformer(ge.DefaultVertexCapacity)),
	)

	state := &gecore.RenderState{
		TargetWidth:        *width,
		TargetHeight:       *height,
		FramebufferAddress: 0x0400_0000,
		TextureAddress:     0x0880_0000,
	}

	// Clear to opaque dark blue, then draw a quad as two merged indexed
	// triangle calls sharing one vertex buffer.
	clearTarget(eng, state, *width, *height, 0xFF402000)
	drawQuad(eng, state, *width, *height)

	if err := eng.Flush(state); err != nil {
		log.Fatalf("flush: %v", err)
	}

	for i, op := range rec.Ops {
		switch op.Kind {
		case render.OpClear:
			fmt.Printf("op %d: clear mask=%v color=%+v\n", i, op.Clear.Mask, op.Clear.Color)
		case render.OpDraw:
			fmt.Printf("op %d: draw %v, %d vertices\n", i, op.Topology, op.VertexCount)
		case render.OpDrawIndexed:
			fmt.Printf("op %d: draw indexed %v, %d vertices, %d indices\n",
				i, op.Topology, op.VertexCount, op.IndexCount)
		}
	}

	stats := eng.Stats()
	fmt.Printf("flushes=%d calls=%d submitted=%d decoded=%d\n",
		stats.Flushes, stats.DrawCallsBatched, stats.VertsSubmitted, stats.VertsDecoded)
}

// clearFormat is a through-mode vertex with packed color and 16-bit position.
const clearFormat = gecore.Col8888 | gecore.PosInt16 | gecore.Through

func clearTarget(eng *ge.Engine, state *gecore.RenderState, w, h int, color uint32) {
	state.ClearMode = true
	state.ClearModeColor = true
	state.ClearModeDepth = true
	defer func() {
		state.ClearMode = false
		state.ClearModeColor = false
		state.ClearModeDepth = false
	}()

	// Two corner vertices, color8888 + s16 position, clear-rect style. The
	// decoded stride is 12: 4 color bytes, 6 position bytes, 2 bytes pad.
	buf := make([]byte, 0, 24)
	buf = appendClearVertex(buf, color, 0, 0, 0)
	buf = appendClearVertex(buf, color, uint16(w), uint16(h), 0)

	if _, err := eng.Submit(state, buf, nil, clearFormat, gecore.TopologyRectangles, 2); err != nil {
		log.Fatalf("submit clear: %v", err)
	}
	if err := eng.Flush(state); err != nil {
		log.Fatalf("flush clear: %v", err)
	}
}

func appendClearVertex(buf []byte, color uint32, x, y, z uint16) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, color)
	buf = binary.LittleEndian.AppendUint16(buf, x)
	buf = binary.LittleEndian.AppendUint16(buf, y)
	buf = binary.LittleEndian.AppendUint16(buf, z)
	return append(buf, 0, 0)
}

// quadFormat is a float-position, float-UV through vertex.
const quadFormat = gecore.TexFloat | gecore.PosFloat | gecore.Through

func drawQuad(eng *ge.Engine, state *gecore.RenderState, w, h int) {
	cx, cy := float32(w)/2, float32(h)/2
	const half = 60

	verts := make([]byte, 0, 4*20)
	for _, p := range [][2]float32{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
	} {
		// UV pair first, then the position triple.
		verts = appendFloats(verts, 0, 0, p[0], p[1], 0)
	}

	// Two indexed triangle calls over the same buffer; the engine merges
	// them into one draw.
	inds := []byte{0, 1, 2, 0, 2, 3}
	fmtIndexed := quadFormat | gecore.IdxUint8
	if _, err := eng.Submit(state, verts, inds[:3], fmtIndexed, gecore.TopologyTriangles, 3); err != nil {
		log.Fatalf("submit quad: %v", err)
	}
	if _, err := eng.Submit(state, verts, inds[3:], fmtIndexed, gecore.TopologyTriangles, 3); err != nil {
		log.Fatalf("submit quad: %v", err)
	}
}

func appendFloats(buf []byte, vals ...float32) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}
