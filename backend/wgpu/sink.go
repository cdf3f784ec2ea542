// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ge/gecore"
	"github.com/gogpu/ge/render"
	"github.com/gogpu/ge/vertex"
)

// Sink errors.
var (
	// ErrNoTarget is returned when drawing before SetTarget.
	ErrNoTarget = errors.New("wgpu: no render target set")

	// ErrTooManyVertices is returned when a batch exceeds the buffer
	// capacity the sink was created with.
	ErrTooManyVertices = errors.New("wgpu: batch exceeds sink capacity")
)

// gpuTimeout bounds the fence wait after each submission.
const gpuTimeout = 5 * time.Second

// Sink is a render.CommandSink that draws batches through the gogpu/wgpu
// HAL. Create it with NewSink and point it at a target with SetTarget before
// the first flush.
//
// Sink is single-goroutine, like the engine that feeds it.
type Sink struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	bindGroup     hal.BindGroup
	pipelines     map[pipelineKey]hal.RenderPipeline

	vertexBuf  hal.Buffer
	indexBuf   hal.Buffer
	uniformBuf hal.Buffer

	colorView hal.TextureView
	depthView hal.TextureView
	width     uint32
	height    uint32

	vertexCapacity int
	indexCapacity  int

	// Staged batch data between Bind and Draw.
	staged      []render.TransformedVertex
	stagedInds  []uint16
	indexFormat gecore.IndexFormat
	clip        bool
}

// NewSink creates a sink with persistent buffers sized for vertexCapacity
// vertices and indexCapacity indices. The device and queue are the host's;
// the sink does not own them.
func NewSink(device hal.Device, queue hal.Queue, vertexCapacity, indexCapacity int) (*Sink, error) {
	s := &Sink{
		device:         device,
		queue:          queue,
		pipelines:      make(map[pipelineKey]hal.RenderPipeline),
		vertexCapacity: vertexCapacity,
		indexCapacity:  indexCapacity,
		staged:         make([]render.TransformedVertex, 0, vertexCapacity),
		stagedInds:     make([]uint16, 0, indexCapacity),
	}

	shader, err := compileShader(device, "batch_shader", batchShaderWGSL)
	if err != nil {
		return nil, err
	}
	s.shader = shader

	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create uniform layout: %w", err)
	}
	s.uniformLayout = uniformLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{uniformLayout},
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	s.uniformBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_viewport",
		Size:  16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}

	s.vertexBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_vertices",
		Size:  uint64(vertexCapacity) * vertexStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	s.indexBuf, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "batch_indices",
		Size:  uint64(indexCapacity) * 2,
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create index buffer: %w", err)
	}

	s.bindGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "batch_bind_group",
		Layout: uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: s.uniformBuf.NativeHandle(), Offset: 0, Size: 16,
			}},
		},
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	if err := s.createPipelines(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// SetTarget points the sink at the views it renders into and updates the
// viewport uniform. Call it whenever the host's render target changes.
func (s *Sink) SetTarget(color, depth hal.TextureView, width, height uint32) {
	s.colorView = color
	s.depthView = depth
	s.width = width
	s.height = height

	var viewport [16]byte
	binary.LittleEndian.PutUint32(viewport[0:], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(viewport[4:], math.Float32bits(float32(height)))
	s.queue.WriteBuffer(s.uniformBuf, 0, viewport[:])
}

// BindVertices stages decoded vertices for a direct-mode draw. Positions are
// taken as pixel coordinates and mapped to NDC in the vertex shader.
func (s *Sink) BindVertices(verts []vertex.Vertex) {
	s.staged = s.staged[:0]
	for _, v := range verts {
		s.staged = append(s.staged, render.TransformedVertex{
			Pos:   v.Pos,
			Fog:   1,
			UV:    v.UV,
			Color: v.Color,
		})
	}
	s.clip = false
}

// BindTransformed stages clip-space vertices from the software pipeline.
func (s *Sink) BindTransformed(verts []render.TransformedVertex) {
	s.staged = append(s.staged[:0], verts...)
	s.clip = true
}

// BindIndices stages the merged index stream.
func (s *Sink) BindIndices(inds []uint16, format gecore.IndexFormat) {
	s.stagedInds = append(s.stagedInds[:0], inds...)
	s.indexFormat = format
}

// Draw submits a non-indexed draw of the staged vertices.
func (s *Sink) Draw(top gecore.Topology, vertexCount int) error {
	if vertexCount == 0 {
		return nil
	}
	if top.Class() == gecore.TopologyRectangles {
		s.expandRects(s.staged[:vertexCount])
		return s.encode(gecore.TopologyTriangles, len(s.staged), 0, false)
	}
	return s.encode(top, vertexCount, 0, false)
}

// DrawIndexed submits an indexed draw of the staged vertices and indices.
func (s *Sink) DrawIndexed(top gecore.Topology, vertexCount, indexCount int) error {
	if indexCount == 0 {
		return nil
	}
	if top.Class() == gecore.TopologyRectangles {
		// Resolve indices on the CPU, then expand the pairs: rectangles
		// have no HAL topology.
		resolved := make([]render.TransformedVertex, 0, indexCount)
		for _, i := range s.stagedInds[:indexCount] {
			resolved = append(resolved, s.staged[i])
		}
		s.expandRects(resolved)
		return s.encode(gecore.TopologyTriangles, len(s.staged), 0, false)
	}
	return s.encode(top, vertexCount, indexCount, true)
}

// expandRects rewrites the staged buffer, turning each (upper-left,
// lower-right) vertex pair into two triangles. The second vertex of a pair
// provides color and depth, per the stream's provoking-vertex rule.
func (s *Sink) expandRects(pairs []render.TransformedVertex) {
	out := make([]render.TransformedVertex, 0, len(pairs)/2*6)
	for i := 0; i+1 < len(pairs); i += 2 {
		tl, br := pairs[i], pairs[i+1]

		mk := func(x, y, u, v float32) render.TransformedVertex {
			r := br
			r.Pos[0], r.Pos[1] = x, y
			r.UV[0], r.UV[1] = u, v
			return r
		}
		a := mk(tl.Pos[0], tl.Pos[1], tl.UV[0], tl.UV[1]) // upper left
		b := mk(br.Pos[0], tl.Pos[1], br.UV[0], tl.UV[1]) // upper right
		c := mk(br.Pos[0], br.Pos[1], br.UV[0], br.UV[1]) // lower right
		d := mk(tl.Pos[0], br.Pos[1], tl.UV[0], br.UV[1]) // lower left

		out = append(out, a, b, c, a, c, d)
	}
	s.staged = append(s.staged[:0], out...)
}

// Clear encodes a render pass whose load ops wipe the selected channels.
func (s *Sink) Clear(params render.ClearParams) error {
	if s.colorView == nil {
		return ErrNoTarget
	}

	colorLoad := gputypes.LoadOpLoad
	if params.Mask&(gecore.ClearColor|gecore.ClearAlpha) != 0 {
		colorLoad = gputypes.LoadOpClear
	}
	depthLoad := gputypes.LoadOpLoad
	if params.Mask&gecore.ClearDepth != 0 {
		depthLoad = gputypes.LoadOpClear
	}
	stencilLoad := gputypes.LoadOpLoad
	if params.Mask&gecore.ClearStencil != 0 {
		stencilLoad = gputypes.LoadOpClear
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "batch_clear_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch_clear"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "batch_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       s.colorView,
			LoadOp:     colorLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: params.Color,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              s.depthView,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   params.Depth,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	rp.End()

	return s.finish(encoder)
}

// encode uploads the staged batch and records a single draw.
func (s *Sink) encode(top gecore.Topology, vertexCount, indexCount int, indexed bool) error {
	if s.colorView == nil {
		return ErrNoTarget
	}
	if vertexCount > s.vertexCapacity || indexCount > s.indexCapacity {
		return fmt.Errorf("%w: %d vertices, %d indices", ErrTooManyVertices,
			vertexCount, indexCount)
	}

	halTop, err := halTopology(top)
	if err != nil {
		return err
	}
	pipeline, ok := s.pipelines[pipelineKey{halTop, s.clip}]
	if !ok {
		return fmt.Errorf("wgpu: missing pipeline for %v", top)
	}

	s.queue.WriteBuffer(s.vertexBuf, 0, vertsToBytes(s.staged[:vertexCount]))
	if indexed {
		s.queue.WriteBuffer(s.indexBuf, 0, indsToBytes(s.stagedInds[:indexCount]))
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "batch_draw_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch_draw"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "batch_draw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    s.colorView,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:           s.depthView,
			DepthLoadOp:    gputypes.LoadOpLoad,
			DepthStoreOp:   gputypes.StoreOpStore,
			StencilLoadOp:  gputypes.LoadOpLoad,
			StencilStoreOp: gputypes.StoreOpStore,
		},
	})

	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, s.bindGroup, nil)
	rp.SetVertexBuffer(0, s.vertexBuf, 0)
	if indexed {
		rp.SetIndexBuffer(s.indexBuf, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(uint32(indexCount), 1, 0, 0, 0)
	} else {
		rp.Draw(uint32(vertexCount), 1, 0, 0)
	}
	rp.End()

	return s.finish(encoder)
}

// finish ends encoding, submits, and waits on a fence.
func (s *Sink) finish(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	subIdx, err := s.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := s.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if completed := s.queue.PollCompleted(); completed < subIdx {
		return fmt.Errorf("wait for GPU: submission %d not completed (last completed %d)", subIdx, completed)
	}
	return nil
}

// Destroy releases every GPU resource the sink owns. The device and queue
// stay with the host.
func (s *Sink) Destroy() {
	for _, p := range s.pipelines {
		s.device.DestroyRenderPipeline(p)
	}
	s.pipelines = map[pipelineKey]hal.RenderPipeline{}
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.vertexBuf != nil {
		s.device.DestroyBuffer(s.vertexBuf)
		s.vertexBuf = nil
	}
	if s.indexBuf != nil {
		s.device.DestroyBuffer(s.indexBuf)
		s.indexBuf = nil
	}
	if s.uniformBuf != nil {
		s.device.DestroyBuffer(s.uniformBuf)
		s.uniformBuf = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.uniformLayout != nil {
		s.device.DestroyBindGroupLayout(s.uniformLayout)
		s.uniformLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}

// vertsToBytes reinterprets staged vertices as their raw bytes for upload.
func vertsToBytes(v []render.TransformedVertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*vertexStride)
}

// indsToBytes reinterprets the index stream as bytes for upload.
func indsToBytes(inds []uint16) []byte {
	if len(inds) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&inds[0])), len(inds)*2)
}

var _ render.CommandSink = (*Sink)(nil)
