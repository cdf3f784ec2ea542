// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ge/gecore"
)

// vertexStride is the byte size of one render.TransformedVertex: three
// position floats, fog, two UV floats, four color floats.
const vertexStride = 40

// pipelineKey selects a pipeline variant: one per primitive class, times the
// two vertex entry points.
type pipelineKey struct {
	topology gputypes.PrimitiveTopology
	clip     bool
}

// batchVertexLayout describes the interleaved batch vertex buffer.
func batchVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32, Offset: 12, ShaderLocation: 1},   // fog
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2}, // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 24, ShaderLocation: 3}, // color
			},
		},
	}
}

// halTopology maps a batch primitive class to the HAL topology.
func halTopology(top gecore.Topology) (gputypes.PrimitiveTopology, error) {
	switch top.Class() {
	case gecore.TopologyPoints:
		return gputypes.PrimitiveTopologyPointList, nil
	case gecore.TopologyLines:
		return gputypes.PrimitiveTopologyLineList, nil
	// Rectangles reach the sink pre-expanded to triangle pairs.
	case gecore.TopologyTriangles, gecore.TopologyRectangles:
		return gputypes.PrimitiveTopologyTriangleList, nil
	default:
		return 0, fmt.Errorf("wgpu: no pipeline for topology %v", top)
	}
}

// createPipelines builds the pipeline variants for every primitive class and
// both vertex entry points.
func (s *Sink) createPipelines() error {
	topologies := []gputypes.PrimitiveTopology{
		gputypes.PrimitiveTopologyPointList,
		gputypes.PrimitiveTopologyLineList,
		gputypes.PrimitiveTopologyTriangleList,
	}

	for _, top := range topologies {
		for _, clip := range []bool{false, true} {
			entry := "vs_pixel"
			if clip {
				entry = "vs_clip"
			}
			p, err := s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
				Label:  fmt.Sprintf("batch_pipeline_%d_%s", top, entry),
				Layout: s.pipeLayout,
				Vertex: hal.VertexState{
					Module:     s.shader,
					EntryPoint: entry,
					Buffers:    batchVertexLayout(),
				},
				Fragment: &hal.FragmentState{
					Module:     s.shader,
					EntryPoint: "fs_main",
					Targets: []gputypes.ColorTargetState{
						{
							Format:    gputypes.TextureFormatBGRA8Unorm,
							WriteMask: gputypes.ColorWriteMaskAll,
						},
					},
				},
				DepthStencil: &hal.DepthStencilState{
					Format:            gputypes.TextureFormatDepth24PlusStencil8,
					DepthWriteEnabled: false,
					DepthCompare:      gputypes.CompareFunctionAlways,
					StencilFront: hal.StencilFaceState{
						Compare:     gputypes.CompareFunctionAlways,
						FailOp:      hal.StencilOperationKeep,
						DepthFailOp: hal.StencilOperationKeep,
						PassOp:      hal.StencilOperationKeep,
					},
					StencilBack: hal.StencilFaceState{
						Compare:     gputypes.CompareFunctionAlways,
						FailOp:      hal.StencilOperationKeep,
						DepthFailOp: hal.StencilOperationKeep,
						PassOp:      hal.StencilOperationKeep,
					},
				},
				Primitive: gputypes.PrimitiveState{
					Topology: top,
					CullMode: gputypes.CullModeNone,
				},
				Multisample: gputypes.MultisampleState{
					Count: 1,
					Mask:  0xFFFFFFFF,
				},
			})
			if err != nil {
				return fmt.Errorf("create pipeline %v: %w", top, err)
			}
			s.pipelines[pipelineKey{top, clip}] = p
		}
	}
	return nil
}
