package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/blobterrain/terrainrt/rt/mesh"
	"github.com/gekko3d/blobterrain/terrainrt/rt/shaders"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// TerrainRenderPass draws the height field. Vertex and index buffers are sized once
// because the grid topology never changes.
type TerrainRenderPass struct {
	Pipeline     *wgpu.RenderPipeline
	BindGroup    *wgpu.BindGroup
	CameraBuffer *wgpu.Buffer
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	IndexCount   uint32
	VertexCount  uint32

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	Device *wgpu.Device
}

func NewTerrainRenderPass(device *wgpu.Device, format wgpu.TextureFormat, initial *mesh.Mesh) (*TerrainRenderPass, error) {
	if initial == nil || len(initial.Vertices) == 0 || len(initial.Indices) == 0 {
		return nil, fmt.Errorf("terrain pass needs a non-empty mesh")
	}

	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "TerrainShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TerrainWGSL},
	})
	if err != nil {
		return nil, err
	}

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "TerrainCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: CameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "TerrainPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(mesh.Vertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone, // the underside is visible when orbiting below the ground
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      stencilKeep,
			StencilBack:       stencilKeep,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &TerrainRenderPass{
		Pipeline:    pipeline,
		Device:      device,
		VertexCount: uint32(len(initial.Vertices)),
		IndexCount:  uint32(len(initial.Indices)),
	}

	p.CameraBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "TerrainCameraBuffer",
		Size:  CameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	p.VertexBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "TerrainVertexBuffer",
		Contents: sliceBytes(initial.Vertices),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	p.IndexBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "TerrainIndexBuffer",
		Contents: sliceBytes(initial.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, err
	}

	p.BindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "TerrainCameraBG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.CameraBuffer, Size: CameraUniformSize},
		},
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// UpdateMesh rewrites vertex data in place. A mesh with a different vertex count is rejected.
func (p *TerrainRenderPass) UpdateMesh(queue *wgpu.Queue, m *mesh.Mesh) error {
	if m == nil {
		return nil
	}
	if uint32(len(m.Vertices)) != p.VertexCount {
		return fmt.Errorf("terrain mesh has %d vertices, buffer holds %d", len(m.Vertices), p.VertexCount)
	}
	return queue.WriteBuffer(p.VertexBuffer, 0, sliceBytes(m.Vertices))
}

func (p *TerrainRenderPass) UpdateCamera(queue *wgpu.Queue, cam CameraUniform) error {
	return queue.WriteBuffer(p.CameraBuffer, 0, sliceBytes([]CameraUniform{cam}))
}

// ResizeDepth recreates the depth attachment for a w x h framebuffer.
func (p *TerrainRenderPass) ResizeDepth(w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if p.DepthView != nil {
		p.DepthView.Release()
	}
	if p.DepthTexture != nil {
		p.DepthTexture.Release()
	}

	var err error
	p.DepthTexture, err = p.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "TerrainDepth",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	p.DepthView, err = p.DepthTexture.CreateView(nil)
	return err
}

func (p *TerrainRenderPass) DepthAttachment() *wgpu.RenderPassDepthStencilAttachment {
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            p.DepthView,
		DepthLoadOp:     wgpu.LoadOpClear,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}
}

func (p *TerrainRenderPass) Draw(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(p.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(p.IndexCount, 1, 0, 0, 0)
}
