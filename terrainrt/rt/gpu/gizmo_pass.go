package gpu

import (
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"
	"github.com/gekko3d/blobterrain/terrainrt/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// GizmoVertex matches the WGSL VertexInput
type GizmoVertex struct {
	Pos [3]float32
}

// GizmoInstance matches the WGSL instance attributes
type GizmoInstance struct {
	ModelMat mgl32.Mat4
	Color    [4]float32
}

// GizmoRenderPass draws marker outlines over the terrain without depth testing.
type GizmoRenderPass struct {
	Pipeline       *wgpu.RenderPipeline
	BindGroup      *wgpu.BindGroup
	VertexBuffer   *wgpu.Buffer
	VertexCount    uint32
	ShapeOffsets   map[core.GizmoType]uint32
	ShapeCounts    map[core.GizmoType]uint32
	InstanceBuffer *wgpu.Buffer
	InstanceCap    uint32
	GizmosByShape  map[core.GizmoType][]GizmoInstance
	Device         *wgpu.Device
}

func NewGizmoRenderPass(device *wgpu.Device, format wgpu.TextureFormat) (*GizmoRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "GizmoShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.GizmoWGSL},
	})
	if err != nil {
		return nil, err
	}

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "GizmoCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
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

	instanceAttrs := make([]wgpu.VertexAttribute, 0, 5)
	for i := 0; i < 5; i++ {
		instanceAttrs = append(instanceAttrs, wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(16 * i),
			ShaderLocation: uint32(2 + i),
		})
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "GizmoPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(GizmoVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(GizmoInstance{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes:  instanceAttrs,
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
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: OverlayDepthState(),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &GizmoRenderPass{
		Pipeline:      pipeline,
		Device:        device,
		ShapeOffsets:  make(map[core.GizmoType]uint32),
		ShapeCounts:   make(map[core.GizmoType]uint32),
		GizmosByShape: make(map[core.GizmoType][]GizmoInstance),
	}

	vertices := unitShapes(p.ShapeOffsets, p.ShapeCounts)

	p.VertexCount = uint32(len(vertices))
	p.VertexBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "GizmoUnitVertexBuffer",
		Contents: sliceBytes(vertices),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// unitShapes builds one line list holding every shape and records where each starts.
func unitShapes(offsets, counts map[core.GizmoType]uint32) []GizmoVertex {
	var vertices []GizmoVertex
	addShape := func(t core.GizmoType, shapeVertices []GizmoVertex) {
		offsets[t] = uint32(len(vertices))
		counts[t] = uint32(len(shapeVertices))
		vertices = append(vertices, shapeVertices...)
	}

	// Unit line along +Z, stretched from P1 to P2 per instance.
	addShape(core.GizmoLine, []GizmoVertex{
		{Pos: [3]float32{0, 0, 0}},
		{Pos: [3]float32{0, 0, 1}},
	})

	lo, hi := float32(-0.5), float32(0.5)
	addShape(core.GizmoRect, []GizmoVertex{
		{Pos: [3]float32{lo, lo, 0}}, {Pos: [3]float32{hi, lo, 0}},
		{Pos: [3]float32{hi, lo, 0}}, {Pos: [3]float32{hi, hi, 0}},
		{Pos: [3]float32{hi, hi, 0}}, {Pos: [3]float32{lo, hi, 0}},
		{Pos: [3]float32{lo, hi, 0}}, {Pos: [3]float32{lo, lo, 0}},
	})

	const steps = 32
	angleStep := 2.0 * math.Pi / steps
	circle := make([]GizmoVertex, 0, steps*2)
	for i := 0; i < steps; i++ {
		a1, a2 := float64(i)*angleStep, float64(i+1)*angleStep
		circle = append(circle,
			GizmoVertex{Pos: [3]float32{float32(math.Cos(a1)), float32(math.Sin(a1)), 0}},
			GizmoVertex{Pos: [3]float32{float32(math.Cos(a2)), float32(math.Sin(a2)), 0}})
	}
	addShape(core.GizmoCircle, circle)

	return vertices
}

// lineModel maps the unit +Z line onto the segment p1..p2.
func lineModel(p1, p2 mgl32.Vec3) (mgl32.Mat4, bool) {
	diff := p2.Sub(p1)
	dist := diff.Len()
	if dist < 0.0001 {
		return mgl32.Mat4{}, false
	}
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, diff.Normalize())
	return mgl32.Translate3D(p1.X(), p1.Y(), p1.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(1, 1, dist)), true
}

func (p *GizmoRenderPass) Update(queue *wgpu.Queue, gizmos []core.Gizmo) {
	for k := range p.GizmosByShape {
		p.GizmosByShape[k] = p.GizmosByShape[k][:0]
	}

	for _, g := range gizmos {
		inst := GizmoInstance{Color: g.Color}

		if g.Type == core.GizmoLine {
			wp1 := g.ModelMatrix.Mul4x1(g.P1.Vec4(1.0)).Vec3()
			wp2 := g.ModelMatrix.Mul4x1(g.P2.Vec4(1.0)).Vec3()
			m, ok := lineModel(wp1, wp2)
			if !ok {
				continue
			}
			inst.ModelMat = m
		} else {
			inst.ModelMat = g.ModelMatrix
		}

		p.GizmosByShape[g.Type] = append(p.GizmosByShape[g.Type], inst)
	}

	var allInstances []GizmoInstance
	for _, shapeType := range core.GizmoTypes {
		allInstances = append(allInstances, p.GizmosByShape[shapeType]...)
	}
	if len(allInstances) == 0 {
		return
	}

	instanceCount := uint32(len(allInstances))
	if p.InstanceBuffer == nil || p.InstanceCap < instanceCount {
		if p.InstanceBuffer != nil {
			p.InstanceBuffer.Release()
		}
		p.InstanceCap = instanceCount + 128
		p.InstanceBuffer, _ = p.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "GizmoInstanceBuffer",
			Size:  uint64(p.InstanceCap) * uint64(unsafe.Sizeof(GizmoInstance{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
	}

	queue.WriteBuffer(p.InstanceBuffer, 0, sliceBytes(allInstances))
}

func (p *GizmoRenderPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.InstanceBuffer == nil || p.BindGroup == nil {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.SetVertexBuffer(1, p.InstanceBuffer, 0, p.InstanceBuffer.GetSize())

	var instanceOffset uint32
	for _, shapeType := range core.GizmoTypes {
		count := uint32(len(p.GizmosByShape[shapeType]))
		if count > 0 {
			pass.Draw(p.ShapeCounts[shapeType], count, p.ShapeOffsets[shapeType], instanceOffset)
		}
		instanceOffset += count
	}
}

// BindCamera shares the terrain pass camera buffer.
func (p *GizmoRenderPass) BindCamera(cameraBuffer *wgpu.Buffer) error {
	bg, err := p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "GizmoCameraBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  cameraBuffer,
				Size:    CameraUniformSize,
			},
		},
	})
	if err != nil {
		return err
	}
	p.BindGroup = bg
	return nil
}
