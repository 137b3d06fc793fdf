package app

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"
	"github.com/gekko3d/blobterrain/terrainrt/rt/editor"
	"github.com/gekko3d/blobterrain/terrainrt/rt/gpu"
	"github.com/gekko3d/blobterrain/terrainrt/rt/mesh"
	"github.com/gekko3d/blobterrain/terrainrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const hudFontSize = 16

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration
	Sampler  *wgpu.Sampler

	Settings   config.Config
	Logger     core.Logger
	Camera     *core.OrbitCamera
	Markers    *core.MarkerRegistry
	Generator  *mesh.Generator
	Dispatcher *editor.Dispatcher
	Profiler   *Profiler

	TerrainPass *gpu.TerrainRenderPass
	GizmoPass   *gpu.GizmoRenderPass

	TextRenderer     *core.TextRenderer
	TextPipeline     *wgpu.RenderPipeline
	TextAtlasView    *wgpu.TextureView
	TextBindGroup    *wgpu.BindGroup
	TextVertexBuffer *wgpu.Buffer
	TextItems        []core.TextItem
	TextVertexCount  uint32

	uploaded *mesh.Mesh

	LastRenderTime float64
	DebugMode      bool

	FrameCount int
	FPS        float64
	FPSTime    float64
}

// NewApp builds the editing state. No GPU work happens until Init.
func NewApp(window *glfw.Window, cfg config.Config, logger core.Logger) (*App, error) {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	camera, err := core.NewOrbitCamera(cfg.Camera)
	if err != nil {
		return nil, err
	}
	markers := core.NewMarkerRegistry(cfg.Terrain.BaseElevation, cfg.Markers.MinSize)
	generator := mesh.NewGenerator(cfg.Terrain)

	return &App{
		Window:     window,
		Settings:   cfg,
		Logger:     logger,
		Camera:     camera,
		Markers:    markers,
		Generator:  generator,
		Dispatcher: editor.NewDispatcher(cfg, camera, markers, generator, logger),
		Profiler:   NewProfiler(),
		DebugMode:  cfg.Debug,
	}, nil
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)

	surface := a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))
	a.Surface = surface

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return err
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, a.Device, a.Config)

	a.Sampler, err = a.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	a.TerrainPass, err = gpu.NewTerrainRenderPass(a.Device, format, a.Dispatcher.Mesh())
	if err != nil {
		return fmt.Errorf("terrain pass: %w", err)
	}
	a.uploaded = a.Dispatcher.Mesh()
	if err := a.TerrainPass.ResizeDepth(width, height); err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}

	a.GizmoPass, err = gpu.NewGizmoRenderPass(a.Device, format)
	if err != nil {
		return fmt.Errorf("gizmo pass: %w", err)
	}
	if err := a.GizmoPass.BindCamera(a.TerrainPass.CameraBuffer); err != nil {
		return fmt.Errorf("gizmo camera: %w", err)
	}

	a.TextRenderer, err = core.NewTextRenderer(a.Settings.FontPath, hudFontSize)
	if err != nil {
		a.Logger.Warnf("HUD disabled: %v", err)
	} else {
		a.setupTextResources()
	}

	a.UpdateViewport()
	a.Logger.Infof("renderer ready: %dx%d, %d terrain vertices", width, height, a.Generator.VertexCount())
	return nil
}

// Resize reconfigures the surface for a new framebuffer size.
func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
		if err := a.TerrainPass.ResizeDepth(w, h); err != nil {
			a.Logger.Errorf("depth resize failed: %v", err)
		}
	}
	a.UpdateViewport()
}

// UpdateViewport hands the picking projection to the dispatcher. Cursor positions arrive in
// window coordinates, so the window size is used rather than the framebuffer size.
func (a *App) UpdateViewport() {
	w, h := a.Window.GetSize()
	proj, err := a.projection(w, h)
	if err != nil {
		// minimised; picks fail until the window is restored
		a.Logger.Debugf("viewport %dx%d: %v", w, h, err)
	}
	a.Dispatcher.SetViewport(w, h, proj)
}

func (a *App) projection(w, h int) (mgl32.Mat4, error) {
	c := a.Settings.Camera
	return core.Projection(c.FovDeg, w, h, c.Near, c.Far)
}

func (a *App) Update() {
	a.Profiler.Reset()

	a.Profiler.BeginScope("regen")
	a.Dispatcher.Flush()
	a.Profiler.EndScope("regen")

	a.Profiler.BeginScope("upload")
	if m := a.Dispatcher.Mesh(); m != a.uploaded {
		if err := a.TerrainPass.UpdateMesh(a.Queue, m); err != nil {
			a.Logger.Errorf("terrain upload failed: %v", err)
		}
		a.uploaded = m
	}

	proj, err := a.projection(int(a.Config.Width), int(a.Config.Height))
	if err == nil {
		cam := gpu.NewCameraUniform(a.Camera.ViewMatrix(), proj, a.Camera.EyePosition())
		if err := a.TerrainPass.UpdateCamera(a.Queue, cam); err != nil {
			a.Logger.Errorf("camera upload failed: %v", err)
		}
	}

	active, ok := a.Markers.Active()
	if !ok {
		active = -1
	}
	gizmos := core.MarkerGizmos(a.Markers.Markers(), active, a.uploaded.HeightAt)
	t := a.Settings.Terrain
	gizmos = append(gizmos, core.BoundsGizmo(t.Width, t.Length, t.BaseElevation))
	a.GizmoPass.Update(a.Queue, gizmos)
	a.Profiler.EndScope("upload")

	a.Profiler.SetCount("markers", a.Markers.Len())
	a.Profiler.SetCount("regens", a.Dispatcher.RegenCount())

	a.ClearText()
	hud := a.Dispatcher.Status()
	if a.DebugMode {
		hud += fmt.Sprintf("\nFPS: %.1f\n", a.FPS) + a.Profiler.GetStatsString()
	}
	a.DrawText(hud, 10, 10, 1.0, [4]float32{1, 1, 1, 1})

	if len(a.TextItems) > 0 && a.TextRenderer != nil && a.TextPipeline != nil {
		vertices := a.TextRenderer.BuildVertices(a.TextItems, int(a.Config.Width), int(a.Config.Height))
		if len(vertices) > 0 {
			vSize := uint64(len(vertices) * int(unsafe.Sizeof(core.TextVertex{})))
			if a.TextVertexBuffer == nil || a.TextVertexBuffer.GetSize() < vSize {
				if a.TextVertexBuffer != nil {
					a.TextVertexBuffer.Release()
				}
				a.TextVertexBuffer, _ = a.Device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: "Text VB",
					Size:  vSize,
					Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
				})
			}
			a.Queue.WriteBuffer(a.TextVertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))
			a.TextVertexCount = uint32(len(vertices))
		}
	}
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
	a.TextVertexCount = 0
}

func (a *App) DrawText(text string, x, y float32, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, core.TextItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

func (a *App) Render() {
	a.Profiler.BeginScope("render")
	defer a.Profiler.EndScope("render")

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0},
		}},
		DepthStencilAttachment: a.TerrainPass.DepthAttachment(),
	})

	a.TerrainPass.Draw(rPass)
	a.GizmoPass.Draw(rPass)

	if a.TextVertexCount > 0 && a.TextVertexBuffer != nil && a.TextPipeline != nil {
		rPass.SetPipeline(a.TextPipeline)
		rPass.SetBindGroup(0, a.TextBindGroup, nil)
		rPass.SetVertexBuffer(0, a.TextVertexBuffer, 0, a.TextVertexBuffer.GetSize())
		rPass.Draw(a.TextVertexCount, 1, 0, 0)
	}

	if err := rPass.End(); err != nil {
		a.Logger.Errorf("render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	now := glfw.GetTime()
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}

func (a *App) setupTextResources() {
	tr := a.TextRenderer
	w, h := tr.AtlasImage.Bounds().Dx(), tr.AtlasImage.Bounds().Dy()
	tex, err := a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		a.Logger.Errorf("failed to create text atlas: %v", err)
		return
	}
	a.Queue.WriteTexture(tex.AsImageCopy(), tr.AtlasImage.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	a.TextAtlasView, _ = tex.CreateView(nil)

	textMod, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		a.Logger.Errorf("failed to create text shader module: %v", err)
		return
	}

	a.TextPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: a.Config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		DepthStencil: gpu.OverlayDepthState(),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		a.Logger.Errorf("failed to create text render pipeline: %v", err)
		return
	}

	a.TextBindGroup, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.TextPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.TextAtlasView},
			{Binding: 1, Sampler: a.Sampler},
		},
	})
	if err != nil {
		a.Logger.Errorf("failed to create text bind group: %v", err)
		a.TextPipeline = nil
	}
}
