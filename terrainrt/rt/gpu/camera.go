package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraUniformSize is the binding size shared by the terrain and gizmo pipelines.
const CameraUniformSize = 256

// CameraUniform matches the Camera struct in terrain.wgsl and gizmo.wgsl,
// padded to CameraUniformSize.
type CameraUniform struct {
	ViewProj  mgl32.Mat4
	Eye       [4]float32
	LightDir  [4]float32
	Ambient   [4]float32
	BaseColor [4]float32
	_         [32]float32
}

var (
	DefaultLightDir  = mgl32.Vec3{-0.4, -1, -0.3}
	DefaultAmbient   = [3]float32{0.25, 0.25, 0.3}
	DefaultBaseColor = [3]float32{0.45, 0.7, 0.4}
)

func NewCameraUniform(view, proj mgl32.Mat4, eye mgl32.Vec3) CameraUniform {
	l := DefaultLightDir.Normalize()
	return CameraUniform{
		ViewProj:  proj.Mul4(view),
		Eye:       [4]float32{eye.X(), eye.Y(), eye.Z(), 1},
		LightDir:  [4]float32{l.X(), l.Y(), l.Z(), 0},
		Ambient:   [4]float32{DefaultAmbient[0], DefaultAmbient[1], DefaultAmbient[2], 1},
		BaseColor: [4]float32{DefaultBaseColor[0], DefaultBaseColor[1], DefaultBaseColor[2], 1},
	}
}

var stencilKeep = wgpu.StencilFaceState{
	Compare:     wgpu.CompareFunctionAlways,
	FailOp:      wgpu.StencilOperationKeep,
	DepthFailOp: wgpu.StencilOperationKeep,
	PassOp:      wgpu.StencilOperationKeep,
}

// OverlayDepthState lets pipelines without depth testing share a pass that has a depth attachment.
func OverlayDepthState() *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: false,
		DepthCompare:      wgpu.CompareFunctionAlways,
		StencilFront:      stencilKeep,
		StencilBack:       stencilKeep,
		StencilReadMask:   0xFFFFFFFF,
		StencilWriteMask:  0xFFFFFFFF,
	}
}

func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}
