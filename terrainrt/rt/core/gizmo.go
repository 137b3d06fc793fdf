package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoRect
	GizmoCircle
)

// GizmoTypes lists every shape in draw order.
var GizmoTypes = []GizmoType{GizmoLine, GizmoRect, GizmoCircle}

// Gizmo represents a debug shape to be drawn.
type Gizmo struct {
	Type        GizmoType
	Color       [4]float32
	ModelMatrix mgl32.Mat4

	// For Line: P1 is Start, P2 is End. ModelMatrix is Identity usually.
	P1, P2 mgl32.Vec3
}

var (
	MarkerColor       = [4]float32{0.2, 0.8, 1.0, 1.0}
	ActiveMarkerColor = [4]float32{1.0, 0.85, 0.1, 1.0}
	BoundsColor       = [4]float32{0.6, 0.6, 0.6, 0.6}
)

// flatOnGround rotates the unit XY shapes onto the XZ plane.
var flatOnGround = mgl32.HomogRotate3DX(float32(math.Pi / 2))

// SurfaceFunc returns the terrain elevation at x, z.
type SurfaceFunc func(x, z float32) float32

// MarkerGizmos builds a ring of radius Width on the surface and a stem of length Height
// for every marker. The active marker is highlighted. surface may be nil.
func MarkerGizmos(markers []Marker, active int, surface SurfaceFunc) []Gizmo {
	gizmos := make([]Gizmo, 0, len(markers)*2)
	for i, m := range markers {
		color := MarkerColor
		if i == active {
			color = ActiveMarkerColor
		}
		p := m.Position
		top := p.Y()
		if surface != nil {
			top = surface(p.X(), p.Z())
		}

		gizmos = append(gizmos, Gizmo{
			Type:  GizmoCircle,
			Color: color,
			ModelMatrix: mgl32.Translate3D(p.X(), top, p.Z()).
				Mul4(flatOnGround).
				Mul4(mgl32.Scale3D(m.Width, m.Width, 1)),
		})
		gizmos = append(gizmos, Gizmo{
			Type:        GizmoLine,
			Color:       color,
			ModelMatrix: mgl32.Ident4(),
			P1:          mgl32.Vec3{p.X(), top, p.Z()},
			P2:          mgl32.Vec3{p.X(), top + m.Height, p.Z()},
		})
	}
	return gizmos
}

// BoundsGizmo outlines the terrain footprint at the base elevation.
func BoundsGizmo(width, length, baseElevation float32) Gizmo {
	return Gizmo{
		Type:  GizmoRect,
		Color: BoundsColor,
		ModelMatrix: mgl32.Translate3D(0, baseElevation, 0).
			Mul4(flatOnGround).
			Mul4(mgl32.Scale3D(width, length, 1)),
	}
}
