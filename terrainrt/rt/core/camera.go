package core

import (
	"fmt"
	"math"

	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits LookAt at Radius. Orientation is the committed angles plus the
// provisional offset of the drag in progress; the offset is folded in once on release.
type OrbitCamera struct {
	CommittedYaw   int // degrees
	CommittedPitch int // degrees
	DragYaw        int // degrees, zero unless rotating
	DragPitch      int // degrees, zero unless rotating

	Radius      float32
	MinRadius   float32
	LookAt      mgl32.Vec3
	Sensitivity float32 // degrees per pixel
	ZoomStep    float32 // world units per zoom step

	rotating         bool
	anchorX, anchorY int
}

func NewOrbitCamera(cfg config.Camera) (*OrbitCamera, error) {
	if cfg.MinRadius <= 0 || cfg.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %.3f, min radius %.3f", ErrDegenerateCamera, cfg.Radius, cfg.MinRadius)
	}
	radius := cfg.Radius
	if radius < cfg.MinRadius {
		radius = cfg.MinRadius
	}
	return &OrbitCamera{
		CommittedYaw:   cfg.YawDeg,
		CommittedPitch: cfg.PitchDeg,
		Radius:         radius,
		MinRadius:      cfg.MinRadius,
		LookAt:         mgl32.Vec3{cfg.LookAt[0], cfg.LookAt[1], cfg.LookAt[2]},
		Sensitivity:    cfg.Sensitivity,
		ZoomStep:       cfg.ZoomStep,
	}, nil
}

func (c *OrbitCamera) Rotating() bool {
	return c.rotating
}

// BeginRotateDrag anchors a rotate drag at (x, y). It reports false if a drag is already active.
func (c *OrbitCamera) BeginRotateDrag(x, y int) bool {
	if c.rotating {
		return false
	}
	c.rotating = true
	c.anchorX, c.anchorY = x, y
	c.DragYaw, c.DragPitch = 0, 0
	return true
}

// UpdateRotateDrag recomputes the provisional offset from the anchor. Dragging right
// decreases yaw and dragging up increases pitch, so the terrain follows the pointer.
func (c *OrbitCamera) UpdateRotateDrag(x, y int) {
	if !c.rotating {
		return
	}
	c.DragYaw = scaleDegrees(c.anchorX-x, c.Sensitivity)
	c.DragPitch = scaleDegrees(c.anchorY-y, c.Sensitivity)
}

// EndRotateDrag commits the provisional offset. Calling it without an active drag does nothing.
func (c *OrbitCamera) EndRotateDrag() bool {
	if !c.rotating {
		return false
	}
	c.CommittedYaw += c.DragYaw
	c.CommittedPitch += c.DragPitch
	c.DragYaw, c.DragPitch = 0, 0
	c.rotating = false
	return true
}

// Zoom moves the eye by deltaSteps zoom steps; positive moves away. The radius never drops
// below MinRadius, so the eye cannot cross the look-at point. Reports whether it clamped.
func (c *OrbitCamera) Zoom(deltaSteps float32) bool {
	next := c.Radius + deltaSteps*c.ZoomStep
	if next < c.MinRadius || math.IsNaN(float64(next)) {
		c.Radius = c.MinRadius
		return true
	}
	c.Radius = next
	return false
}

func (c *OrbitCamera) EffectiveYaw() int {
	return c.CommittedYaw + c.DragYaw
}

func (c *OrbitCamera) EffectivePitch() int {
	return c.CommittedPitch + c.DragPitch
}

// orbitAngles returns yaw and elevation in radians. Elevation is the negated pitch.
func (c *OrbitCamera) orbitAngles() (yaw, elevation float64) {
	yaw = float64(c.EffectiveYaw()) * math.Pi / 180
	elevation = -float64(c.EffectivePitch()) * math.Pi / 180
	return yaw, elevation
}

// EyeDirection is the unit vector from LookAt towards the eye.
func (c *OrbitCamera) EyeDirection() mgl32.Vec3 {
	yaw, elev := c.orbitAngles()
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(elev)),
		float32(math.Sin(elev)),
		float32(math.Cos(yaw) * math.Cos(elev)),
	}
}

func (c *OrbitCamera) EyePosition() mgl32.Vec3 {
	return c.LookAt.Add(c.EyeDirection().Mul(c.Radius))
}

// Right is horizontal and perpendicular to the orbit plane at any elevation.
func (c *OrbitCamera) Right() mgl32.Vec3 {
	yaw, _ := c.orbitAngles()
	return mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(-math.Sin(yaw))}
}

// Up is derived from the orbit basis rather than fixed to +Y so the view stays defined
// when the eye is directly above or below LookAt.
func (c *OrbitCamera) Up() mgl32.Vec3 {
	forward := c.EyeDirection().Mul(-1)
	return c.Right().Cross(forward).Normalize()
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.EyePosition(), c.LookAt, c.Up())
}

func scaleDegrees(pixels int, sensitivity float32) int {
	return int(math.Round(float64(pixels) * float64(sensitivity)))
}
