package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// minDeterminant rejects matrices that are singular in float32 terms.
const minDeterminant = 1e-12

type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // unit length
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Projection builds the perspective matrix for a width x height raster.
func Projection(fovDeg float32, width, height int, near, far float32) (mgl32.Mat4, error) {
	if width <= 0 || height <= 0 {
		return mgl32.Mat4{}, fmt.Errorf("%w: viewport %dx%d", ErrInvalidTransform, width, height)
	}
	if fovDeg <= 0 || near <= 0 || far <= near {
		return mgl32.Mat4{}, fmt.Errorf("%w: fov %.2f near %.3f far %.3f", ErrInvalidTransform, fovDeg, near, far)
	}
	aspect := float32(width) / float32(height)
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far), nil
}

// CastRay turns a pixel (origin top-left) into a world-space ray starting at eye.
// The unprojected vector is used as a direction only: after the inverse projection its
// z is forced to -1 and w to 0, so no perspective divide is involved.
func CastRay(px, py float32, width, height int, proj, view mgl32.Mat4, eye mgl32.Vec3) (Ray, error) {
	if width <= 0 || height <= 0 {
		return Ray{}, fmt.Errorf("%w: viewport %dx%d", ErrInvalidTransform, width, height)
	}
	invProj, err := invert(proj)
	if err != nil {
		return Ray{}, fmt.Errorf("projection: %w", err)
	}
	invView, err := invert(view)
	if err != nil {
		return Ray{}, fmt.Errorf("view: %w", err)
	}

	// Normalized device coordinates; pixel y grows downwards.
	ndcX := 2*px/float32(width) - 1
	ndcY := 1 - 2*py/float32(height)

	clip := mgl32.Vec4{ndcX, ndcY, -1, 1}
	rayEye := invProj.Mul4x1(clip)
	rayEye = mgl32.Vec4{rayEye.X(), rayEye.Y(), -1, 0}

	dir := invView.Mul4x1(rayEye).Vec3()
	length := dir.Len()
	if length < 1e-8 || !finite(length) {
		return Ray{}, fmt.Errorf("%w: degenerate ray direction", ErrInvalidTransform)
	}

	return Ray{Origin: eye, Direction: dir.Mul(1 / length)}, nil
}

func invert(m mgl32.Mat4) (mgl32.Mat4, error) {
	for _, v := range m {
		if !finite(v) {
			return mgl32.Mat4{}, fmt.Errorf("%w: non-finite element", ErrInvalidTransform)
		}
	}
	det := m.Det()
	if math.Abs(float64(det)) < minDeterminant || !finite(det) {
		return mgl32.Mat4{}, fmt.Errorf("%w: singular matrix", ErrInvalidTransform)
	}
	return m.Inv(), nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
