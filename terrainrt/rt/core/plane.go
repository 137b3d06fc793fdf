package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// parallelEpsilon is the smallest |dir . up| that still counts as crossing the plane.
const parallelEpsilon = 1e-6

var worldUp = mgl32.Vec3{0, 1, 0}

// IntersectPlane hits the horizontal plane y = planeHeight. Rays parallel to the plane and
// planes behind the origin give ErrNoIntersection, so a pick never lands behind the camera.
func IntersectPlane(ray Ray, planeHeight float32) (mgl32.Vec3, error) {
	denom := ray.Direction.Dot(worldUp)
	if math.Abs(float64(denom)) < parallelEpsilon {
		return mgl32.Vec3{}, ErrNoIntersection
	}
	t := -(ray.Origin.Dot(worldUp) - planeHeight) / denom
	if t < 0 {
		return mgl32.Vec3{}, ErrNoIntersection
	}
	return ray.At(t), nil
}

// PickGround casts through a pixel and intersects the ground plane in one step.
func PickGround(px, py float32, width, height int, proj, view mgl32.Mat4, eye mgl32.Vec3, planeHeight float32) (mgl32.Vec3, error) {
	ray, err := CastRay(px, py, width, height, proj, view, eye)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return IntersectPlane(ray, planeHeight)
}
