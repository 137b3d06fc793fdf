package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Marker is a metaball: a point on the ground that raises the terrain around it.
type Marker struct {
	ID       uuid.UUID
	Position mgl32.Vec3
	Height   float32
	Width    float32
}

// MarkerRegistry keeps markers in creation order with one active selection.
// Markers are never removed.
type MarkerRegistry struct {
	markers       []Marker
	active        int
	baseElevation float32
	minSize       float32

	dirty   bool
	version uint64
}

func NewMarkerRegistry(baseElevation, minSize float32) *MarkerRegistry {
	if minSize <= 0 {
		minSize = 0.1
	}
	return &MarkerRegistry{
		active:        -1,
		baseElevation: baseElevation,
		minSize:       minSize,
	}
}

func (r *MarkerRegistry) Len() int {
	return len(r.markers)
}

// Active returns the selected index, or false when the registry is empty.
func (r *MarkerRegistry) Active() (int, bool) {
	if len(r.markers) == 0 {
		return -1, false
	}
	return r.active, true
}

func (r *MarkerRegistry) At(i int) (Marker, error) {
	if err := r.check(i); err != nil {
		return Marker{}, err
	}
	return r.markers[i], nil
}

// Markers returns a copy, safe to hand to the mesh generator.
func (r *MarkerRegistry) Markers() []Marker {
	out := make([]Marker, len(r.markers))
	copy(out, r.markers)
	return out
}

// Insert appends a marker on the ground below point and selects it.
func (r *MarkerRegistry) Insert(point mgl32.Vec3, height, width float32) int {
	r.markers = append(r.markers, Marker{
		ID:       uuid.New(),
		Position: mgl32.Vec3{point.X(), r.baseElevation, point.Z()},
		Height:   r.clampSize(height),
		Width:    r.clampSize(width),
	})
	r.active = len(r.markers) - 1
	r.touch()
	return r.active
}

// SetPosition moves marker i horizontally; its elevation stays at the base.
func (r *MarkerRegistry) SetPosition(i int, point mgl32.Vec3) error {
	if err := r.check(i); err != nil {
		return err
	}
	m := &r.markers[i]
	m.Position = mgl32.Vec3{point.X(), r.baseElevation, point.Z()}
	r.touch()
	return nil
}

// AdjustSize adds the deltas to marker i. Both dimensions stay at or above the minimum size.
func (r *MarkerRegistry) AdjustSize(i int, deltaWidth, deltaHeight float32) error {
	if err := r.check(i); err != nil {
		return err
	}
	m := &r.markers[i]
	m.Width = r.clampSize(m.Width + deltaWidth)
	m.Height = r.clampSize(m.Height + deltaHeight)
	r.touch()
	return nil
}

func (r *MarkerRegistry) SelectPrevious() {
	r.shiftSelection(-1)
}

func (r *MarkerRegistry) SelectNext() {
	r.shiftSelection(1)
}

// Version counts mutations since creation.
func (r *MarkerRegistry) Version() uint64 {
	return r.version
}

// TakeDirty reports whether the markers changed since the last call and clears the flag.
func (r *MarkerRegistry) TakeDirty() bool {
	d := r.dirty
	r.dirty = false
	return d
}

func (r *MarkerRegistry) shiftSelection(step int) {
	if len(r.markers) == 0 {
		return
	}
	next := r.active + step
	if next < 0 {
		next = 0
	}
	if next > len(r.markers)-1 {
		next = len(r.markers) - 1
	}
	r.active = next
}

func (r *MarkerRegistry) check(i int) error {
	if i < 0 || i >= len(r.markers) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(r.markers))
	}
	return nil
}

func (r *MarkerRegistry) clampSize(v float32) float32 {
	if v < r.minSize || v != v {
		return r.minSize
	}
	return v
}

func (r *MarkerRegistry) touch() {
	r.dirty = true
	r.version++
}
