package core

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerRegistry_InsertSelectsNewest(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	_, ok := r.Active()
	assert.False(t, ok)

	assert.Equal(t, 0, r.Insert(mgl32.Vec3{1, 0, 1}, 3, 3))
	idx, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	assert.Equal(t, 1, r.Insert(mgl32.Vec3{-2, 0, 4}, 3, 3))
	idx, _ = r.Active()
	assert.Equal(t, 1, idx)

	r.SelectPrevious()
	idx, _ = r.Active()
	assert.Equal(t, 0, idx)

	r.SelectPrevious()
	idx, _ = r.Active()
	assert.Equal(t, 0, idx, "selection clamps at the first marker")

	r.SelectNext()
	r.SelectNext()
	idx, _ = r.Active()
	assert.Equal(t, 1, idx, "selection clamps at the last marker")
}

func TestMarkerRegistry_InsertPinsToBaseElevation(t *testing.T) {
	r := NewMarkerRegistry(1.5, 0.1)
	i := r.Insert(mgl32.Vec3{4, 9, -3}, 2, 5)

	m, err := r.At(i)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{4, 1.5, -3}, m.Position)
	assert.Equal(t, float32(2), m.Height)
	assert.Equal(t, float32(5), m.Width)
	assert.NotEqual(t, uuid.Nil, m.ID)
}

func TestMarkerRegistry_IDsAreUnique(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 16; i++ {
		r.Insert(mgl32.Vec3{float32(i), 0, 0}, 1, 1)
	}
	for _, m := range r.Markers() {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestMarkerRegistry_SetPositionMovesHorizontally(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	i := r.Insert(mgl32.Vec3{0, 0, 0}, 3, 3)

	require.NoError(t, r.SetPosition(i, mgl32.Vec3{5, 7, -6}))
	m, _ := r.At(i)
	assert.Equal(t, mgl32.Vec3{5, 0, -6}, m.Position)
}

func TestMarkerRegistry_OutOfRange(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)

	err := r.SetPosition(0, mgl32.Vec3{})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	err = r.AdjustSize(0, 1, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = r.At(-1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	r.Insert(mgl32.Vec3{}, 3, 3)
	before := r.Version()
	err = r.SetPosition(1, mgl32.Vec3{1, 0, 1})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, before, r.Version(), "failed operations leave state untouched")
}

func TestMarkerRegistry_AdjustSizeStaysPositive(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	i := r.Insert(mgl32.Vec3{}, 3, 3)

	require.NoError(t, r.AdjustSize(i, 0.5, -1))
	m, _ := r.At(i)
	assert.InDelta(t, 3.5, m.Width, 1e-6)
	assert.InDelta(t, 2, m.Height, 1e-6)

	require.NoError(t, r.AdjustSize(i, -100, -100))
	m, _ = r.At(i)
	assert.Equal(t, float32(0.1), m.Width)
	assert.Equal(t, float32(0.1), m.Height)
}

func TestMarkerRegistry_SelectOnEmptyIsNoop(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	r.SelectNext()
	r.SelectPrevious()
	_, ok := r.Active()
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestMarkerRegistry_DirtyTracksMutationsOnly(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	assert.False(t, r.TakeDirty())

	i := r.Insert(mgl32.Vec3{}, 3, 3)
	r.Insert(mgl32.Vec3{1, 0, 0}, 3, 3)
	assert.Equal(t, uint64(2), r.Version())
	assert.True(t, r.TakeDirty())
	assert.False(t, r.TakeDirty(), "flag is consumed")

	r.SelectPrevious()
	assert.False(t, r.TakeDirty(), "selection is not a mutation")

	require.NoError(t, r.SetPosition(i, mgl32.Vec3{2, 0, 2}))
	require.NoError(t, r.AdjustSize(i, 1, 1))
	assert.True(t, r.TakeDirty())
	assert.Equal(t, uint64(4), r.Version())
}

func TestMarkerRegistry_MarkersReturnsCopy(t *testing.T) {
	r := NewMarkerRegistry(0, 0.1)
	r.Insert(mgl32.Vec3{1, 0, 1}, 3, 3)

	ms := r.Markers()
	ms[0].Height = 99
	m, _ := r.At(0)
	assert.Equal(t, float32(3), m.Height)
}
