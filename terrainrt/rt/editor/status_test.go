package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Status(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	assert.Equal(t, "Markers: 0  Active: none\nYaw: 0  Pitch: -20  Radius: 30.0\nMode: idle", d.Status())

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	assert.Contains(t, d.Status(), "Markers: 1  Active: #0 w=3.0 h=3.0")
	assert.Contains(t, d.Status(), "Mode: placing")
}
