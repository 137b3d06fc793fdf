package editor

import (
	"fmt"
	"strings"
)

// Status summarises the editing state for the HUD.
func (d *Dispatcher) Status() string {
	var sb strings.Builder

	active := "none"
	if i, ok := d.Markers.Active(); ok {
		if m, err := d.Markers.At(i); err == nil {
			active = fmt.Sprintf("#%d w=%.1f h=%.1f", i, m.Width, m.Height)
		}
	}
	sb.WriteString(fmt.Sprintf("Markers: %d  Active: %s\n", d.Markers.Len(), active))
	sb.WriteString(fmt.Sprintf("Yaw: %d  Pitch: %d  Radius: %.1f\n",
		d.Camera.EffectiveYaw(), d.Camera.EffectivePitch(), d.Camera.Radius))
	sb.WriteString(fmt.Sprintf("Mode: %s", d.mode))
	return sb.String()
}
