package shaders

import (
	_ "embed"
)

//go:embed terrain.wgsl
var TerrainWGSL string

//go:embed gizmo.wgsl
var GizmoWGSL string

//go:embed text.wgsl
var TextWGSL string
