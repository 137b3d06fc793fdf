package mesh

import (
	"math"

	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the terrain shader's vertex input.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh is a Size x Size quad grid centered on the origin. The topology never changes:
// only vertex positions and normals differ between regenerations.
type Mesh struct {
	Size     int
	Width    float32
	Length   float32
	Vertices []Vertex
	Indices  []uint32
}

func (m *Mesh) stride() int { return m.Size + 1 }

// HeightAt interpolates the surface bilinearly; points outside the grid are clamped to its edge.
func (m *Mesh) HeightAt(x, z float32) float32 {
	if m == nil || len(m.Vertices) == 0 {
		return 0
	}
	n := float32(m.Size)
	gx := (x/m.Width + 0.5) * n
	gz := (z/m.Length + 0.5) * n
	gx = max(0, min(n, gx))
	gz = max(0, min(n, gz))

	x0, z0 := int(gx), int(gz)
	x1, z1 := min(x0+1, m.Size), min(z0+1, m.Size)

	s := m.stride()
	h00 := m.Vertices[x0+z0*s].Position[1]
	h10 := m.Vertices[x1+z0*s].Position[1]
	h01 := m.Vertices[x0+z1*s].Position[1]
	h11 := m.Vertices[x1+z1*s].Position[1]

	sx := gx - float32(x0)
	sz := gz - float32(z0)
	h0 := h00*(1-sx) + h10*sx
	h1 := h01*(1-sx) + h11*sx
	return h0*(1-sz) + h1*sz
}

// Generator produces the metaball height field. Every marker adds a gaussian bump of its
// Height whose spread is its Width.
type Generator struct {
	GridSize      int
	Width         float32
	Length        float32
	BaseElevation float32

	indices []uint32
}

func NewGenerator(cfg config.Terrain) *Generator {
	g := &Generator{
		GridSize:      cfg.GridSize,
		Width:         cfg.Width,
		Length:        cfg.Length,
		BaseElevation: cfg.BaseElevation,
	}
	if g.GridSize <= 0 {
		g.GridSize = 1
	}
	g.indices = buildIndices(g.GridSize)
	return g
}

// VertexCount is the fixed number of vertices of every generated mesh.
func (g *Generator) VertexCount() int {
	return (g.GridSize + 1) * (g.GridSize + 1)
}

// Height evaluates the field at x, z without building a mesh.
func (g *Generator) Height(markers []core.Marker, x, z float32) float32 {
	h := float64(g.BaseElevation)
	for _, m := range markers {
		if m.Width <= 0 {
			continue
		}
		dx := float64(x - m.Position.X())
		dz := float64(z - m.Position.Z())
		w := float64(m.Width)
		h += float64(m.Height) * math.Exp(-(dx*dx+dz*dz)/(w*w))
	}
	return float32(h)
}

// Regenerate rebuilds positions and normals from markers. The index slice is shared
// between meshes and must not be modified.
func (g *Generator) Regenerate(markers []core.Marker) *Mesh {
	n := g.GridSize
	s := n + 1
	stepX := g.Width / float32(n)
	stepZ := g.Length / float32(n)
	originX := -g.Width / 2
	originZ := -g.Length / 2

	heights := make([]float32, s*s)
	for iz := 0; iz < s; iz++ {
		for ix := 0; ix < s; ix++ {
			x := originX + float32(ix)*stepX
			z := originZ + float32(iz)*stepZ
			heights[ix+iz*s] = g.Height(markers, x, z)
		}
	}

	vertices := make([]Vertex, s*s)
	for iz := 0; iz < s; iz++ {
		for ix := 0; ix < s; ix++ {
			// central differences, one-sided on the border
			l, r := max(ix-1, 0), min(ix+1, n)
			d, u := max(iz-1, 0), min(iz+1, n)
			dhdx := (heights[r+iz*s] - heights[l+iz*s]) / (float32(r-l) * stepX)
			dhdz := (heights[ix+u*s] - heights[ix+d*s]) / (float32(u-d) * stepZ)
			normal := mgl32.Vec3{-dhdx, 1, -dhdz}.Normalize()

			vertices[ix+iz*s] = Vertex{
				Position: [3]float32{originX + float32(ix)*stepX, heights[ix+iz*s], originZ + float32(iz)*stepZ},
				Normal:   [3]float32{normal.X(), normal.Y(), normal.Z()},
			}
		}
	}

	return &Mesh{
		Size:     n,
		Width:    g.Width,
		Length:   g.Length,
		Vertices: vertices,
		Indices:  g.indices,
	}
}

// buildIndices emits two counter-clockwise triangles per quad, seen from above.
func buildIndices(n int) []uint32 {
	s := uint32(n + 1)
	indices := make([]uint32, 0, n*n*6)
	for iz := uint32(0); iz < uint32(n); iz++ {
		for ix := uint32(0); ix < uint32(n); ix++ {
			i00 := ix + iz*s
			i10 := i00 + 1
			i01 := i00 + s
			i11 := i01 + 1
			indices = append(indices,
				i00, i01, i10,
				i10, i01, i11,
			)
		}
	}
	return indices
}
