package skeleton

import "github.com/Faultbox/midgard-spine/internal/engine/texture"

// MeshAttachment is a textured polygon mesh with free-form triangles.
type MeshAttachment struct {
	vertexAttachment
	Region *texture.Region
	Color  Color

	// RegionUVs are normalized to the region; UVs are page coordinates.
	RegionUVs []float32
	UVs       []float32
	Triangles []uint16
}

// NewMeshAttachment creates a mesh from local x, y pairs, region-relative UVs
// and triangle indices. Call UpdateUVs after changing the region.
func NewMeshAttachment(name string, region *texture.Region, vertices, regionUVs []float32, triangles []uint16) *MeshAttachment {
	return &MeshAttachment{
		vertexAttachment: vertexAttachment{name: name, Vertices: vertices, WorldVerticesLength: len(vertices)},
		Region:           region,
		Color:            ColorWhite,
		RegionUVs:        regionUVs,
		Triangles:        triangles,
	}
}

// Kind returns KindMesh.
func (a *MeshAttachment) Kind() Kind { return KindMesh }

// Texture returns the texture of the attachment's region.
func (a *MeshAttachment) Texture() texture.Handle {
	return a.Region.Texture()
}

// UpdateUVs maps RegionUVs onto the atlas page.
func (a *MeshAttachment) UpdateUVs() {
	if len(a.UVs) != len(a.RegionUVs) {
		a.UVs = make([]float32, len(a.RegionUVs))
	}
	r := a.Region
	u, v := r.U, r.V
	width, height := r.U2-r.U, r.V2-r.V

	if r.Degrees == 90 {
		for i := 0; i < len(a.UVs); i += 2 {
			a.UVs[i] = u + a.RegionUVs[i+1]*width
			a.UVs[i+1] = v + (1-a.RegionUVs[i])*height
		}
		return
	}

	for i := 0; i < len(a.UVs); i += 2 {
		a.UVs[i] = u + a.RegionUVs[i]*width
		a.UVs[i+1] = v + a.RegionUVs[i+1]*height
	}
}
