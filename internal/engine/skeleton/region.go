package skeleton

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/pkg/math"
)

// QuadTriangles is the index pattern of a region quad.
var QuadTriangles = []uint16{0, 1, 2, 2, 3, 0}

// RegionAttachment is a textured quad placed relative to its bone.
type RegionAttachment struct {
	name   string
	Region *texture.Region
	Color  Color

	X, Y          float32
	Rotation      float32
	ScaleX        float32
	ScaleY        float32
	Width, Height float32

	// Corner offsets in bone space: bottom-left, upper-left, upper-right, bottom-right.
	offset [8]float32
	// UVs in the same corner order as offset.
	UVs [8]float32
}

// NewRegionAttachment creates a region attachment. Call UpdateRegion after
// changing its placement or region.
func NewRegionAttachment(name string, region *texture.Region) *RegionAttachment {
	return &RegionAttachment{
		name:   name,
		Region: region,
		Color:  ColorWhite,
		ScaleX: 1,
		ScaleY: 1,
	}
}

// Name returns the attachment name.
func (a *RegionAttachment) Name() string { return a.name }

// Kind returns KindRegion.
func (a *RegionAttachment) Kind() Kind { return KindRegion }

func (a *RegionAttachment) sealed() {}

// Texture returns the texture of the attachment's region.
func (a *RegionAttachment) Texture() texture.Handle {
	return a.Region.Texture()
}

// UpdateRegion recomputes the corner offsets and UVs.
func (a *RegionAttachment) UpdateRegion() {
	r := a.Region
	origW, origH := float32(r.OriginalWidth), float32(r.OriginalHeight)
	if origW == 0 {
		origW = float32(r.Width)
	}
	if origH == 0 {
		origH = float32(r.Height)
	}

	regionScaleX := a.Width / origW * a.ScaleX
	regionScaleY := a.Height / origH * a.ScaleY
	localX := -a.Width/2*a.ScaleX + r.OffsetX*regionScaleX
	localY := -a.Height/2*a.ScaleY + r.OffsetY*regionScaleY
	localX2 := localX + float32(r.Width)*regionScaleX
	localY2 := localY + float32(r.Height)*regionScaleY

	rad := math.DegToRad(a.Rotation)
	cos, sin := math32.Cos(rad), math32.Sin(rad)
	localXCos, localXSin := localX*cos+a.X, localX*sin
	localYCos, localYSin := localY*cos+a.Y, localY*sin
	localX2Cos, localX2Sin := localX2*cos+a.X, localX2*sin
	localY2Cos, localY2Sin := localY2*cos+a.Y, localY2*sin

	a.offset = [8]float32{
		localXCos - localYSin, localYCos + localXSin,
		localXCos - localY2Sin, localY2Cos + localXSin,
		localX2Cos - localY2Sin, localY2Cos + localX2Sin,
		localX2Cos - localYSin, localYCos + localX2Sin,
	}

	if r.Degrees == 90 {
		a.UVs = [8]float32{r.U2, r.V2, r.U, r.V2, r.U, r.V, r.U2, r.V}
	} else {
		a.UVs = [8]float32{r.U, r.V2, r.U, r.V, r.U2, r.V, r.U2, r.V2}
	}
}

// ComputeWorldVertices writes the four corners in world space to out,
// starting at offset and advancing stride floats per corner.
func (a *RegionAttachment) ComputeWorldVertices(bone *Bone, out []float32, offset, stride int) {
	m := bone.world
	for i := 0; i < 8; i += 2 {
		out[offset], out[offset+1] = m.Apply(a.offset[i], a.offset[i+1])
		offset += stride
	}
}
