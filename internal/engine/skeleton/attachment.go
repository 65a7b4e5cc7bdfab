package skeleton

import "fmt"

// Kind identifies an attachment variant.
type Kind int

// Attachment kinds.
const (
	KindRegion Kind = iota
	KindMesh
	KindClipping
	KindPoint
	KindBoundingBox
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindMesh:
		return "mesh"
	case KindClipping:
		return "clipping"
	case KindPoint:
		return "point"
	case KindBoundingBox:
		return "boundingbox"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Attachment is one of *RegionAttachment, *MeshAttachment, *ClippingAttachment,
// *PointAttachment or *BoundingBoxAttachment. The set is closed.
type Attachment interface {
	Name() string
	Kind() Kind
	sealed()
}

// vertexAttachment holds local polygon vertices as x, y pairs.
type vertexAttachment struct {
	name                string
	Vertices            []float32
	WorldVerticesLength int
}

func (a *vertexAttachment) Name() string { return a.name }

func (a *vertexAttachment) sealed() {}

// ComputeWorldVertices transforms count floats of local vertices, starting at
// start, into out beginning at offset, advancing stride floats per vertex.
// The slot's deform is used instead of the local vertices when it matches in length.
func (a *vertexAttachment) ComputeWorldVertices(slot *Slot, start, count int, out []float32, offset, stride int) {
	vertices := a.Vertices
	if len(slot.Deform) == len(vertices) {
		vertices = slot.Deform
	}
	m := slot.Bone.world
	for v, w := start, offset; v < start+count; v, w = v+2, w+stride {
		out[w], out[w+1] = m.Apply(vertices[v], vertices[v+1])
	}
}

// ClippingAttachment is a polygon that clips the slots drawn after it,
// up to and including EndSlot.
type ClippingAttachment struct {
	vertexAttachment
	EndSlot *SlotData
	Color   Color
}

// NewClippingAttachment creates a clipping polygon from local x, y pairs.
func NewClippingAttachment(name string, vertices []float32, endSlot *SlotData) *ClippingAttachment {
	return &ClippingAttachment{
		vertexAttachment: vertexAttachment{name: name, Vertices: vertices, WorldVerticesLength: len(vertices)},
		EndSlot:          endSlot,
		Color:            Color{0.2275, 0.2275, 0.8078, 1},
	}
}

// Kind returns KindClipping.
func (a *ClippingAttachment) Kind() Kind { return KindClipping }

// BoundingBoxAttachment is a polygon used for hit detection. It is never drawn.
type BoundingBoxAttachment struct {
	vertexAttachment
}

// NewBoundingBoxAttachment creates a bounding box from local x, y pairs.
func NewBoundingBoxAttachment(name string, vertices []float32) *BoundingBoxAttachment {
	return &BoundingBoxAttachment{
		vertexAttachment: vertexAttachment{name: name, Vertices: vertices, WorldVerticesLength: len(vertices)},
	}
}

// Kind returns KindBoundingBox.
func (a *BoundingBoxAttachment) Kind() Kind { return KindBoundingBox }

// PointAttachment is a single named point relative to its bone. It is never drawn.
type PointAttachment struct {
	name     string
	X, Y     float32
	Rotation float32
}

// NewPointAttachment creates a point attachment.
func NewPointAttachment(name string, x, y, rotation float32) *PointAttachment {
	return &PointAttachment{name: name, X: x, Y: y, Rotation: rotation}
}

// Name returns the attachment name.
func (a *PointAttachment) Name() string { return a.name }

// Kind returns KindPoint.
func (a *PointAttachment) Kind() Kind { return KindPoint }

func (a *PointAttachment) sealed() {}

// ComputeWorldPosition returns the point in world space.
func (a *PointAttachment) ComputeWorldPosition(bone *Bone) (float32, float32) {
	return bone.LocalToWorld(a.X, a.Y)
}
