package skeleton

import "github.com/Faultbox/midgard-spine/internal/engine/texture"

// SlotData is the setup pose of a slot.
type SlotData struct {
	Index          int
	Name           string
	BoneData       *BoneData
	Color          Color
	BlendMode      texture.BlendMode
	AttachmentName string
}

// Slot holds the attachment and tint a bone currently draws with.
type Slot struct {
	Data  *SlotData
	Bone  *Bone
	Color Color

	// Deform replaces a mesh attachment's local vertices when it has the same length.
	Deform []float32

	attachment Attachment
}

// Attachment returns the current attachment, or nil.
func (s *Slot) Attachment() Attachment {
	return s.attachment
}

// SetAttachment changes the attachment and drops any deform.
func (s *Slot) SetAttachment(a Attachment) {
	if s.attachment == a {
		return
	}
	s.attachment = a
	s.Deform = s.Deform[:0]
}

// Skeleton returns the skeleton that owns the slot.
func (s *Slot) Skeleton() *Skeleton {
	return s.Bone.Skeleton
}
