// Package skeleton provides the posed bone hierarchy, slots and attachments
// that skeletal meshes are built from.
package skeleton

import "fmt"

// Skeleton is a posed instance of a bone hierarchy with slots and attachments.
type Skeleton struct {
	Name  string
	Bones []*Bone
	Slots []*Slot

	// DrawOrder is the order slots are rendered in, back to front.
	DrawOrder []*Slot

	Color Color
	X, Y  float32

	setupColor  Color
	attachments map[string]Attachment
}

// New creates a skeleton in setup pose from bone and slot data.
// Bones must be ordered parents first.
func New(name string, bones []*BoneData, slots []*SlotData) *Skeleton {
	s := &Skeleton{
		Name:        name,
		Color:       ColorWhite,
		setupColor:  ColorWhite,
		attachments: make(map[string]Attachment),
	}
	byData := make(map[*BoneData]*Bone, len(bones))
	for _, data := range bones {
		b := newBone(data, s, byData[data.Parent])
		byData[data] = b
		s.Bones = append(s.Bones, b)
	}
	for _, data := range slots {
		s.Slots = append(s.Slots, &Slot{Data: data, Bone: byData[data.BoneData], Color: data.Color})
	}
	s.DrawOrder = append(s.DrawOrder, s.Slots...)
	return s
}

// UpdateWorldTransform recomputes world transforms of all bones, parents first.
func (s *Skeleton) UpdateWorldTransform() {
	for _, b := range s.Bones {
		b.UpdateWorldTransform()
	}
}

// SetToSetupPose resets bones, slots and draw order to the setup pose.
func (s *Skeleton) SetToSetupPose() {
	for _, b := range s.Bones {
		b.SetToSetupPose()
	}
	s.SetSlotsToSetupPose()
}

// SetSlotsToSetupPose resets slot colors, attachments and the draw order.
func (s *Skeleton) SetSlotsToSetupPose() {
	s.Color = s.setupColor
	s.DrawOrder = append(s.DrawOrder[:0], s.Slots...)
	for _, slot := range s.Slots {
		slot.Color = slot.Data.Color
		slot.SetAttachment(s.attachments[slot.Data.AttachmentName])
	}
}

// FindBone returns the bone with the given name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	for _, b := range s.Bones {
		if b.Data.Name == name {
			return b
		}
	}
	return nil
}

// FindSlot returns the slot with the given name, or nil.
func (s *Skeleton) FindSlot(name string) *Slot {
	for _, slot := range s.Slots {
		if slot.Data.Name == name {
			return slot
		}
	}
	return nil
}

// Attachment returns the named attachment, or nil.
func (s *Skeleton) Attachment(name string) Attachment {
	return s.attachments[name]
}

// AddAttachment registers an attachment so slots can refer to it by name.
func (s *Skeleton) AddAttachment(a Attachment) {
	if s.attachments == nil {
		s.attachments = make(map[string]Attachment)
	}
	s.attachments[a.Name()] = a
}

// SetAttachment sets a slot's attachment by name. An empty attachment name
// clears the slot.
func (s *Skeleton) SetAttachment(slotName, attachmentName string) error {
	slot := s.FindSlot(slotName)
	if slot == nil {
		return fmt.Errorf("slot not found: %s", slotName)
	}
	if attachmentName == "" {
		slot.SetAttachment(nil)
		return nil
	}
	a, ok := s.attachments[attachmentName]
	if !ok {
		return fmt.Errorf("attachment not found: %s", attachmentName)
	}
	slot.SetAttachment(a)
	return nil
}
