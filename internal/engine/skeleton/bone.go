package skeleton

import "github.com/Faultbox/midgard-spine/pkg/math"

// BoneData is the setup pose of a bone.
type BoneData struct {
	Index    int
	Name     string
	Parent   *BoneData
	X, Y     float32
	Rotation float32 // Degrees
	ScaleX   float32
	ScaleY   float32
	Active   bool
}

// Bone is a posed bone. World transforms are valid after Skeleton.UpdateWorldTransform.
type Bone struct {
	Data     *BoneData
	Skeleton *Skeleton
	Parent   *Bone

	X, Y     float32
	Rotation float32
	ScaleX   float32
	ScaleY   float32

	// Active is false for bones that are skipped for rendering.
	Active bool

	world math.Affine
}

func newBone(data *BoneData, sk *Skeleton, parent *Bone) *Bone {
	b := &Bone{Data: data, Skeleton: sk, Parent: parent}
	b.SetToSetupPose()
	return b
}

// SetToSetupPose resets local transform and activity from the bone data.
func (b *Bone) SetToSetupPose() {
	d := b.Data
	b.X, b.Y = d.X, d.Y
	b.Rotation = d.Rotation
	b.ScaleX, b.ScaleY = d.ScaleX, d.ScaleY
	b.Active = d.Active
}

// UpdateWorldTransform computes the world transform from the parent's.
// The parent must already be up to date.
func (b *Bone) UpdateWorldTransform() {
	local := math.TRS(b.X, b.Y, b.Rotation, b.ScaleX, b.ScaleY)
	if b.Parent == nil {
		root := math.TranslateAffine(b.Skeleton.X, b.Skeleton.Y)
		b.world = root.Mul(local)
		return
	}
	b.world = b.Parent.world.Mul(local)
}

// World returns the world transform.
func (b *Bone) World() math.Affine {
	return b.world
}

// WorldX returns the world x position.
func (b *Bone) WorldX() float32 { return b.world.TX() }

// WorldY returns the world y position.
func (b *Bone) WorldY() float32 { return b.world.TY() }

// LocalToWorld transforms a point from bone space to world space.
func (b *Bone) LocalToWorld(x, y float32) (float32, float32) {
	return b.world.Apply(x, y)
}
