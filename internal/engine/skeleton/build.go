package skeleton

import (
	"fmt"

	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/pkg/formats"
)

// TextureLoader creates the texture for an atlas page.
type TextureLoader func(page *texture.Page) (texture.Handle, error)

// Build creates a skeleton in setup pose and its atlas from a validated document.
// Each page gets a texture from load, set up with the page's sampling parameters.
func Build(doc *formats.SkeletonDoc, load TextureLoader) (*Skeleton, *texture.Atlas, error) {
	atlas, err := buildAtlas(&doc.Atlas, load)
	if err != nil {
		return nil, nil, err
	}

	boneData := make(map[string]*BoneData, len(doc.Bones))
	bones := make([]*BoneData, 0, len(doc.Bones))
	for i, bd := range doc.Bones {
		data := &BoneData{
			Index:    i,
			Name:     bd.Name,
			Parent:   boneData[bd.Parent],
			X:        bd.X,
			Y:        bd.Y,
			Rotation: bd.Rotation,
			ScaleX:   formats.Scale(bd.ScaleX),
			ScaleY:   formats.Scale(bd.ScaleY),
			Active:   !bd.Inactive,
		}
		boneData[bd.Name] = data
		bones = append(bones, data)
	}

	slotData := make(map[string]*SlotData, len(doc.Slots))
	slots := make([]*SlotData, 0, len(doc.Slots))
	for i, sd := range doc.Slots {
		blend, err := texture.ParseBlendMode(sd.Blend)
		if err != nil {
			atlas.Dispose()
			return nil, nil, fmt.Errorf("slot %s: %w", sd.Name, err)
		}
		data := &SlotData{
			Index:          i,
			Name:           sd.Name,
			BoneData:       boneData[sd.Bone],
			Color:          docColor(sd.Color),
			BlendMode:      blend,
			AttachmentName: sd.Attachment,
		}
		slotData[sd.Name] = data
		slots = append(slots, data)
	}

	sk := New(doc.Name, bones, slots)
	sk.X, sk.Y = doc.X, doc.Y
	sk.setupColor = docColor(doc.Color)

	for i := range doc.Attachments {
		a, err := buildAttachment(&doc.Attachments[i], atlas, slotData)
		if err != nil {
			atlas.Dispose()
			return nil, nil, err
		}
		sk.AddAttachment(a)
	}

	sk.SetToSetupPose()
	if len(doc.DrawOrder) > 0 {
		sk.DrawOrder = sk.DrawOrder[:0]
		for _, name := range doc.DrawOrder {
			sk.DrawOrder = append(sk.DrawOrder, sk.FindSlot(name))
		}
	}
	sk.UpdateWorldTransform()

	return sk, atlas, nil
}

func buildAtlas(doc *formats.AtlasDoc, load TextureLoader) (*texture.Atlas, error) {
	atlas := &texture.Atlas{}
	for _, pd := range doc.Pages {
		page, err := buildPage(pd)
		if err != nil {
			atlas.Dispose()
			return nil, err
		}
		tex, err := load(page)
		if err != nil {
			atlas.Dispose()
			return nil, fmt.Errorf("loading page %s: %w", page.Name, err)
		}
		if err := page.Setup(tex); err != nil {
			tex.Dispose()
			atlas.Dispose()
			return nil, err
		}
		atlas.Pages = append(atlas.Pages, page)
	}

	for _, rd := range doc.Regions {
		page := atlas.FindPage(rd.Page)
		r := texture.NewRegion(page, rd.Name, rd.X, rd.Y, rd.Width, rd.Height, rd.Rotate)
		r.OffsetX, r.OffsetY = rd.OffsetX, rd.OffsetY
		if rd.OriginalWidth > 0 {
			r.OriginalWidth = rd.OriginalWidth
		}
		if rd.OriginalHeight > 0 {
			r.OriginalHeight = rd.OriginalHeight
		}
		atlas.Regions = append(atlas.Regions, r)
	}
	return atlas, nil
}

func buildPage(pd formats.PageDoc) (*texture.Page, error) {
	page := &texture.Page{
		Name:      pd.Name,
		Width:     pd.Width,
		Height:    pd.Height,
		MinFilter: texture.FilterNearest,
		MagFilter: texture.FilterNearest,
		UWrap:     texture.WrapClampToEdge,
		VWrap:     texture.WrapClampToEdge,
	}

	var err error
	if pd.MinFilter != "" {
		if page.MinFilter, err = texture.ParseFilter(pd.MinFilter); err != nil {
			return nil, fmt.Errorf("page %s: %w", pd.Name, err)
		}
	}
	if pd.MagFilter != "" {
		if page.MagFilter, err = texture.ParseFilter(pd.MagFilter); err != nil {
			return nil, fmt.Errorf("page %s: %w", pd.Name, err)
		}
	}
	if pd.WrapU != "" {
		if page.UWrap, err = texture.ParseWrap(pd.WrapU); err != nil {
			return nil, fmt.Errorf("page %s: %w", pd.Name, err)
		}
	}
	if pd.WrapV != "" {
		if page.VWrap, err = texture.ParseWrap(pd.WrapV); err != nil {
			return nil, fmt.Errorf("page %s: %w", pd.Name, err)
		}
	}
	return page, nil
}

func buildAttachment(ad *formats.AttachmentDoc, atlas *texture.Atlas, slots map[string]*SlotData) (Attachment, error) {
	switch ad.Type {
	case formats.AttachmentRegion:
		a := NewRegionAttachment(ad.Name, atlas.FindRegion(ad.Region))
		a.Color = docColor(ad.Color)
		a.X, a.Y = ad.X, ad.Y
		a.Rotation = ad.Rotation
		a.ScaleX, a.ScaleY = formats.Scale(ad.ScaleX), formats.Scale(ad.ScaleY)
		a.Width, a.Height = ad.Width, ad.Height
		a.UpdateRegion()
		return a, nil

	case formats.AttachmentMesh:
		a := NewMeshAttachment(ad.Name, atlas.FindRegion(ad.Region), ad.Vertices, ad.UVs, ad.Triangles)
		a.Color = docColor(ad.Color)
		a.UpdateUVs()
		return a, nil

	case formats.AttachmentClipping:
		return NewClippingAttachment(ad.Name, ad.Vertices, slots[ad.EndSlot]), nil

	case formats.AttachmentBoundingBox:
		return NewBoundingBoxAttachment(ad.Name, ad.Vertices), nil

	case formats.AttachmentPoint:
		return NewPointAttachment(ad.Name, ad.X, ad.Y, ad.Rotation), nil
	}
	return nil, fmt.Errorf("%w: attachment %s has type %q", formats.ErrInvalidSkeleton, ad.Name, ad.Type)
}

func docColor(c formats.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{r, g, b, a}
}
