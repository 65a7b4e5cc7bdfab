// Package formats parses skeleton documents.
package formats

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Skeleton document errors.
var (
	ErrInvalidSkeleton   = errors.New("invalid skeleton document")
	ErrUnknownBone       = errors.New("unknown bone")
	ErrUnknownSlot       = errors.New("unknown slot")
	ErrUnknownRegion     = errors.New("unknown atlas region")
	ErrUnknownPage       = errors.New("unknown atlas page")
	ErrUnknownAttachment = errors.New("unknown attachment")
)

// Attachment types.
const (
	AttachmentRegion      = "region"
	AttachmentMesh        = "mesh"
	AttachmentClipping    = "clipping"
	AttachmentPoint       = "point"
	AttachmentBoundingBox = "boundingbox"
)

// Color is an RGBA color given as a list of 4 floats. An empty color is white.
type Color []float32

// RGBA returns the color components, defaulting to opaque white.
func (c Color) RGBA() (r, g, b, a float32) {
	if len(c) != 4 {
		return 1, 1, 1, 1
	}
	return c[0], c[1], c[2], c[3]
}

// SkeletonDoc is a posed skeleton with its atlas, as stored on disk.
type SkeletonDoc struct {
	Name        string          `yaml:"name"`
	X           float32         `yaml:"x"`
	Y           float32         `yaml:"y"`
	Color       Color           `yaml:"color"`
	Atlas       AtlasDoc        `yaml:"atlas"`
	Bones       []BoneDoc       `yaml:"bones"`
	Slots       []SlotDoc       `yaml:"slots"`
	Attachments []AttachmentDoc `yaml:"attachments"`
	DrawOrder   []string        `yaml:"draw_order"` // Slot names; defaults to slot order
}

// AtlasDoc lists texture pages and the regions packed on them.
type AtlasDoc struct {
	Pages   []PageDoc   `yaml:"pages"`
	Regions []RegionDoc `yaml:"regions"`
}

// PageDoc describes one atlas page.
type PageDoc struct {
	Name      string `yaml:"name"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinFilter string `yaml:"min_filter"`
	MagFilter string `yaml:"mag_filter"`
	WrapU     string `yaml:"wrap_u"`
	WrapV     string `yaml:"wrap_v"`
}

// RegionDoc is a pixel rectangle on a page.
type RegionDoc struct {
	Name           string  `yaml:"name"`
	Page           string  `yaml:"page"`
	X              int     `yaml:"x"`
	Y              int     `yaml:"y"`
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Rotate         bool    `yaml:"rotate"`
	OffsetX        float32 `yaml:"offset_x"`
	OffsetY        float32 `yaml:"offset_y"`
	OriginalWidth  int     `yaml:"original_width"`
	OriginalHeight int     `yaml:"original_height"`
}

// BoneDoc is a bone in setup pose. Parents must be listed before children.
type BoneDoc struct {
	Name     string   `yaml:"name"`
	Parent   string   `yaml:"parent"`
	X        float32  `yaml:"x"`
	Y        float32  `yaml:"y"`
	Rotation float32  `yaml:"rotation"`
	ScaleX   *float32 `yaml:"scale_x"`
	ScaleY   *float32 `yaml:"scale_y"`
	Inactive bool     `yaml:"inactive"`
}

// SlotDoc is a slot in setup pose.
type SlotDoc struct {
	Name       string `yaml:"name"`
	Bone       string `yaml:"bone"`
	Color      Color  `yaml:"color"`
	Blend      string `yaml:"blend"`
	Attachment string `yaml:"attachment"`
}

// AttachmentDoc is any attachment; Type selects which fields apply.
type AttachmentDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// region and mesh
	Region string `yaml:"region"`
	Color  Color  `yaml:"color"`

	// region
	X        float32  `yaml:"x"`
	Y        float32  `yaml:"y"`
	Rotation float32  `yaml:"rotation"`
	ScaleX   *float32 `yaml:"scale_x"`
	ScaleY   *float32 `yaml:"scale_y"`
	Width    float32  `yaml:"width"`
	Height   float32  `yaml:"height"`

	// mesh, clipping and boundingbox
	Vertices  []float32 `yaml:"vertices"`
	UVs       []float32 `yaml:"uvs"`
	Triangles []uint16  `yaml:"triangles"`

	// clipping
	EndSlot string `yaml:"end_slot"`
}

// Scale returns a scale value, defaulting to 1 when unset.
func Scale(s *float32) float32 {
	if s == nil {
		return 1
	}
	return *s
}

// LoadSkeleton reads and parses a skeleton document from disk.
func LoadSkeleton(path string) (*SkeletonDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skeleton: %w", err)
	}
	return ParseSkeleton(data)
}

// ParseSkeleton parses a skeleton document and checks every reference in it.
func ParseSkeleton(data []byte) (*SkeletonDoc, error) {
	var doc SkeletonDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSkeleton, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks structure and cross references.
func (d *SkeletonDoc) Validate() error {
	if len(d.Bones) == 0 {
		return fmt.Errorf("%w: no bones", ErrInvalidSkeleton)
	}
	if err := checkColor(d.Color, "skeleton"); err != nil {
		return err
	}

	pages := make(map[string]bool, len(d.Atlas.Pages))
	for _, p := range d.Atlas.Pages {
		if p.Name == "" || pages[p.Name] {
			return fmt.Errorf("%w: page name %q empty or duplicated", ErrInvalidSkeleton, p.Name)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: page %s has size %dx%d", ErrInvalidSkeleton, p.Name, p.Width, p.Height)
		}
		pages[p.Name] = true
	}

	regions := make(map[string]bool, len(d.Atlas.Regions))
	for _, r := range d.Atlas.Regions {
		if !pages[r.Page] {
			return fmt.Errorf("region %s: %w %q", r.Name, ErrUnknownPage, r.Page)
		}
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("%w: region %s has size %dx%d", ErrInvalidSkeleton, r.Name, r.Width, r.Height)
		}
		regions[r.Name] = true
	}

	bones := make(map[string]bool, len(d.Bones))
	for i, b := range d.Bones {
		if b.Name == "" || bones[b.Name] {
			return fmt.Errorf("%w: bone name %q empty or duplicated", ErrInvalidSkeleton, b.Name)
		}
		if i == 0 && b.Parent != "" {
			return fmt.Errorf("%w: root bone %s has a parent", ErrInvalidSkeleton, b.Name)
		}
		if i > 0 && !bones[b.Parent] {
			return fmt.Errorf("bone %s: %w parent %q", b.Name, ErrUnknownBone, b.Parent)
		}
		bones[b.Name] = true
	}

	attachments := make(map[string]bool, len(d.Attachments))
	for _, a := range d.Attachments {
		if a.Name == "" || attachments[a.Name] {
			return fmt.Errorf("%w: attachment name %q empty or duplicated", ErrInvalidSkeleton, a.Name)
		}
		attachments[a.Name] = true
	}

	slots := make(map[string]bool, len(d.Slots))
	for _, s := range d.Slots {
		if s.Name == "" || slots[s.Name] {
			return fmt.Errorf("%w: slot name %q empty or duplicated", ErrInvalidSkeleton, s.Name)
		}
		if !bones[s.Bone] {
			return fmt.Errorf("slot %s: %w %q", s.Name, ErrUnknownBone, s.Bone)
		}
		if s.Attachment != "" && !attachments[s.Attachment] {
			return fmt.Errorf("slot %s: %w %q", s.Name, ErrUnknownAttachment, s.Attachment)
		}
		if err := checkColor(s.Color, "slot "+s.Name); err != nil {
			return err
		}
		slots[s.Name] = true
	}

	for i := range d.Attachments {
		if err := d.Attachments[i].validate(regions, slots); err != nil {
			return err
		}
	}

	if len(d.DrawOrder) > 0 {
		if len(d.DrawOrder) != len(d.Slots) {
			return fmt.Errorf("%w: draw order has %d slots, want %d", ErrInvalidSkeleton, len(d.DrawOrder), len(d.Slots))
		}
		seen := make(map[string]bool, len(d.DrawOrder))
		for _, name := range d.DrawOrder {
			if !slots[name] {
				return fmt.Errorf("draw order: %w %q", ErrUnknownSlot, name)
			}
			if seen[name] {
				return fmt.Errorf("%w: slot %s repeated in draw order", ErrInvalidSkeleton, name)
			}
			seen[name] = true
		}
	}

	return nil
}

func (a *AttachmentDoc) validate(regions, slots map[string]bool) error {
	if err := checkColor(a.Color, "attachment "+a.Name); err != nil {
		return err
	}

	switch a.Type {
	case AttachmentRegion:
		if !regions[a.Region] {
			return fmt.Errorf("attachment %s: %w %q", a.Name, ErrUnknownRegion, a.Region)
		}
		if a.Width <= 0 || a.Height <= 0 {
			return fmt.Errorf("%w: region attachment %s has size %gx%g", ErrInvalidSkeleton, a.Name, a.Width, a.Height)
		}

	case AttachmentMesh:
		if !regions[a.Region] {
			return fmt.Errorf("attachment %s: %w %q", a.Name, ErrUnknownRegion, a.Region)
		}
		if err := checkPolygon(a, 3); err != nil {
			return err
		}
		if len(a.UVs) != len(a.Vertices) {
			return fmt.Errorf("%w: mesh %s has %d uvs for %d vertices", ErrInvalidSkeleton, a.Name, len(a.UVs), len(a.Vertices))
		}
		if len(a.Triangles) == 0 || len(a.Triangles)%3 != 0 {
			return fmt.Errorf("%w: mesh %s has %d triangle indices", ErrInvalidSkeleton, a.Name, len(a.Triangles))
		}
		count := uint16(len(a.Vertices) / 2)
		for _, idx := range a.Triangles {
			if idx >= count {
				return fmt.Errorf("%w: mesh %s index %d out of range", ErrInvalidSkeleton, a.Name, idx)
			}
		}

	case AttachmentClipping:
		if err := checkPolygon(a, 3); err != nil {
			return err
		}
		if a.EndSlot != "" && !slots[a.EndSlot] {
			return fmt.Errorf("clipping %s: %w %q", a.Name, ErrUnknownSlot, a.EndSlot)
		}

	case AttachmentBoundingBox:
		if err := checkPolygon(a, 1); err != nil {
			return err
		}

	case AttachmentPoint:

	default:
		return fmt.Errorf("%w: attachment %s has type %q", ErrInvalidSkeleton, a.Name, a.Type)
	}
	return nil
}

func checkPolygon(a *AttachmentDoc, minPoints int) error {
	if len(a.Vertices)%2 != 0 || len(a.Vertices) < minPoints*2 {
		return fmt.Errorf("%w: %s %s has %d vertex floats", ErrInvalidSkeleton, a.Type, a.Name, len(a.Vertices))
	}
	return nil
}

func checkColor(c Color, owner string) error {
	if len(c) != 0 && len(c) != 4 {
		return fmt.Errorf("%w: %s color has %d components", ErrInvalidSkeleton, owner, len(c))
	}
	return nil
}
