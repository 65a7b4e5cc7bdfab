// Package texture provides texture handles, sampling parameters and atlas regions.
package texture

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedEnum is returned when a filter, wrap or blend value is not supported.
var ErrUnrecognizedEnum = errors.New("unrecognized enum value")

// Filter is a texture sampling filter.
type Filter int

// Texture filters.
const (
	FilterNearest Filter = iota
	FilterLinear
	FilterMipMap
	FilterMipMapNearestNearest
	FilterMipMapLinearNearest
	FilterMipMapNearestLinear
	FilterMipMapLinearLinear
)

var filterNames = [...]string{
	FilterNearest:              "Nearest",
	FilterLinear:               "Linear",
	FilterMipMap:               "MipMap",
	FilterMipMapNearestNearest: "MipMapNearestNearest",
	FilterMipMapLinearNearest:  "MipMapLinearNearest",
	FilterMipMapNearestLinear:  "MipMapNearestLinear",
	FilterMipMapLinearLinear:   "MipMapLinearLinear",
}

// String returns the atlas name of the filter.
func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseFilter parses an atlas filter name.
func ParseFilter(s string) (Filter, error) {
	for i, name := range filterNames {
		if name == s {
			return Filter(i), nil
		}
	}
	return 0, fmt.Errorf("%w: texture filter %q", ErrUnrecognizedEnum, s)
}

// Wrap is a texture coordinate wrap mode.
type Wrap int

// Texture wraps.
const (
	WrapMirroredRepeat Wrap = iota
	WrapClampToEdge
	WrapRepeat
)

var wrapNames = [...]string{
	WrapMirroredRepeat: "MirroredRepeat",
	WrapClampToEdge:    "ClampToEdge",
	WrapRepeat:         "Repeat",
}

// String returns the atlas name of the wrap mode.
func (w Wrap) String() string {
	if w < 0 || int(w) >= len(wrapNames) {
		return fmt.Sprintf("Wrap(%d)", int(w))
	}
	return wrapNames[w]
}

// ParseWrap parses an atlas wrap name.
func ParseWrap(s string) (Wrap, error) {
	for i, name := range wrapNames {
		if name == s {
			return Wrap(i), nil
		}
	}
	return 0, fmt.Errorf("%w: texture wrap %q", ErrUnrecognizedEnum, s)
}

// BlendMode is the blending a slot is drawn with.
type BlendMode int

// Blend modes.
const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

var blendNames = [...]string{
	BlendNormal:   "normal",
	BlendAdditive: "additive",
	BlendMultiply: "multiply",
	BlendScreen:   "screen",
}

// String returns the lowercase name of the blend mode.
func (b BlendMode) String() string {
	if b < 0 || int(b) >= len(blendNames) {
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
	return blendNames[b]
}

// ParseBlendMode parses a blend mode name. An empty name means normal.
func ParseBlendMode(s string) (BlendMode, error) {
	if s == "" {
		return BlendNormal, nil
	}
	for i, name := range blendNames {
		if name == s {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: blend mode %q", ErrUnrecognizedEnum, s)
}

// Handle is an opaque texture owned by the host renderer.
// Handles are compared by identity to decide whether two attachments share a texture.
type Handle interface {
	SetFilters(min, mag Filter) error
	SetWraps(u, v Wrap) error
	Dispose()
}

// MemoryTexture is a Handle without GPU storage. It records the sampling
// parameters it was given.
type MemoryTexture struct {
	Name      string
	Width     int
	Height    int
	MinFilter Filter
	MagFilter Filter
	UWrap     Wrap
	VWrap     Wrap
	Disposed  bool
}

// NewMemoryTexture creates a headless texture.
func NewMemoryTexture(name string, width, height int) *MemoryTexture {
	return &MemoryTexture{
		Name:      name,
		Width:     width,
		Height:    height,
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
		UWrap:     WrapClampToEdge,
		VWrap:     WrapClampToEdge,
	}
}

// SetFilters records min and mag filters. Mag must be Nearest or Linear.
func (t *MemoryTexture) SetFilters(min, mag Filter) error {
	if mag != FilterNearest && mag != FilterLinear {
		return fmt.Errorf("%w: mag filter %s", ErrUnrecognizedEnum, mag)
	}
	if min < FilterNearest || min > FilterMipMapLinearLinear {
		return fmt.Errorf("%w: min filter %s", ErrUnrecognizedEnum, min)
	}
	t.MinFilter, t.MagFilter = min, mag
	return nil
}

// SetWraps records wrap modes.
func (t *MemoryTexture) SetWraps(u, v Wrap) error {
	for _, w := range [2]Wrap{u, v} {
		if w < WrapMirroredRepeat || w > WrapRepeat {
			return fmt.Errorf("%w: wrap %s", ErrUnrecognizedEnum, w)
		}
	}
	t.UWrap, t.VWrap = u, v
	return nil
}

// Dispose marks the texture as released.
func (t *MemoryTexture) Dispose() {
	t.Disposed = true
}

// String returns the texture name.
func (t *MemoryTexture) String() string {
	return t.Name
}
