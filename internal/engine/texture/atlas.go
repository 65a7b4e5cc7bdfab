package texture

import "fmt"

// Page is one texture image of an atlas.
type Page struct {
	Name      string
	Width     int
	Height    int
	MinFilter Filter
	MagFilter Filter
	UWrap     Wrap
	VWrap     Wrap

	Texture Handle
}

// Setup binds a texture to the page and applies the page's sampling parameters.
func (p *Page) Setup(tex Handle) error {
	if err := tex.SetFilters(p.MinFilter, p.MagFilter); err != nil {
		return fmt.Errorf("page %s: %w", p.Name, err)
	}
	if err := tex.SetWraps(p.UWrap, p.VWrap); err != nil {
		return fmt.Errorf("page %s: %w", p.Name, err)
	}
	p.Texture = tex
	return nil
}

// Region is a packed rectangle on an atlas page.
type Region struct {
	Page *Page
	Name string

	// Normalized texture coordinates of the packed rectangle.
	U, V, U2, V2 float32

	// Packed size in pixels, before rotation.
	Width, Height int
	// Size and offset of the image before whitespace was stripped.
	OriginalWidth, OriginalHeight int
	OffsetX, OffsetY              float32

	// Degrees is 0 or 90 (rotated counter-clockwise when packed).
	Degrees int
}

// NewRegion creates a region from a pixel rectangle on a page.
// For rotated regions width and height are the unrotated image size.
func NewRegion(page *Page, name string, x, y, width, height int, rotated bool) *Region {
	r := &Region{
		Page:           page,
		Name:           name,
		Width:          width,
		Height:         height,
		OriginalWidth:  width,
		OriginalHeight: height,
	}
	pw, ph := float32(page.Width), float32(page.Height)
	r.U = float32(x) / pw
	r.V = float32(y) / ph
	if rotated {
		r.Degrees = 90
		r.U2 = float32(x+height) / pw
		r.V2 = float32(y+width) / ph
	} else {
		r.U2 = float32(x+width) / pw
		r.V2 = float32(y+height) / ph
	}
	return r
}

// Texture returns the texture of the region's page.
func (r *Region) Texture() Handle {
	if r == nil || r.Page == nil {
		return nil
	}
	return r.Page.Texture
}

// Atlas is a set of pages and named regions.
type Atlas struct {
	Pages   []*Page
	Regions []*Region
}

// FindRegion returns the region with the given name, or nil.
func (a *Atlas) FindRegion(name string) *Region {
	for _, r := range a.Regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// FindPage returns the page with the given name, or nil.
func (a *Atlas) FindPage(name string) *Page {
	for _, p := range a.Pages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Dispose releases every page texture.
func (a *Atlas) Dispose() {
	for _, p := range a.Pages {
		if p.Texture != nil {
			p.Texture.Dispose()
			p.Texture = nil
		}
	}
}
