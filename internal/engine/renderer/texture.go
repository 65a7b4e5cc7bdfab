package renderer

import (
	"fmt"
	"image"
	"path/filepath"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

// Texture is a GL texture implementing texture.Handle.
type Texture struct {
	ID     uint32
	Width  int
	Height int
}

// NewTexture uploads img. A GL context must be current.
func NewTexture(img *image.RGBA) (*Texture, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty texture image")
	}
	t := &Texture{Width: w, Height: h}
	gl.GenTextures(1, &t.ID)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// LoadPage decodes the image of page from dir and uploads it. It has the
// signature of skeleton.TextureLoader once dir is bound.
func LoadPage(dir string, page *texture.Page) (texture.Handle, error) {
	img, err := texture.LoadImage(filepath.Join(dir, page.Name))
	if err != nil {
		return nil, err
	}
	return NewTexture(img)
}

// SetFilters applies min and mag filters, generating mip levels when the
// min filter needs them.
func (t *Texture) SetFilters(min, mag texture.Filter) error {
	minParam, magParam, err := FilterParams(min, mag)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	defer gl.BindTexture(gl.TEXTURE_2D, 0)
	if usesMipMaps(min) {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minParam)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magParam)
	return nil
}

// SetWraps applies the u and v wrap modes.
func (t *Texture) SetWraps(u, v texture.Wrap) error {
	uParam, err := WrapParam(u)
	if err != nil {
		return err
	}
	vParam, err := WrapParam(v)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, uParam)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, vParam)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Dispose deletes the GL texture.
func (t *Texture) Dispose() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}
