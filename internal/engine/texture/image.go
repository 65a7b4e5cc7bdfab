package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrUnsupportedImage is returned for page images that cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported page image")

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

// LoadImage reads and decodes a page image.
func LoadImage(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}
	img, err := DecodeImage(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes PNG, BMP or TGA data. The format is chosen by the
// extension of name.
func DecodeImage(name string, data []byte) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".bmp":
		img, err = bmp.Decode(bytes.NewReader(data))
	case ".tga":
		img, err = DecodeTGA(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA returns img as *image.RGBA, converting if needed. The result's
// bounds start at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DecodeTGA decodes uncompressed or RLE true-color TGA data with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("%w: TGA header truncated", ErrUnsupportedImage)
	}

	idLength := int(data[0])
	colorMapType, imageType := data[1], data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedImage)
	}
	if imageType != tgaTrueColor && imageType != tgaTrueColorRLE {
		return nil, fmt.Errorf("%w: TGA type %d", ErrUnsupportedImage, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: TGA depth %d", ErrUnsupportedImage, bpp)
	}
	if 18+idLength > len(data) {
		return nil, fmt.Errorf("%w: TGA data truncated", ErrUnsupportedImage)
	}

	r := tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		data:        data[18+idLength:],
		size:        bpp / 8,
		topToBottom: topToBottom,
	}
	if imageType == tgaTrueColor {
		if len(r.data) < width*height*r.size {
			return nil, fmt.Errorf("%w: TGA pixel data truncated", ErrUnsupportedImage)
		}
		for r.pixel < width*height {
			r.put(r.read())
		}
		return r.img, nil
	}

	// Run-length packets: the high bit marks a repeated pixel.
	for r.pixel < width*height && r.pos < len(r.data) {
		header := r.data[r.pos]
		r.pos++
		count := int(header&0x7f) + 1
		if header&0x80 != 0 {
			if r.pos+r.size > len(r.data) {
				break
			}
			c := r.read()
			for i := 0; i < count && r.pixel < width*height; i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && r.pixel < width*height && r.pos+r.size <= len(r.data); i++ {
			r.put(r.read())
		}
	}
	return r.img, nil
}

// tgaReader walks BGR(A) pixel data and fills img in file order.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int
	size        int
	pixel       int
	topToBottom bool
}

func (r *tgaReader) read() color.RGBA {
	p := r.data[r.pos : r.pos+r.size]
	r.pos += r.size
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xff}
	if r.size == 4 {
		c.A = p[3]
	}
	return c
}

func (r *tgaReader) put(c color.RGBA) {
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	x, y := r.pixel%w, r.pixel/w
	if !r.topToBottom {
		y = h - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.pixel++
}
