package texture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want Filter
	}{
		{"Nearest", FilterNearest},
		{"Linear", FilterLinear},
		{"MipMap", FilterMipMap},
		{"MipMapNearestNearest", FilterMipMapNearestNearest},
		{"MipMapLinearNearest", FilterMipMapLinearNearest},
		{"MipMapNearestLinear", FilterMipMapNearestLinear},
		{"MipMapLinearLinear", FilterMipMapLinearLinear},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	_, err := ParseFilter("Bilinear")
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)
}

func TestParseWrapAndBlend(t *testing.T) {
	w, err := ParseWrap("Repeat")
	require.NoError(t, err)
	assert.Equal(t, WrapRepeat, w)

	_, err = ParseWrap("Mirror")
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)

	b, err := ParseBlendMode("")
	require.NoError(t, err)
	assert.Equal(t, BlendNormal, b)

	b, err = ParseBlendMode("screen")
	require.NoError(t, err)
	assert.Equal(t, BlendScreen, b)

	_, err = ParseBlendMode("overlay")
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)
}

func TestEnumStringOutOfRange(t *testing.T) {
	assert.Equal(t, "Filter(42)", Filter(42).String())
	assert.Equal(t, "Wrap(-1)", Wrap(-1).String())
	assert.Equal(t, "BlendMode(9)", BlendMode(9).String())
}

func TestMemoryTextureRejectsUnknownFilters(t *testing.T) {
	tex := NewMemoryTexture("page.png", 64, 64)

	err := tex.SetFilters(FilterLinear, FilterMipMapLinearLinear)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedEnum))
	assert.Equal(t, FilterNearest, tex.MagFilter, "failed call must not change state")

	require.NoError(t, tex.SetFilters(FilterMipMapLinearLinear, FilterLinear))
	assert.Equal(t, FilterMipMapLinearLinear, tex.MinFilter)
	assert.Equal(t, FilterLinear, tex.MagFilter)

	assert.ErrorIs(t, tex.SetWraps(WrapRepeat, Wrap(7)), ErrUnrecognizedEnum)
	require.NoError(t, tex.SetWraps(WrapRepeat, WrapMirroredRepeat))
	assert.Equal(t, WrapRepeat, tex.UWrap)
	assert.Equal(t, WrapMirroredRepeat, tex.VWrap)
}

func TestPageSetupAndAtlas(t *testing.T) {
	page := &Page{
		Name:      "hero.png",
		Width:     128,
		Height:    64,
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		UWrap:     WrapRepeat,
		VWrap:     WrapClampToEdge,
	}
	tex := NewMemoryTexture(page.Name, page.Width, page.Height)
	require.NoError(t, page.Setup(tex))
	assert.Same(t, tex, page.Texture)
	assert.Equal(t, WrapRepeat, tex.UWrap)

	head := NewRegion(page, "head", 32, 16, 32, 16, false)
	assert.InDelta(t, 0.25, head.U, 1e-6)
	assert.InDelta(t, 0.25, head.V, 1e-6)
	assert.InDelta(t, 0.5, head.U2, 1e-6)
	assert.InDelta(t, 0.5, head.V2, 1e-6)

	arm := NewRegion(page, "arm", 0, 0, 32, 16, true)
	assert.Equal(t, 90, arm.Degrees)
	assert.InDelta(t, 16.0/128, arm.U2, 1e-6)
	assert.InDelta(t, 32.0/64, arm.V2, 1e-6)

	atlas := &Atlas{Pages: []*Page{page}, Regions: []*Region{head, arm}}
	assert.Same(t, head, atlas.FindRegion("head"))
	assert.Nil(t, atlas.FindRegion("leg"))
	assert.Same(t, page, atlas.FindPage("hero.png"))
	assert.Equal(t, Handle(tex), head.Texture())

	atlas.Dispose()
	assert.True(t, tex.Disposed)
	assert.Nil(t, page.Texture)
	assert.Nil(t, head.Texture())
}

func TestPageSetupPropagatesEnumErrors(t *testing.T) {
	page := &Page{Name: "bad.png", MinFilter: FilterLinear, MagFilter: FilterMipMap}
	err := page.Setup(NewMemoryTexture("bad.png", 1, 1))
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)
	assert.Nil(t, page.Texture)
}
