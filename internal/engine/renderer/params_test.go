package renderer

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

func TestFilterParams(t *testing.T) {
	tests := []struct {
		min, mag         texture.Filter
		wantMin, wantMag int32
	}{
		{texture.FilterNearest, texture.FilterNearest, gl.NEAREST, gl.NEAREST},
		{texture.FilterLinear, texture.FilterLinear, gl.LINEAR, gl.LINEAR},
		{texture.FilterMipMap, texture.FilterLinear, gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR},
		{texture.FilterMipMapNearestNearest, texture.FilterNearest, gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST},
		{texture.FilterMipMapLinearNearest, texture.FilterLinear, gl.LINEAR_MIPMAP_NEAREST, gl.LINEAR},
		{texture.FilterMipMapNearestLinear, texture.FilterLinear, gl.NEAREST_MIPMAP_LINEAR, gl.LINEAR},
		{texture.FilterMipMapLinearLinear, texture.FilterNearest, gl.LINEAR_MIPMAP_LINEAR, gl.NEAREST},
	}
	for _, tt := range tests {
		t.Run(tt.min.String()+"/"+tt.mag.String(), func(t *testing.T) {
			min, mag, err := FilterParams(tt.min, tt.mag)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, min)
			assert.Equal(t, tt.wantMag, mag)
		})
	}
}

func TestFilterParams_Unrecognized(t *testing.T) {
	_, _, err := FilterParams(texture.FilterLinear, texture.FilterMipMap)
	assert.ErrorIs(t, err, texture.ErrUnrecognizedEnum, "mip maps are not a mag filter")

	_, _, err = FilterParams(texture.Filter(42), texture.FilterLinear)
	assert.ErrorIs(t, err, texture.ErrUnrecognizedEnum)
	assert.Contains(t, err.Error(), "Filter(42)")
}

func TestUsesMipMaps(t *testing.T) {
	assert.False(t, usesMipMaps(texture.FilterNearest))
	assert.False(t, usesMipMaps(texture.FilterLinear))
	assert.True(t, usesMipMaps(texture.FilterMipMap))
	assert.True(t, usesMipMaps(texture.FilterMipMapLinearLinear))
}

func TestWrapParam(t *testing.T) {
	tests := map[texture.Wrap]int32{
		texture.WrapClampToEdge:    gl.CLAMP_TO_EDGE,
		texture.WrapMirroredRepeat: gl.MIRRORED_REPEAT,
		texture.WrapRepeat:         gl.REPEAT,
	}
	for w, want := range tests {
		got, err := WrapParam(w)
		require.NoError(t, err)
		assert.Equal(t, want, got, w.String())
	}

	_, err := WrapParam(texture.Wrap(-1))
	assert.ErrorIs(t, err, texture.ErrUnrecognizedEnum)
}

func TestBlendFactors(t *testing.T) {
	tests := []struct {
		mode     texture.BlendMode
		src, dst uint32
	}{
		{texture.BlendNormal, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA},
		{texture.BlendAdditive, gl.SRC_ALPHA, gl.ONE},
		{texture.BlendMultiply, gl.DST_COLOR, gl.ONE_MINUS_SRC_ALPHA},
		{texture.BlendScreen, gl.ONE, gl.ONE_MINUS_SRC_COLOR},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			src, dst, err := BlendFactors(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.src, src)
			assert.Equal(t, tt.dst, dst)
		})
	}

	_, _, err := BlendFactors(texture.BlendMode(9))
	assert.ErrorIs(t, err, texture.ErrUnrecognizedEnum)
}

// Apply interleaves without touching GL when there is nothing to upload.
func TestDrawable_ApplyEmpty(t *testing.T) {
	d := &Drawable{name: "empty"}
	d.Apply(&batch.VertexData{Texture: texture.NewMemoryTexture("t", 1, 1), DepthBias: 3})
	assert.Zero(t, d.vao)
	assert.Empty(t, d.interleaved)
	assert.Equal(t, float32(3), d.DepthBias())
	assert.NoError(t, d.draw(), "hidden drawables are skipped")
}
