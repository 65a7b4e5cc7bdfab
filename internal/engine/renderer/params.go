package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

// FilterParams returns the GL min and mag filter values. The mag filter must
// be Nearest or Linear.
func FilterParams(min, mag texture.Filter) (int32, int32, error) {
	var magParam int32
	switch mag {
	case texture.FilterNearest:
		magParam = gl.NEAREST
	case texture.FilterLinear:
		magParam = gl.LINEAR
	default:
		return 0, 0, fmt.Errorf("%w: mag filter %s", texture.ErrUnrecognizedEnum, mag)
	}

	var minParam int32
	switch min {
	case texture.FilterNearest:
		minParam = gl.NEAREST
	case texture.FilterLinear:
		minParam = gl.LINEAR
	case texture.FilterMipMap, texture.FilterMipMapLinearLinear:
		minParam = gl.LINEAR_MIPMAP_LINEAR
	case texture.FilterMipMapNearestNearest:
		minParam = gl.NEAREST_MIPMAP_NEAREST
	case texture.FilterMipMapLinearNearest:
		minParam = gl.LINEAR_MIPMAP_NEAREST
	case texture.FilterMipMapNearestLinear:
		minParam = gl.NEAREST_MIPMAP_LINEAR
	default:
		return 0, 0, fmt.Errorf("%w: min filter %s", texture.ErrUnrecognizedEnum, min)
	}
	return minParam, magParam, nil
}

// usesMipMaps reports whether the min filter samples mip levels.
func usesMipMaps(min texture.Filter) bool {
	return min >= texture.FilterMipMap && min <= texture.FilterMipMapLinearLinear
}

// WrapParam returns the GL wrap value.
func WrapParam(w texture.Wrap) (int32, error) {
	switch w {
	case texture.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE, nil
	case texture.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT, nil
	case texture.WrapRepeat:
		return gl.REPEAT, nil
	}
	return 0, fmt.Errorf("%w: wrap %s", texture.ErrUnrecognizedEnum, w)
}

// BlendFactors returns the source and destination blend factors for
// non-premultiplied colors.
func BlendFactors(b texture.BlendMode) (uint32, uint32, error) {
	switch b {
	case texture.BlendNormal:
		return gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, nil
	case texture.BlendAdditive:
		return gl.SRC_ALPHA, gl.ONE, nil
	case texture.BlendMultiply:
		return gl.DST_COLOR, gl.ONE_MINUS_SRC_ALPHA, nil
	case texture.BlendScreen:
		return gl.ONE, gl.ONE_MINUS_SRC_COLOR, nil
	}
	return 0, 0, fmt.Errorf("%w: blend mode %s", texture.ErrUnrecognizedEnum, b)
}
