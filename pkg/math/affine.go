package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Affine is a 2D affine transform in row major order:
//
//	[a b tx]
//	[c d ty]
//	[0 0 1 ]
type Affine f32.Aff3

// IdentityAffine returns the identity transform.
func IdentityAffine() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// TranslateAffine returns a pure translation.
func TranslateAffine(x, y float32) Affine {
	return Affine{1, 0, x, 0, 1, y}
}

// TRS builds a transform that scales, then rotates by rotationDeg, then translates.
func TRS(x, y, rotationDeg, scaleX, scaleY float32) Affine {
	rad := DegToRad(rotationDeg)
	cos, sin := math32.Cos(rad), math32.Sin(rad)
	return Affine{
		cos * scaleX, -sin * scaleY, x,
		sin * scaleX, cos * scaleY, y,
	}
}

// A returns the x axis x component.
func (m Affine) A() float32 { return m[0] }

// B returns the y axis x component.
func (m Affine) B() float32 { return m[1] }

// C returns the x axis y component.
func (m Affine) C() float32 { return m[3] }

// D returns the y axis y component.
func (m Affine) D() float32 { return m[4] }

// TX returns the x translation.
func (m Affine) TX() float32 { return m[2] }

// TY returns the y translation.
func (m Affine) TY() float32 { return m[5] }

// Mul returns m * other, so other is applied first.
func (m Affine) Mul(other Affine) Affine {
	return Affine{
		m[0]*other[0] + m[1]*other[3],
		m[0]*other[1] + m[1]*other[4],
		m[0]*other[2] + m[1]*other[5] + m[2],
		m[3]*other[0] + m[4]*other[3],
		m[3]*other[1] + m[4]*other[4],
		m[3]*other[2] + m[4]*other[5] + m[5],
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float32) (float32, float32) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// ApplyVec transforms a point.
func (m Affine) ApplyVec(v Vec2) Vec2 {
	x, y := m.Apply(v.X, v.Y)
	return Vec2{x, y}
}
