package skelmesh

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/pkg/math"
)

// Vertex is one emitted vertex as seen by a VertexEffect.
type Vertex struct {
	Position math.Vec2
	UV       math.Vec2
	Light    skeleton.Color
	// Dark is always transparent black; two-color tinting is not batched.
	Dark skeleton.Color
}

// VertexEffect transforms a vertex after tinting and clipping. It is called
// synchronously for every emitted vertex, in draw order.
type VertexEffect func(Vertex) Vertex

// JitterEffect offsets every vertex by a random amount in [-x, x] and [-y, y],
// peaking at zero.
func JitterEffect(x, y float32, rng *rand.Rand) VertexEffect {
	return func(v Vertex) Vertex {
		v.Position.X += triangular(rng, -x, x)
		v.Position.Y += triangular(rng, -y, y)
		return v
	}
}

// triangular samples the triangular distribution on [lo, hi] with the mode
// in the middle.
func triangular(rng *rand.Rand, lo, hi float32) float32 {
	d := hi - lo
	if d == 0 {
		return lo
	}
	mode := (lo + hi) / 2
	u := rng.Float32()
	if u <= (mode-lo)/d {
		return lo + math32.Sqrt(u*d*(mode-lo))
	}
	return hi - math32.Sqrt((1-u)*d*(hi-mode))
}

// SwirlEffect rotates vertices within radius of the world point (cx, cy).
// The rotation is angle degrees at the centre and eases out to zero at the rim.
func SwirlEffect(cx, cy, radius, angle float32) VertexEffect {
	rad := math.DegToRad(angle)
	return func(v Vertex) Vertex {
		x, y := v.Position.X-cx, v.Position.Y-cy
		dist := math32.Sqrt(x*x + y*y)
		if dist >= radius {
			return v
		}
		theta := rad * powOut((radius-dist)/radius)
		sin, cos := math32.Sin(theta), math32.Cos(theta)
		v.Position.X = cos*x - sin*y + cx
		v.Position.Y = sin*x + cos*y + cy
		return v
	}
}

// powOut is the squared ease-out curve.
func powOut(a float32) float32 {
	return 1 - (a-1)*(a-1)
}
