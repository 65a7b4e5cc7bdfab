package clipping

import "github.com/Faultbox/midgard-spine/pkg/math"

// SignedArea returns the signed area of a polygon given as x, y pairs.
// It is positive for counter-clockwise winding.
func SignedArea(polygon []float32) float32 {
	n := len(polygon)
	var area float32
	for i := 0; i < n; i += 2 {
		j := (i + 2) % n
		area += polygon[i]*polygon[j+1] - polygon[j]*polygon[i+1]
	}
	return area / 2
}

// MakeCounterClockwise reverses the polygon in place if it winds clockwise.
func MakeCounterClockwise(polygon []float32) {
	if SignedArea(polygon) >= 0 {
		return
	}
	for i, j := 0, len(polygon)-2; i < j; i, j = i+2, j-2 {
		polygon[i], polygon[j] = polygon[j], polygon[i]
		polygon[i+1], polygon[j+1] = polygon[j+1], polygon[i+1]
	}
}

// Triangulate splits a simple counter-clockwise polygon into triangles by ear
// clipping. It appends point indices to out and returns it.
func Triangulate(polygon []float32, remaining []int, out []uint16) ([]int, []uint16) {
	n := len(polygon) / 2
	if n < 3 {
		return remaining, out
	}
	remaining = remaining[:0]
	for i := 0; i < n; i++ {
		remaining = append(remaining, i)
	}

	for len(remaining) > 3 {
		count := len(remaining)
		ear := -1
		for i := 0; i < count; i++ {
			prev, cur, next := remaining[(i+count-1)%count], remaining[i], remaining[(i+1)%count]
			if isEar(polygon, remaining, prev, cur, next) {
				ear = i
				break
			}
		}
		// Self-intersecting or fully degenerate input has no ear; cut anyway.
		if ear < 0 {
			ear = 0
		}
		prev, cur, next := remaining[(ear+count-1)%count], remaining[ear], remaining[(ear+1)%count]
		out = append(out, uint16(prev), uint16(cur), uint16(next))
		remaining = append(remaining[:ear], remaining[ear+1:]...)
	}
	out = append(out, uint16(remaining[0]), uint16(remaining[1]), uint16(remaining[2]))
	return remaining, out
}

func point(polygon []float32, i int) math.Vec2 {
	return math.Vec2{X: polygon[i*2], Y: polygon[i*2+1]}
}

func isEar(polygon []float32, remaining []int, prev, cur, next int) bool {
	a, b, c := point(polygon, prev), point(polygon, cur), point(polygon, next)
	if b.Sub(a).Cross(c.Sub(b)) <= 0 {
		return false // reflex or collinear
	}
	for _, idx := range remaining {
		if idx == prev || idx == cur || idx == next {
			continue
		}
		p := point(polygon, idx)
		if p == a || p == b || p == c {
			continue
		}
		if inTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// inTriangle reports whether p lies inside or on the edge of the
// counter-clockwise triangle abc.
func inTriangle(p, a, b, c math.Vec2) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0 &&
		c.Sub(b).Cross(p.Sub(b)) >= 0 &&
		a.Sub(c).Cross(p.Sub(c)) >= 0
}

// Decompose merges the counter-clockwise triangles of a polygon into convex
// counter-clockwise pieces. Each piece is a list of point indices. A triangle
// joins a piece when they share an edge and the result stays convex.
func Decompose(polygon []float32, triangles []uint16) [][]int {
	count := len(triangles) / 3
	used := make([]bool, count)
	var pieces [][]int
	for t := 0; t < count; t++ {
		if used[t] {
			continue
		}
		used[t] = true
		piece := []int{int(triangles[t*3]), int(triangles[t*3+1]), int(triangles[t*3+2])}
		for merged := true; merged; {
			merged = false
			for o := t + 1; o < count; o++ {
				if used[o] {
					continue
				}
				if grown, ok := mergeTriangle(polygon, piece, triangles[o*3:o*3+3]); ok {
					piece, used[o], merged = grown, true, true
				}
			}
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

// mergeTriangle inserts the free point of tri into piece if tri shares an edge
// with it and the grown piece stays convex.
func mergeTriangle(polygon []float32, piece []int, tri []uint16) ([]int, bool) {
	n := len(piece)
	for i := 0; i < n; i++ {
		a, b := piece[i], piece[(i+1)%n]
		for k := 0; k < 3; k++ {
			// The shared edge runs b->a in the triangle.
			if int(tri[k]) != b || int(tri[(k+1)%3]) != a {
				continue
			}
			c := int(tri[(k+2)%3])
			prev, next := piece[(i+n-1)%n], piece[(i+2)%n]
			if !convex(polygon, prev, a, c) || !convex(polygon, a, c, b) || !convex(polygon, c, b, next) {
				break
			}
			grown := make([]int, 0, n+1)
			grown = append(grown, piece[:i+1]...)
			grown = append(grown, c)
			grown = append(grown, piece[i+1:]...)
			return grown, true
		}
	}
	return piece, false
}

// convex reports whether a->b->c turns left or runs straight.
func convex(polygon []float32, a, b, c int) bool {
	pa, pb, pc := point(polygon, a), point(polygon, b), point(polygon, c)
	return pb.Sub(pa).Cross(pc.Sub(pb)) >= 0
}
