// Package clipping clips attachment triangles against clipping attachment polygons.
package clipping

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
)

// OutputVertexSize is the stride of clipped vertices: x, y, r, g, b, a, u, v.
const OutputVertexSize = 8

// degenerateArea is the twice-area below which a triangle is treated as empty.
const degenerateArea = 1e-9

// Clipper holds the active clipping polygon of a skeleton pass.
// Output buffers are reused between calls.
type Clipper struct {
	attachment *skeleton.ClippingAttachment

	// Convex counter-clockwise pieces of the clipping polygon, as x, y pairs.
	// Piece i spans pieces[pieceEnds[i-1]:pieceEnds[i]].
	pieces    []float32
	pieceEnds []int

	world     []float32
	remaining []int
	indices   []uint16

	input, output []float32

	clippedVertices  []float32
	clippedTriangles []uint16
}

// New creates a clipper with no active clip.
func New() *Clipper {
	return &Clipper{}
}

// IsClipping reports whether a clipping attachment is active.
func (c *Clipper) IsClipping() bool {
	return c.attachment != nil
}

// ClipStart activates clip for the slots that follow, up to its end slot.
// It is ignored while another clip is active. It returns the number of convex
// pieces the polygon was decomposed into.
func (c *Clipper) ClipStart(slot *skeleton.Slot, clip *skeleton.ClippingAttachment) int {
	if c.attachment != nil {
		return 0
	}
	n := clip.WorldVerticesLength
	if n < 6 {
		return 0
	}
	c.attachment = clip

	c.world = grow(c.world, n)
	clip.ComputeWorldVertices(slot, 0, n, c.world, 0, 2)
	MakeCounterClockwise(c.world)

	c.remaining, c.indices = Triangulate(c.world, c.remaining, c.indices[:0])
	// Drop degenerate ears before merging.
	kept := c.indices[:0]
	for i := 0; i+2 < len(c.indices); i += 3 {
		a, b, d := int(c.indices[i])*2, int(c.indices[i+1])*2, int(c.indices[i+2])*2
		x1, y1 := c.world[a], c.world[a+1]
		x2, y2 := c.world[b], c.world[b+1]
		x3, y3 := c.world[d], c.world[d+1]
		if math32.Abs((x2-x1)*(y3-y1)-(x3-x1)*(y2-y1)) < degenerateArea {
			continue
		}
		kept = append(kept, c.indices[i], c.indices[i+1], c.indices[i+2])
	}
	c.indices = kept

	c.pieces, c.pieceEnds = c.pieces[:0], c.pieceEnds[:0]
	for _, piece := range Decompose(c.world, c.indices) {
		for _, idx := range piece {
			c.pieces = append(c.pieces, c.world[idx*2], c.world[idx*2+1])
		}
		c.pieceEnds = append(c.pieceEnds, len(c.pieces))
	}
	return len(c.pieceEnds)
}

// ClipEndWithSlot ends the active clip if slot is its end slot.
func (c *Clipper) ClipEndWithSlot(slot *skeleton.Slot) {
	if c.attachment != nil && c.attachment.EndSlot == slot.Data {
		c.ClipEnd()
	}
}

// ClipEnd ends the active clip, if any.
func (c *Clipper) ClipEnd() {
	if c.attachment == nil {
		return
	}
	c.attachment = nil
	c.pieces, c.pieceEnds = c.pieces[:0], c.pieceEnds[:0]
	c.clippedVertices = c.clippedVertices[:0]
	c.clippedTriangles = c.clippedTriangles[:0]
}

// ClippedVertices returns the output of the last ClipTriangles call,
// OutputVertexSize floats per vertex. The slice is reused by the next call.
func (c *Clipper) ClippedVertices() []float32 {
	return c.clippedVertices
}

// ClippedTriangles returns the indices of the last ClipTriangles call.
func (c *Clipper) ClippedTriangles() []uint16 {
	return c.clippedTriangles
}

// ClipTriangles clips triangles against the active polygon. vertices holds
// x, y pairs and uvs holds u, v pairs for the same vertices. Every output
// vertex is tinted with light. The result may be empty.
func (c *Clipper) ClipTriangles(vertices []float32, triangles []uint16, uvs []float32, light skeleton.Color) {
	c.clippedVertices = c.clippedVertices[:0]
	c.clippedTriangles = c.clippedTriangles[:0]

	for i := 0; i+2 < len(triangles); i += 3 {
		v1, v2, v3 := int(triangles[i])*2, int(triangles[i+1])*2, int(triangles[i+2])*2
		x1, y1, u1, w1 := vertices[v1], vertices[v1+1], uvs[v1], uvs[v1+1]
		x2, y2, u2, w2 := vertices[v2], vertices[v2+1], uvs[v2], uvs[v2+1]
		x3, y3, u3, w3 := vertices[v3], vertices[v3+1], uvs[v3], uvs[v3+1]

		d0, d1 := y2-y3, x3-x2
		d2, d4 := x1-x3, y3-y1
		denom := d0*d2 + d1*(y1-y3)
		if math32.Abs(denom) < degenerateArea {
			continue
		}
		d := 1 / denom

		start := 0
		for _, end := range c.pieceEnds {
			piece := c.pieces[start:end]
			start = end
			polygon, clipped := c.clip(x1, y1, x2, y2, x3, y3, piece)
			if !clipped {
				base := uint16(len(c.clippedVertices) / OutputVertexSize)
				c.clippedVertices = append(c.clippedVertices,
					x1, y1, light.R, light.G, light.B, light.A, u1, w1,
					x2, y2, light.R, light.G, light.B, light.A, u2, w2,
					x3, y3, light.R, light.G, light.B, light.A, u3, w3,
				)
				c.clippedTriangles = append(c.clippedTriangles, base, base+1, base+2)
				// Pieces do not overlap, so a triangle inside one is outside the rest.
				break
			}

			count := len(polygon) / 2
			if count < 3 || math32.Abs(SignedArea(polygon)) < degenerateArea {
				continue
			}
			base := uint16(len(c.clippedVertices) / OutputVertexSize)
			for j := 0; j < len(polygon); j += 2 {
				x, y := polygon[j], polygon[j+1]
				c0, c1 := x-x3, y-y3
				a := (d0*c0 + d1*c1) * d
				b := (d4*c0 + d2*c1) * d
				g := 1 - a - b
				c.clippedVertices = append(c.clippedVertices,
					x, y, light.R, light.G, light.B, light.A,
					u1*a+u2*b+u3*g, w1*a+w2*b+w3*g,
				)
			}
			for j := 1; j < count-1; j++ {
				c.clippedTriangles = append(c.clippedTriangles, base, base+uint16(j), base+uint16(j+1))
			}
		}
	}
}

// clip clips the triangle against one convex counter-clockwise piece using
// Sutherland-Hodgman. It returns the clipped polygon and whether any point was
// outside. The returned slice is only valid until the next call.
func (c *Clipper) clip(x1, y1, x2, y2, x3, y3 float32, piece []float32) ([]float32, bool) {
	input := append(c.input[:0], x1, y1, x2, y2, x3, y3)
	output := c.output[:0]
	clipped := false

	for e := 0; e < len(piece); e += 2 {
		ex1, ey1 := piece[e], piece[e+1]
		next := (e + 2) % len(piece)
		dx, dy := piece[next]-ex1, piece[next+1]-ey1

		output = output[:0]
		n := len(input)
		for i := 0; i < n; i += 2 {
			px, py := input[i], input[i+1]
			j := (i + 2) % n
			qx, qy := input[j], input[j+1]
			sp := dx*(py-ey1) - dy*(px-ex1)
			sq := dx*(qy-ey1) - dy*(qx-ex1)

			if sq >= 0 {
				if sp < 0 {
					t := sp / (sp - sq)
					output = append(output, px+(qx-px)*t, py+(qy-py)*t)
					clipped = true
				}
				output = append(output, qx, qy)
			} else {
				clipped = true
				if sp >= 0 {
					t := sp / (sp - sq)
					output = append(output, px+(qx-px)*t, py+(qy-py)*t)
				}
			}
		}

		input, output = output, input
		if len(input) == 0 {
			break
		}
	}

	c.input, c.output = input, output
	return input, clipped
}

func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
