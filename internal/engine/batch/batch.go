// Package batch accumulates texture-homogeneous vertex and index data into
// fixed-capacity buffers, one draw call each.
package batch

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

const (
	// VertexSize is the number of floats in a staged vertex: x, y, z, r, g, b, a, u, v.
	VertexSize = 9

	// InputVertexSize is the number of floats per appended vertex: x, y, r, g, b, a, u, v.
	InputVertexSize = 8

	// MaxTrianglesLimit keeps every index inside the 16-bit index range with headroom.
	MaxTrianglesLimit = 10920

	// DefaultMaxTriangles is the capacity used when none is configured.
	DefaultMaxTriangles = MaxTrianglesLimit
)

// Depth bias weights.
const (
	zWeight     = 10
	depthWeight = 1000
)

var (
	// ErrCapacityConfig is returned for a triangle capacity outside 1..MaxTrianglesLimit.
	ErrCapacityConfig = errors.New("batch capacity out of range")

	// ErrCapacityViolation is returned when an append would overflow the batch.
	ErrCapacityViolation = errors.New("batch capacity exceeded")
)

// VertexData is the finalized content of a batch handed to a Drawable.
// Slices are only valid for the duration of Drawable.Apply.
type VertexData struct {
	Positions []float32 // x, y, z
	Colors    []float32 // r, g, b, a
	UVs       []float32 // u, v
	Indices   []uint16

	Texture   texture.Handle
	Blend     texture.BlendMode
	DepthBias float32
}

// VertexCount returns the number of vertices in the data.
func (d *VertexData) VertexCount() int {
	return len(d.Positions) / 3
}

// Drawable is the render-side resource a batch uploads into.
type Drawable interface {
	// Apply replaces the drawable's geometry. It must not retain the slices.
	Apply(data *VertexData)
	SetVisible(visible bool)
	Dispose()
}

// Batch stages geometry for a single texture up to a fixed capacity.
type Batch struct {
	name     string
	drawable Drawable

	maxVertices int
	maxIndices  int

	vertexCount int
	indexCount  int
	data        VertexData

	bound   bool
	visible bool
	depth   int
}

// New creates a batch that uploads into drawable. maxTriangles of 0 selects
// DefaultMaxTriangles.
func New(name string, drawable Drawable, maxTriangles int) (*Batch, error) {
	if maxTriangles == 0 {
		maxTriangles = DefaultMaxTriangles
	}
	b := &Batch{name: name, drawable: drawable}
	if err := b.Configure(maxTriangles); err != nil {
		return nil, err
	}
	return b, nil
}

// ValidateCapacity checks a triangle capacity against the 16-bit index limit.
func ValidateCapacity(maxTriangles int) error {
	if maxTriangles < 1 || maxTriangles > MaxTrianglesLimit {
		return fmt.Errorf("%w: %d triangles (allowed 1..%d)", ErrCapacityConfig, maxTriangles, MaxTrianglesLimit)
	}
	return nil
}

// Configure sets the capacity. It must not be called while geometry is staged.
func (b *Batch) Configure(maxTriangles int) error {
	if err := ValidateCapacity(maxTriangles); err != nil {
		return err
	}
	b.maxVertices = maxTriangles * VertexSize
	b.maxIndices = maxTriangles * 3
	return nil
}

// Name returns the batch name.
func (b *Batch) Name() string { return b.name }

// Drawable returns the drawable the batch uploads into.
func (b *Batch) Drawable() Drawable { return b.drawable }

// MaxVertices returns the vertex capacity.
func (b *Batch) MaxVertices() int { return b.maxVertices }

// MaxIndices returns the index capacity.
func (b *Batch) MaxIndices() int { return b.maxIndices }

// VertexCount returns the number of vertices appended since Begin.
func (b *Batch) VertexCount() int { return b.vertexCount }

// IndexCount returns the number of indices appended since Begin.
func (b *Batch) IndexCount() int { return b.indexCount }

// Begin resets the fill counters for a new pass. Staging storage is kept.
func (b *Batch) Begin() {
	b.vertexCount = 0
	b.indexCount = 0
	b.truncate()
}

// CanAccept reports whether vertices and indices fit while keeping both fills
// strictly under half of capacity.
func (b *Batch) CanAccept(vertices, indices int) bool {
	return b.vertexCount+vertices < b.maxVertices/2 &&
		b.indexCount+indices < b.maxIndices/2
}

// Fits reports whether vertices and indices fit an empty batch at full capacity.
func (b *Batch) Fits(vertices, indices int) bool {
	return vertices <= b.maxVertices && indices <= b.maxIndices
}

// Append stages vertices (InputVertexSize floats each) and indices relative to
// them. Indices are rebased by the current vertex count and z becomes the third
// position component.
func (b *Batch) Append(vertices []float32, indices []uint16, z float32) error {
	n := len(vertices) / InputVertexSize
	if len(vertices)%InputVertexSize != 0 {
		return fmt.Errorf("batch %s: %d floats is not a whole number of vertices", b.name, len(vertices))
	}
	if b.vertexCount+n > b.maxVertices || b.indexCount+len(indices) > b.maxIndices {
		return fmt.Errorf("%w: batch %s holds %d/%d vertices and %d/%d indices, appending %d and %d",
			ErrCapacityViolation, b.name, b.vertexCount, b.maxVertices, b.indexCount, b.maxIndices, n, len(indices))
	}

	b.data.DepthBias = math32.Abs(z)*zWeight + float32(b.depth)*depthWeight

	base := b.vertexCount
	for v := 0; v < len(vertices); v += InputVertexSize {
		b.data.Positions = append(b.data.Positions, vertices[v], vertices[v+1], z)
		b.data.Colors = append(b.data.Colors, vertices[v+2], vertices[v+3], vertices[v+4], vertices[v+5])
		b.data.UVs = append(b.data.UVs, vertices[v+6], vertices[v+7])
	}
	for _, idx := range indices {
		b.data.Indices = append(b.data.Indices, idx+uint16(base))
	}

	b.vertexCount += n
	b.indexCount += len(indices)
	return nil
}

// End hands the staged geometry to the drawable and truncates staging.
func (b *Batch) End() {
	if b.drawable != nil {
		b.drawable.Apply(&b.data)
	}
	b.truncate()
}

// Clear releases staged geometry and drops the texture binding. It is called
// when the batch is recycled for a new frame. Unlike Begin it does not keep
// the staging storage.
func (b *Batch) Clear() {
	b.vertexCount = 0
	b.indexCount = 0
	b.data.Positions = nil
	b.data.Colors = nil
	b.data.UVs = nil
	b.data.Indices = nil
	b.bound = false
	b.data.Texture = nil
	b.data.Blend = texture.BlendNormal
}

// Dispose releases the staging storage and the drawable.
func (b *Batch) Dispose() {
	b.Clear()
	b.data = VertexData{}
	if b.drawable != nil {
		b.drawable.Dispose()
		b.drawable = nil
	}
	b.visible = false
}

// Bound reports whether a texture has been bound since the last Clear.
func (b *Batch) Bound() bool { return b.bound }

// Bind sets the texture and blend mode of the batch.
func (b *Batch) Bind(tex texture.Handle, blend texture.BlendMode) {
	b.data.Texture = tex
	b.data.Blend = blend
	b.bound = true
}

// Texture returns the bound texture.
func (b *Batch) Texture() texture.Handle { return b.data.Texture }

// Blend returns the bound blend mode.
func (b *Batch) Blend() texture.BlendMode { return b.data.Blend }

// Matches reports whether geometry with tex and blend may join the batch.
// Blend is only compared when byBlend is set.
func (b *Batch) Matches(tex texture.Handle, blend texture.BlendMode, byBlend bool) bool {
	if b.data.Texture != tex {
		return false
	}
	return !byBlend || b.data.Blend == blend
}

// SetVisible shows or hides the batch and its drawable.
func (b *Batch) SetVisible(visible bool) {
	b.visible = visible
	if b.drawable != nil {
		b.drawable.SetVisible(visible)
	}
}

// Visible reports whether the batch is shown.
func (b *Batch) Visible() bool { return b.visible }

// SetDepth sets the parent depth mixed into the depth bias.
func (b *Batch) SetDepth(depth int) { b.depth = depth }

// DepthBias returns the render-order bias of the last append.
func (b *Batch) DepthBias() float32 { return b.data.DepthBias }

func (b *Batch) truncate() {
	b.data.Positions = b.data.Positions[:0]
	b.data.Colors = b.data.Colors[:0]
	b.data.UVs = b.data.UVs[:0]
	b.data.Indices = b.data.Indices[:0]
}
