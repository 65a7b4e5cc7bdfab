package batch

import "github.com/Faultbox/midgard-spine/internal/engine/texture"

// MemoryDrawable keeps a copy of the last applied geometry. It backs headless
// runs and tests.
type MemoryDrawable struct {
	Name      string
	Positions []float32
	Colors    []float32
	UVs       []float32
	Indices   []uint16
	Texture   texture.Handle
	Blend     texture.BlendMode
	DepthBias float32

	Visible  bool
	Applies  int
	Disposed bool
}

// NewMemoryDrawable creates an empty, hidden drawable.
func NewMemoryDrawable(name string) *MemoryDrawable {
	return &MemoryDrawable{Name: name}
}

// Apply copies data.
func (m *MemoryDrawable) Apply(data *VertexData) {
	m.Positions = append(m.Positions[:0], data.Positions...)
	m.Colors = append(m.Colors[:0], data.Colors...)
	m.UVs = append(m.UVs[:0], data.UVs...)
	m.Indices = append(m.Indices[:0], data.Indices...)
	m.Texture = data.Texture
	m.Blend = data.Blend
	m.DepthBias = data.DepthBias
	m.Applies++
}

// SetVisible records visibility.
func (m *MemoryDrawable) SetVisible(visible bool) {
	m.Visible = visible
}

// Dispose drops the geometry.
func (m *MemoryDrawable) Dispose() {
	m.Positions, m.Colors, m.UVs, m.Indices = nil, nil, nil, nil
	m.Texture = nil
	m.Disposed = true
}

// VertexCount returns the number of applied vertices.
func (m *MemoryDrawable) VertexCount() int {
	return len(m.Positions) / 3
}
