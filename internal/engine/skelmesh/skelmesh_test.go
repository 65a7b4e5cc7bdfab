package skelmesh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

// recordingHost hands out memory drawables and keeps them for inspection.
type recordingHost struct {
	drawables []*batch.MemoryDrawable
}

func (h *recordingHost) NewDrawable(name string) batch.Drawable {
	d := batch.NewMemoryDrawable(name)
	h.drawables = append(h.drawables, d)
	return d
}

// rig is a test skeleton with one region-capable slot per entry.
type rig struct {
	t     *testing.T
	sk    *skeleton.Skeleton
	pages map[string]*texture.Page
	host  *recordingHost
}

// newRig creates a skeleton with a root bone, a disabled bone and n slots on the root.
func newRig(t *testing.T, n int) *rig {
	t.Helper()
	root := &skeleton.BoneData{Index: 0, Name: "root", ScaleX: 1, ScaleY: 1, Active: true}
	off := &skeleton.BoneData{Index: 1, Name: "off", Parent: root, ScaleX: 1, ScaleY: 1}
	slots := make([]*skeleton.SlotData, n)
	for i := range slots {
		slots[i] = &skeleton.SlotData{
			Index:    i,
			Name:     fmt.Sprintf("slot%d", i),
			BoneData: root,
			Color:    skeleton.ColorWhite,
		}
	}
	sk := skeleton.New("rig", []*skeleton.BoneData{root, off}, slots)
	sk.UpdateWorldTransform()
	return &rig{t: t, sk: sk, pages: map[string]*texture.Page{}, host: &recordingHost{}}
}

func (r *rig) page(name string) *texture.Page {
	if p, ok := r.pages[name]; ok {
		return p
	}
	p := &texture.Page{Name: name, Width: 64, Height: 64}
	require.NoError(r.t, p.Setup(texture.NewMemoryTexture(name, 64, 64)))
	r.pages[name] = p
	return p
}

// region puts a 16x16 quad centred at (x, 0) on slot i.
func (r *rig) region(i int, page string, x float32) *skeleton.RegionAttachment {
	reg := texture.NewRegion(r.page(page), "r", 0, 0, 16, 16, false)
	att := skeleton.NewRegionAttachment(fmt.Sprintf("region%d", i), reg)
	att.X = x
	att.Width, att.Height = 16, 16
	att.UpdateRegion()
	r.sk.Slots[i].SetAttachment(att)
	return att
}

func (r *rig) mesh(t *testing.T, opts Options) *SkeletonMesh {
	t.Helper()
	m, err := New("hero", r.sk, r.host, opts)
	require.NoError(t, err)
	return m
}

func (r *rig) tex(page string) texture.Handle {
	return r.pages[page].Texture
}

func TestNew_Options(t *testing.T) {
	r := newRig(t, 1)

	_, err := New("hero", r.sk, r.host, Options{MaxTriangles: batch.MaxTrianglesLimit + 1})
	assert.ErrorIs(t, err, batch.ErrCapacityConfig)

	_, err = New("hero", nil, r.host, DefaultOptions())
	assert.Error(t, err)

	m, err := New("hero", r.sk, r.host, Options{})
	require.NoError(t, err)
	assert.Equal(t, batch.DefaultMaxTriangles, m.maxTriangles)
	assert.NotEqual(t, m.ID(), r.mesh(t, DefaultOptions()).ID())
	assert.Same(t, r.sk, m.Skeleton())
	assert.Equal(t, float32(DefaultZOffset), DefaultOptions().ZOffset)
}

func TestUpdateGeometry_SingleRegion(t *testing.T) {
	r := newRig(t, 1)
	r.region(0, "body", 0)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	batches := m.Batches()
	require.Len(t, batches, 1)
	b := batches[0]
	assert.Equal(t, "hero/batcher_0", b.Name())
	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, 6, b.IndexCount())
	assert.Equal(t, r.tex("body"), b.Texture())
	assert.True(t, b.Visible())

	d := r.host.drawables[0]
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0}, d.Indices)
	assert.Equal(t, r.tex("body"), d.Texture)
	assert.Equal(t, []float32{-8, -8, 0}, d.Positions[:3])
	assert.Equal(t, []float32{0, 0.25}, d.UVs[:2])
}

func TestUpdateGeometry_SplitsOnCapacity(t *testing.T) {
	// 20 triangles: index half-capacity is 30, so four quads fit per batch.
	const regions = 10
	r := newRig(t, regions)
	for i := 0; i < regions; i++ {
		r.region(i, "body", float32(i*20))
	}
	opts := DefaultOptions()
	opts.MaxTriangles = 20
	m := r.mesh(t, opts)

	require.NoError(t, m.UpdateGeometry())

	batches := m.Batches()
	require.Len(t, batches, 3)
	assert.Equal(t, 16, batches[0].VertexCount())
	assert.Equal(t, 16, batches[1].VertexCount())
	assert.Equal(t, 8, batches[2].VertexCount(), "last batch holds the remainder")
	assert.Equal(t, 12, batches[2].IndexCount())
	for _, b := range batches {
		assert.Equal(t, r.tex("body"), b.Texture())
	}
}

func TestUpdateGeometry_SplitsOnTexture(t *testing.T) {
	r := newRig(t, 3)
	r.region(0, "body", 0)
	r.region(1, "fx", 20)
	r.region(2, "body", 40)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	batches := m.Batches()
	require.Len(t, batches, 3, "a texture switch splits even with spare capacity")
	assert.Equal(t, r.tex("body"), batches[0].Texture())
	assert.Equal(t, r.tex("fx"), batches[1].Texture())
	assert.Equal(t, r.tex("body"), batches[2].Texture(), "no batch is reopened after it closed")
	for _, b := range batches {
		assert.Equal(t, 4, b.VertexCount())
	}
}

func TestUpdateGeometry_BlendSplit(t *testing.T) {
	tests := []struct {
		name        string
		splitBlend  bool
		wantBatches int
	}{
		{"split by blend", true, 2},
		{"texture only", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, 2)
			r.region(0, "body", 0)
			r.region(1, "body", 20)
			r.sk.Slots[1].Data.BlendMode = texture.BlendAdditive
			opts := DefaultOptions()
			opts.SplitByBlend = tt.splitBlend
			m := r.mesh(t, opts)

			require.NoError(t, m.UpdateGeometry())
			require.Len(t, m.Batches(), tt.wantBatches)
			assert.Equal(t, texture.BlendNormal, m.Batches()[0].Blend())
		})
	}
}

func TestUpdateGeometry_Tint(t *testing.T) {
	r := newRig(t, 1)
	att := r.region(0, "body", 0)
	att.Color = skeleton.Color{R: 1, G: 0, B: 0, A: 1}
	r.sk.Slots[0].Color = skeleton.Color{R: 1, G: 1, B: 1, A: 0.5}
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	d := r.host.drawables[0]
	require.Len(t, d.Colors, 16)
	for v := 0; v < len(d.Colors); v += 4 {
		assert.Equal(t, []float32{1, 0, 0, 0.5}, d.Colors[v:v+4])
	}
}

func TestUpdateGeometry_DrawOrderAndDepth(t *testing.T) {
	r := newRig(t, 3)
	r.region(0, "body", 0)
	r.region(1, "body", 100)
	r.region(2, "body", 200)
	r.sk.DrawOrder = []*skeleton.Slot{r.sk.Slots[2], r.sk.Slots[0], r.sk.Slots[1]}
	m := r.mesh(t, DefaultOptions())
	m.SetDepth(3)

	require.NoError(t, m.UpdateGeometry())

	d := r.host.drawables[0]
	require.Equal(t, 12, d.VertexCount())
	// First vertex of each quad is its bottom-left corner.
	assert.Equal(t, []float32{192, -8, 0}, d.Positions[0:3])
	assert.InDeltaSlice(t, []float32{-8, -8, -0.1}, d.Positions[12:15], 1e-6)
	assert.InDeltaSlice(t, []float32{92, -8, -0.2}, d.Positions[24:27], 1e-6)
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4, 8, 9, 10, 10, 11, 8}, d.Indices)
	assert.InDelta(t, 0.2*10+3*1000, m.Batches()[0].DepthBias(), 1e-3)
}

func TestUpdateGeometry_InactiveBone(t *testing.T) {
	r := newRig(t, 2)
	r.region(0, "body", 0)
	r.region(1, "fx", 20)
	r.sk.Slots[1].Bone = r.sk.FindBone("off")
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	assert.Equal(t, 4, m.Batches()[0].VertexCount())
}

func TestUpdateGeometry_NonDrawingAttachments(t *testing.T) {
	r := newRig(t, 4)
	r.region(0, "body", 0)
	r.sk.Slots[1].SetAttachment(skeleton.NewPointAttachment("p", 0, 0, 0))
	r.sk.Slots[2].SetAttachment(skeleton.NewBoundingBoxAttachment("bb", []float32{0, 0, 1, 0, 1, 1}))
	r.region(3, "body", 20)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	assert.Equal(t, 8, m.Batches()[0].VertexCount())
}

func TestUpdateGeometry_FullyClippedAttachmentDoesNotSplit(t *testing.T) {
	r := newRig(t, 4)
	r.region(0, "body", 0)
	clip := skeleton.NewClippingAttachment("mask", []float32{1000, 1000, 1010, 1000, 1010, 1010}, r.sk.Slots[2].Data)
	r.sk.Slots[1].SetAttachment(clip)
	r.region(2, "fx", 0) // clipped away; would split on texture otherwise
	r.region(3, "body", 20)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	require.Len(t, m.Batches(), 1)
	assert.Equal(t, 8, m.Batches()[0].VertexCount())
	assert.Equal(t, r.tex("body"), m.Batches()[0].Texture())
	assert.False(t, m.clipper.IsClipping())
	assert.Equal(t, 1, m.BatchCount())
}

func TestUpdateGeometry_EmptyFrame(t *testing.T) {
	r := newRig(t, 2)
	clip := skeleton.NewClippingAttachment("mask", []float32{1000, 1000, 1010, 1000, 1010, 1010}, r.sk.Slots[1].Data)
	r.sk.Slots[0].SetAttachment(clip)
	r.region(1, "body", 0)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	b := m.Batches()[0]
	assert.Zero(t, b.VertexCount())
	assert.False(t, b.Bound())
	assert.Zero(t, r.host.drawables[0].VertexCount())
}

func TestUpdateGeometry_PartialClip(t *testing.T) {
	r := newRig(t, 3)
	// Left half of the quad, which spans -8..8.
	clip := skeleton.NewClippingAttachment("mask", []float32{-20, -20, 0, -20, 0, 20, -20, 20}, r.sk.Slots[1].Data)
	r.sk.Slots[0].SetAttachment(clip)
	att := r.region(1, "body", 0)
	att.Color = skeleton.Color{R: 0, G: 1, B: 0, A: 1}
	r.region(2, "body", 100)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	require.Len(t, m.Batches(), 1)
	d := r.host.drawables[0]
	clippedVertices := m.Batches()[0].VertexCount() - 4
	require.Greater(t, clippedVertices, 0)
	for v := 0; v < clippedVertices; v++ {
		assert.LessOrEqual(t, d.Positions[v*3], float32(1e-4))
		assert.Equal(t, []float32{0, 1, 0, 1}, d.Colors[v*4:v*4+4])
		// u follows x across the 16px quad on a 64px page
		assert.InDelta(t, (d.Positions[v*3]+8)/64, d.UVs[v*2], 1e-5)
	}
	// The slot after the end slot is drawn unclipped.
	assert.Equal(t, float32(92), d.Positions[clippedVertices*3])
}

func TestUpdateGeometry_Mesh(t *testing.T) {
	// A fan larger than the initial scratch buffer.
	const n = 300
	vertices := make([]float32, 0, n*2)
	regionUVs := make([]float32, 0, n*2)
	for i := 0; i < n; i++ {
		vertices = append(vertices, float32(i), float32(i%2))
		regionUVs = append(regionUVs, float32(i)/n, float32(i%2))
	}
	var triangles []uint16
	for i := 1; i+1 < n; i++ {
		triangles = append(triangles, 0, uint16(i), uint16(i+1))
	}

	r := newRig(t, 1)
	reg := texture.NewRegion(r.page("body"), "strip", 0, 0, 64, 64, false)
	mesh := skeleton.NewMeshAttachment("strip", reg, vertices, regionUVs, triangles)
	mesh.UpdateUVs()
	r.sk.Slots[0].SetAttachment(mesh)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	assert.Equal(t, n, m.Batches()[0].VertexCount())
	assert.Equal(t, len(triangles), m.Batches()[0].IndexCount())
	assert.GreaterOrEqual(t, cap(m.scratch.buf), n*batch.InputVertexSize)

	d := r.host.drawables[0]
	assert.Equal(t, float32(299), d.Positions[299*3])
	assert.InDelta(t, 299.0/n, d.UVs[299*2], 1e-5)

	// Deform replaces the local vertices.
	deform := append([]float32(nil), vertices...)
	deform[0] = -50
	r.sk.Slots[0].Deform = deform
	require.NoError(t, m.UpdateGeometry())
	assert.Equal(t, float32(-50), d.Positions[0])
}

func TestUpdateGeometry_VertexEffect(t *testing.T) {
	r := newRig(t, 1)
	r.region(0, "body", 0)
	m := r.mesh(t, DefaultOptions())

	calls := 0
	m.VertexEffect = func(v Vertex) Vertex {
		calls++
		assert.Equal(t, skeleton.ColorTransparent, v.Dark)
		assert.Equal(t, skeleton.ColorWhite, v.Light)
		v.Position.X += 100
		v.Light = skeleton.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}
		v.UV.X = 1
		return v
	}

	require.NoError(t, m.UpdateGeometry())
	assert.Equal(t, 4, calls)

	d := r.host.drawables[0]
	assert.Equal(t, float32(92), d.Positions[0])
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 1}, d.Colors[:4])
	assert.Equal(t, float32(1), d.UVs[0])

	m.VertexEffect = nil
	require.NoError(t, m.UpdateGeometry())
	assert.Equal(t, float32(-8), d.Positions[0])
}

func TestUpdateGeometry_PoolReuse(t *testing.T) {
	r := newRig(t, 2)
	r.region(0, "body", 0)
	r.region(1, "fx", 20)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 2)
	require.Len(t, r.host.drawables, 2)

	r.region(1, "body", 20)
	require.NoError(t, m.UpdateGeometry())

	assert.Len(t, m.Batches(), 1)
	assert.Equal(t, 2, m.BatchCount(), "the pool never shrinks")
	assert.Len(t, r.host.drawables, 2, "no drawable is created for a reused batch")
	assert.True(t, r.host.drawables[0].Visible)
	assert.False(t, r.host.drawables[1].Visible)
	assert.Equal(t, 8, r.host.drawables[0].VertexCount())
}

func TestUpdateGeometry_SkipsAttachmentLargerThanBatch(t *testing.T) {
	// 2 triangles: 18 vertices and 6 indices per batch, so a quad fits but a
	// three-triangle fan does not.
	r := newRig(t, 3)
	r.region(0, "body", 0)
	reg := texture.NewRegion(r.page("body"), "fan", 0, 0, 16, 16, false)
	fan := skeleton.NewMeshAttachment("fan", reg,
		[]float32{0, 0, 1, 0, 1, 1, 0, 1, -1, 1},
		[]float32{0, 0, 1, 0, 1, 1, 0, 1, 0, 0},
		[]uint16{0, 1, 2, 0, 2, 3, 0, 3, 4})
	fan.UpdateUVs()
	r.sk.Slots[1].SetAttachment(fan)
	r.region(2, "body", 20)
	m := r.mesh(t, Options{MaxTriangles: 2, ZOffset: DefaultZOffset})

	require.NoError(t, m.UpdateGeometry())

	batches := m.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, 4, batches[0].VertexCount())
	assert.Equal(t, 4, batches[1].VertexCount())
	// The skipped fan does not advance z.
	assert.Equal(t, float32(DefaultZOffset), r.host.drawables[1].Positions[2])
}

func TestUpdateGeometry_SingleTriangleCapacity(t *testing.T) {
	r := newRig(t, 1)
	r.region(0, "body", 0)
	m := r.mesh(t, Options{MaxTriangles: 1, ZOffset: DefaultZOffset})

	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	assert.Zero(t, m.Batches()[0].VertexCount())
	assert.False(t, m.Batches()[0].Bound())
}

// foreign is an attachment type the assembler does not know.
type foreign struct {
	*skeleton.PointAttachment
}

func TestUpdateGeometry_RecoversAfterError(t *testing.T) {
	r := newRig(t, 3)
	clip := skeleton.NewClippingAttachment("mask", []float32{-20, -20, 20, -20, 20, 20}, r.sk.Slots[2].Data)
	r.sk.Slots[0].SetAttachment(clip)
	r.sk.Slots[1].SetAttachment(foreign{skeleton.NewPointAttachment("odd", 0, 0, 0)})
	r.region(2, "body", 0)
	m := r.mesh(t, DefaultOptions())

	err := m.UpdateGeometry()
	require.ErrorIs(t, err, ErrUnknownAttachment)
	assert.Contains(t, err.Error(), "slot1")
	assert.Empty(t, m.Batches())
	assert.False(t, m.clipper.IsClipping())
	for _, d := range r.host.drawables {
		assert.False(t, d.Visible)
	}

	r.sk.Slots[1].SetAttachment(nil)
	require.NoError(t, m.UpdateGeometry())
	require.Len(t, m.Batches(), 1)
	assert.Greater(t, m.Batches()[0].VertexCount(), 0)
	assert.True(t, r.host.drawables[0].Visible)
}

func TestUpdate_PosesSkeleton(t *testing.T) {
	r := newRig(t, 1)
	r.region(0, "body", 0)
	m := r.mesh(t, DefaultOptions())

	r.sk.X = 10
	require.NoError(t, m.Update())
	assert.Equal(t, float32(2), r.host.drawables[0].Positions[0])
}

func TestDispose(t *testing.T) {
	r := newRig(t, 2)
	r.region(0, "body", 0)
	r.region(1, "fx", 0)
	m := r.mesh(t, DefaultOptions())
	require.NoError(t, m.UpdateGeometry())

	m.Dispose()
	assert.Zero(t, m.BatchCount())
	assert.Empty(t, m.Batches())
	for _, d := range r.host.drawables {
		assert.True(t, d.Disposed)
	}
}

func TestHostFunc(t *testing.T) {
	var names []string
	host := HostFunc(func(name string) batch.Drawable {
		names = append(names, name)
		return batch.NewMemoryDrawable(name)
	})
	r := newRig(t, 1)
	r.region(0, "body", 0)
	m, err := New("hero", r.sk, host, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, m.UpdateGeometry())
	assert.Equal(t, []string{"hero/batcher_0"}, names)
}

func TestUpdateGeometry_VertexEffectAfterClip(t *testing.T) {
	r := newRig(t, 2)
	clip := skeleton.NewClippingAttachment("mask", []float32{-20, -20, 0, -20, 0, 20, -20, 20}, r.sk.Slots[1].Data)
	r.sk.Slots[0].SetAttachment(clip)
	r.region(1, "body", 0)
	m := r.mesh(t, DefaultOptions())

	calls := 0
	m.VertexEffect = func(v Vertex) Vertex {
		calls++
		assert.LessOrEqual(t, v.Position.X, float32(1e-4), "effect sees clipped positions")
		assert.InDelta(t, (v.Position.X+8)/64, v.UV.X, 1e-5, "effect sees interpolated uvs")
		v.Position.X += 1000
		return v
	}

	require.NoError(t, m.UpdateGeometry())

	require.Len(t, m.Batches(), 1)
	vc := m.Batches()[0].VertexCount()
	require.Greater(t, vc, 0)
	assert.Equal(t, vc, calls)

	d := r.host.drawables[0]
	for v := 0; v < vc; v++ {
		x := d.Positions[v*3]
		assert.GreaterOrEqual(t, x, float32(992-1e-3))
		assert.LessOrEqual(t, x, float32(1000+1e-3))
		assert.InDelta(t, (x-1000+8)/64, d.UVs[v*2], 1e-4)
	}
}

func TestUpdateGeometry_ClipEndingOnItsOwnSlot(t *testing.T) {
	r := newRig(t, 2)
	clip := skeleton.NewClippingAttachment("mask", []float32{-20, -20, 0, -20, 0, 20, -20, 20}, r.sk.Slots[0].Data)
	r.sk.Slots[0].SetAttachment(clip)
	r.region(1, "body", 0)
	m := r.mesh(t, DefaultOptions())

	require.NoError(t, m.UpdateGeometry())

	require.Len(t, m.Batches(), 1)
	d := r.host.drawables[0]
	vc := m.Batches()[0].VertexCount()
	require.Greater(t, vc, 0)
	for v := 0; v < vc; v++ {
		assert.LessOrEqual(t, d.Positions[v*3], float32(1e-4), "the region is clipped")
	}
	assert.False(t, m.clipper.IsClipping())
}
