// Package skelmesh turns a posed skeleton into an ordered list of batches,
// one draw call each.
//
// Every frame the draw order is walked once. Region and mesh attachments are
// transformed to world space, tinted, optionally clipped and passed through
// the vertex effect, then appended to the open batch. A new batch is opened
// when the open one is full or bound to another texture (or blend mode).
// Batches are pooled for the lifetime of the mesh.
package skelmesh

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/clipping"
	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/internal/logger"
)

// ErrUnknownAttachment is returned for an attachment type the assembler does not handle.
var ErrUnknownAttachment = errors.New("unknown attachment type")

// DefaultZOffset is the depth step between consecutive attachments.
const DefaultZOffset = -0.1

// Host creates the drawables batches upload into.
type Host interface {
	NewDrawable(name string) batch.Drawable
}

// HostFunc adapts a function to Host.
type HostFunc func(name string) batch.Drawable

// NewDrawable calls f.
func (f HostFunc) NewDrawable(name string) batch.Drawable {
	return f(name)
}

// Options configures a SkeletonMesh.
type Options struct {
	// MaxTriangles is the capacity of each batch, 1..batch.MaxTrianglesLimit.
	MaxTriangles int
	// ZOffset is added to z after every appended attachment.
	ZOffset float32
	// Depth is the parent depth mixed into each batch's depth bias.
	Depth int
	// SplitByBlend opens a new batch when the slot blend mode changes.
	SplitByBlend bool
}

// DefaultOptions returns the options used by the runtime.
func DefaultOptions() Options {
	return Options{
		MaxTriangles: batch.DefaultMaxTriangles,
		ZOffset:      DefaultZOffset,
		SplitByBlend: true,
	}
}

// SkeletonMesh owns the batch pool of one skeleton.
type SkeletonMesh struct {
	id       uuid.UUID
	name     string
	skeleton *skeleton.Skeleton
	host     Host

	maxTriangles int
	depth        int
	splitByBlend bool

	// ZOffset is the z step between attachments. It is read at the start of each pass.
	ZOffset float32

	// VertexEffect, if set, transforms every emitted vertex.
	VertexEffect VertexEffect

	batches []*batch.Batch
	used    int

	clipper *clipping.Clipper
	scratch scratch
	log     *zap.Logger
}

// New creates a mesh for sk. Batches are created through host on demand.
func New(name string, sk *skeleton.Skeleton, host Host, opts Options) (*SkeletonMesh, error) {
	if opts.MaxTriangles == 0 {
		opts.MaxTriangles = batch.DefaultMaxTriangles
	}
	if err := batch.ValidateCapacity(opts.MaxTriangles); err != nil {
		return nil, fmt.Errorf("skeleton mesh %s: %w", name, err)
	}
	if sk == nil {
		return nil, fmt.Errorf("skeleton mesh %s: nil skeleton", name)
	}
	if host == nil {
		return nil, fmt.Errorf("skeleton mesh %s: nil host", name)
	}

	id := uuid.New()
	return &SkeletonMesh{
		id:           id,
		name:         name,
		skeleton:     sk,
		host:         host,
		maxTriangles: opts.MaxTriangles,
		depth:        opts.Depth,
		splitByBlend: opts.SplitByBlend,
		ZOffset:      opts.ZOffset,
		clipper:      clipping.New(),
		scratch:      newScratch(1024),
		log:          logger.Named("skelmesh").With(zap.String("mesh", name), zap.Stringer("id", id)),
	}, nil
}

// ID returns the unique id of the mesh.
func (m *SkeletonMesh) ID() uuid.UUID { return m.id }

// Name returns the mesh name.
func (m *SkeletonMesh) Name() string { return m.name }

// Skeleton returns the rendered skeleton.
func (m *SkeletonMesh) Skeleton() *skeleton.Skeleton { return m.skeleton }

// SetDepth sets the parent depth of all current and future batches.
func (m *SkeletonMesh) SetDepth(depth int) {
	m.depth = depth
	for _, b := range m.batches {
		b.SetDepth(depth)
	}
}

// Update poses the skeleton and rebuilds the geometry.
func (m *SkeletonMesh) Update() error {
	m.skeleton.UpdateWorldTransform()
	return m.UpdateGeometry()
}

// UpdateGeometry rebuilds all batches from the current pose. On error the
// frame is dropped: every batch is hidden and the next call starts clean.
func (m *SkeletonMesh) UpdateGeometry() error {
	m.clearBatches()

	a := assembler{
		mesh:    m,
		clipper: m.clipper,
		zOffset: m.ZOffset,
		effect:  m.VertexEffect,
	}
	if err := a.run(); err != nil {
		m.clipper.ClipEnd()
		m.clearBatches()
		m.log.Warn("geometry update failed", zap.Error(err))
		return err
	}
	m.used = a.next
	return nil
}

// Batches returns the batches filled by the last update, in draw order.
// The slice is owned by the mesh.
func (m *SkeletonMesh) Batches() []*batch.Batch {
	return m.batches[:m.used]
}

// BatchCount returns the size of the pool, visible or not.
func (m *SkeletonMesh) BatchCount() int {
	return len(m.batches)
}

// Dispose releases every batch. The mesh must not be used afterwards.
func (m *SkeletonMesh) Dispose() {
	for _, b := range m.batches {
		b.Dispose()
	}
	m.batches = nil
	m.used = 0
}

// clearBatches recycles the whole pool.
func (m *SkeletonMesh) clearBatches() {
	for _, b := range m.batches {
		b.Clear()
		b.SetVisible(false)
	}
	m.used = 0
}

// batchAt returns pool entry i, creating it if the pool is exactly i long.
func (m *SkeletonMesh) batchAt(i int) (*batch.Batch, error) {
	if i < len(m.batches) {
		return m.batches[i], nil
	}
	name := fmt.Sprintf("%s/batcher_%d", m.name, i)
	b, err := batch.New(name, m.host.NewDrawable(name), m.maxTriangles)
	if err != nil {
		return nil, err
	}
	b.SetDepth(m.depth)
	m.batches = append(m.batches, b)
	m.log.Debug("batch pool grown", zap.String("batch", name), zap.Int("size", len(m.batches)))
	return b, nil
}

// scratch is the world vertex buffer. It grows to the largest attachment
// seen and is never shrunk.
type scratch struct {
	buf []float32
}

func newScratch(n int) scratch {
	return scratch{buf: make([]float32, n)}
}

func (s *scratch) floats(n int) []float32 {
	if cap(s.buf) < n {
		s.buf = make([]float32, n)
	}
	return s.buf[:n]
}
