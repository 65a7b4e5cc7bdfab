package skelmesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/clipping"
	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/pkg/math"
)

// clipStride is the world vertex stride while clipping: positions only.
const clipStride = 2

// assembler is the state of one geometry pass.
type assembler struct {
	mesh    *SkeletonMesh
	clipper *clipping.Clipper
	effect  VertexEffect

	batch *batch.Batch
	next  int

	z       float32
	zOffset float32
}

// geometry is a resolved textured attachment before tinting.
type geometry struct {
	vertices  []float32
	triangles []uint16
	uvs       []float32
	texture   texture.Handle
	color     skeleton.Color
	stride    int
}

func (a *assembler) run() error {
	a.clipper.ClipEnd()
	if err := a.open(); err != nil {
		return err
	}

	sk := a.mesh.skeleton
	for _, slot := range sk.DrawOrder {
		if !slot.Bone.Active {
			a.clipper.ClipEndWithSlot(slot)
			continue
		}

		// A clip starting on its own end slot stays active for the slots after it.
		if clip, ok := slot.Attachment().(*skeleton.ClippingAttachment); ok {
			a.clipper.ClipStart(slot, clip)
			continue
		}

		g, ok, err := a.resolve(slot)
		if err != nil {
			return err
		}
		if ok {
			if err := a.emit(sk, slot, g); err != nil {
				return err
			}
		}
		a.clipper.ClipEndWithSlot(slot)
	}

	a.clipper.ClipEnd()
	a.batch.End()
	return nil
}

// resolve computes world vertices of the slot's attachment into the scratch
// buffer. It reports false for attachments that draw nothing.
func (a *assembler) resolve(slot *skeleton.Slot) (geometry, bool, error) {
	stride := batch.InputVertexSize
	if a.clipper.IsClipping() {
		stride = clipStride
	}

	switch att := slot.Attachment().(type) {
	case *skeleton.RegionAttachment:
		vertices := a.mesh.scratch.floats(4 * stride)
		att.ComputeWorldVertices(slot.Bone, vertices, 0, stride)
		return geometry{
			vertices:  vertices,
			triangles: skeleton.QuadTriangles,
			uvs:       att.UVs[:],
			texture:   att.Texture(),
			color:     att.Color,
			stride:    stride,
		}, att.Texture() != nil, nil

	case *skeleton.MeshAttachment:
		vertices := a.mesh.scratch.floats(att.WorldVerticesLength / 2 * stride)
		att.ComputeWorldVertices(slot, 0, att.WorldVerticesLength, vertices, 0, stride)
		return geometry{
			vertices:  vertices,
			triangles: att.Triangles,
			uvs:       att.UVs,
			texture:   att.Texture(),
			color:     att.Color,
			stride:    stride,
		}, att.Texture() != nil, nil

	case *skeleton.ClippingAttachment, *skeleton.PointAttachment, *skeleton.BoundingBoxAttachment, nil:
		return geometry{}, false, nil

	default:
		return geometry{}, false, fmt.Errorf("slot %s: %w %T", slot.Data.Name, ErrUnknownAttachment, att)
	}
}

// emit tints, clips and transforms g, then appends it to the open batch.
func (a *assembler) emit(sk *skeleton.Skeleton, slot *skeleton.Slot, g geometry) error {
	light := sk.Color.Mul(slot.Color).Mul(g.color)

	var (
		vertices []float32
		indices  []uint16
	)
	if a.clipper.IsClipping() {
		a.clipper.ClipTriangles(g.vertices, g.triangles, g.uvs, light)
		vertices, indices = a.clipper.ClippedVertices(), a.clipper.ClippedTriangles()
	} else {
		for v, u := 0, 0; v < len(g.vertices); v, u = v+g.stride, u+2 {
			g.vertices[v+2] = light.R
			g.vertices[v+3] = light.G
			g.vertices[v+4] = light.B
			g.vertices[v+5] = light.A
			g.vertices[v+6] = g.uvs[u]
			g.vertices[v+7] = g.uvs[u+1]
		}
		vertices, indices = g.vertices, g.triangles
	}

	if len(vertices) == 0 || len(indices) == 0 {
		return nil
	}
	if a.effect != nil {
		a.transform(vertices, light)
	}

	count := len(vertices) / batch.InputVertexSize
	if !a.batch.Fits(count, len(indices)) {
		a.mesh.log.Warn("attachment larger than a batch, skipped",
			zap.String("slot", slot.Data.Name),
			zap.Int("vertices", count),
			zap.Int("indices", len(indices)),
			zap.Int("max_vertices", a.batch.MaxVertices()),
			zap.Int("max_indices", a.batch.MaxIndices()),
		)
		return nil
	}
	if !a.batch.CanAccept(count, len(indices)) && a.batch.VertexCount() > 0 {
		if err := a.split(); err != nil {
			return err
		}
	}

	blend := slot.Data.BlendMode
	switch {
	case !a.batch.Bound():
		a.batch.Bind(g.texture, blend)
	case !a.batch.Matches(g.texture, blend, a.mesh.splitByBlend):
		if err := a.split(); err != nil {
			return err
		}
		a.batch.Bind(g.texture, blend)
	}

	if err := a.batch.Append(vertices, indices, a.z); err != nil {
		return fmt.Errorf("slot %s: %w", slot.Data.Name, err)
	}
	a.z += a.zOffset
	return nil
}

// transform runs the vertex effect over vertices laid out as x, y, r, g, b, a, u, v.
func (a *assembler) transform(vertices []float32, light skeleton.Color) {
	for v := 0; v < len(vertices); v += batch.InputVertexSize {
		out := a.effect(Vertex{
			Position: math.V2(vertices[v], vertices[v+1]),
			UV:       math.V2(vertices[v+6], vertices[v+7]),
			Light:    light,
			Dark:     skeleton.ColorTransparent,
		})
		vertices[v], vertices[v+1] = out.Position.X, out.Position.Y
		vertices[v+2], vertices[v+3] = out.Light.R, out.Light.G
		vertices[v+4], vertices[v+5] = out.Light.B, out.Light.A
		vertices[v+6], vertices[v+7] = out.UV.X, out.UV.Y
	}
}

// open reveals the next pool batch and begins it.
func (a *assembler) open() error {
	b, err := a.mesh.batchAt(a.next)
	if err != nil {
		return err
	}
	a.next++
	b.SetVisible(true)
	b.Begin()
	a.batch = b
	return nil
}

// split closes the open batch and opens the next one.
func (a *assembler) split() error {
	a.batch.End()
	return a.open()
}
