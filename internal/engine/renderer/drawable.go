package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
)

// stride is the interleaved vertex size in floats: position 3, color 4, uv 2.
const stride = batch.VertexSize

// Drawable holds one batch on the GPU. GL objects are created on the first Apply.
type Drawable struct {
	name string

	vao, vbo, ebo uint32

	interleaved []float32
	indexCount  int32

	texture   texture.Handle
	blend     texture.BlendMode
	depthBias float32
	visible   bool
}

// Name returns the drawable name.
func (d *Drawable) Name() string { return d.name }

// DepthBias returns the bias of the uploaded batch.
func (d *Drawable) DepthBias() float32 { return d.depthBias }

// Apply uploads data. A GL context must be current.
func (d *Drawable) Apply(data *batch.VertexData) {
	d.texture = data.Texture
	d.blend = data.Blend
	d.depthBias = data.DepthBias
	d.indexCount = int32(len(data.Indices))

	n := data.VertexCount()
	d.interleaved = d.interleaved[:0]
	for i := 0; i < n; i++ {
		d.interleaved = append(d.interleaved,
			data.Positions[i*3], data.Positions[i*3+1], data.Positions[i*3+2],
			data.Colors[i*4], data.Colors[i*4+1], data.Colors[i*4+2], data.Colors[i*4+3],
			data.UVs[i*2], data.UVs[i*2+1],
		)
	}
	if n == 0 || d.indexCount == 0 {
		return
	}

	if d.vao == 0 {
		d.createBuffers()
	}
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.interleaved)*4, unsafe.Pointer(&d.interleaved[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*2, unsafe.Pointer(&data.Indices[0]), gl.DYNAMIC_DRAW)
	gl.BindVertexArray(0)
}

func (d *Drawable) createBuffers() {
	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.GenBuffers(1, &d.ebo)

	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride*4, gl.PtrOffset(7*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
}

// SetVisible shows or hides the drawable.
func (d *Drawable) SetVisible(visible bool) {
	d.visible = visible
}

// Visible reports whether the drawable is shown.
func (d *Drawable) Visible() bool { return d.visible }

// Dispose deletes the GL objects.
func (d *Drawable) Dispose() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.ebo != 0 {
		gl.DeleteBuffers(1, &d.ebo)
		d.ebo = 0
	}
	d.interleaved = nil
	d.texture = nil
	d.visible = false
}

// draw issues the draw call. The program and projection are already bound.
func (d *Drawable) draw() error {
	if !d.visible || d.indexCount == 0 || d.vao == 0 {
		return nil
	}
	src, dst, err := BlendFactors(d.blend)
	if err != nil {
		return err
	}
	gl.BlendFunc(src, dst)

	if tex, ok := d.texture.(*Texture); ok {
		gl.BindTexture(gl.TEXTURE_2D, tex.ID)
	}
	gl.BindVertexArray(d.vao)
	gl.DrawElements(gl.TRIANGLES, d.indexCount, gl.UNSIGNED_SHORT, nil)
	return nil
}
