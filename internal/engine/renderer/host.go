// Package renderer draws skeleton batches with OpenGL 4.1.
//
// Host implements skelmesh.Host: every batch of a SkeletonMesh uploads into a
// Drawable created here, and Draw renders a mesh's batches in draw order.
// All calls need the host's GL context to be current.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/shader"
	"github.com/Faultbox/midgard-spine/internal/engine/skelmesh"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/internal/logger"
	"github.com/Faultbox/midgard-spine/pkg/math"
)

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;
layout (location = 2) in vec2 aUV;

uniform mat4 uProjection;

out vec4 vColor;
out vec2 vUV;

void main() {
	vColor = aColor;
	vUV = aUV;
	gl_Position = uProjection * vec4(aPos, 1.0);
}
`

const fragmentShader = `
#version 410 core

in vec4 vColor;
in vec2 vUV;

uniform sampler2D uTexture;
uniform float uAlphaTest;

out vec4 FragColor;

void main() {
	FragColor = texture(uTexture, vUV) * vColor;
	if (FragColor.a < uAlphaTest) {
		discard;
	}
}
`

var (
	_ skelmesh.Host  = (*Host)(nil)
	_ batch.Drawable = (*Drawable)(nil)
	_ texture.Handle = (*Texture)(nil)
)

// Host owns the skeleton shader and the drawables of all batches.
type Host struct {
	program    *shader.Program
	drawables  []*Drawable
	projection math.Mat4

	// AlphaTest discards fragments with a lower alpha. Zero disables it.
	AlphaTest float32
	// Background is the clear color used by BeginFrame.
	Background [4]float32

	log *zap.Logger
}

// New initializes GL function pointers and compiles the skeleton shader.
func New() (*Host, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init OpenGL: %w", err)
	}
	log := logger.Named("renderer")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("skeleton shader: %w", err)
	}
	return &Host{
		program:    program,
		projection: math.Identity(),
		Background: [4]float32{0.15, 0.15, 0.2, 1},
		log:        log,
	}, nil
}

// NewDrawable creates an empty drawable for a batch.
func (h *Host) NewDrawable(name string) batch.Drawable {
	d := &Drawable{name: name}
	h.drawables = append(h.drawables, d)
	h.log.Debug("drawable created", zap.String("name", name), zap.Int("count", len(h.drawables)))
	return d
}

// SetProjection sets the matrix applied to every vertex.
func (h *Host) SetProjection(m math.Mat4) {
	h.projection = m
}

// BeginFrame sets the viewport and clears the framebuffer to Background.
func (h *Host) BeginFrame(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(h.Background[0], h.Background[1], h.Background[2], h.Background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders the visible batches in order. Depth testing is disabled;
// later batches are drawn over earlier ones.
func (h *Host) Draw(batches []*batch.Batch) error {
	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	gl.Enable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	h.program.Use()
	gl.UniformMatrix4fv(h.program.Uniform("uProjection"), 1, false, h.projection.Ptr())
	gl.Uniform1i(h.program.Uniform("uTexture"), 0)
	gl.Uniform1f(h.program.Uniform("uAlphaTest"), h.AlphaTest)
	gl.ActiveTexture(gl.TEXTURE0)

	var err error
	for _, b := range batches {
		if !b.Visible() {
			continue
		}
		d, ok := b.Drawable().(*Drawable)
		if !ok {
			err = fmt.Errorf("batch %s: drawable not created by this host", b.Name())
			break
		}
		if err = d.draw(); err != nil {
			err = fmt.Errorf("batch %s: %w", b.Name(), err)
			break
		}
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
	return err
}

// Close releases all drawables and the shader.
func (h *Host) Close() {
	for _, d := range h.drawables {
		d.Dispose()
	}
	h.drawables = nil
	if h.program != nil {
		h.program.Delete()
	}
	h.log.Info("renderer closed")
}
