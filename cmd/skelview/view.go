package main

import (
	"fmt"
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/config"
	"github.com/Faultbox/midgard-spine/internal/engine/renderer"
	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/internal/engine/skelmesh"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/internal/engine/window"
	"github.com/Faultbox/midgard-spine/internal/logger"
	"github.com/Faultbox/midgard-spine/pkg/formats"
	"github.com/Faultbox/midgard-spine/pkg/math"
)

// Depth range of the view volume. Attachments step away from the viewer by
// the z offset, so a few thousand of them stay inside it.
const (
	viewNear = -1000
	viewFar  = 1000
)

// run opens the window and draws the configured skeleton until it is closed.
func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:  "skelview",
		Width:  cfg.View.Width,
		Height: cfg.View.Height,
		VSync:  cfg.View.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	host, err := renderer.New()
	if err != nil {
		return err
	}
	defer host.Close()

	doc, err := formats.LoadSkeleton(cfg.Input.Skeleton)
	if err != nil {
		return err
	}
	dir := filepath.Dir(cfg.Input.Skeleton)
	sk, atlas, err := skeleton.Build(doc, func(page *texture.Page) (texture.Handle, error) {
		return renderer.LoadPage(dir, page)
	})
	if err != nil {
		return fmt.Errorf("building %s: %w", doc.Name, err)
	}
	defer atlas.Dispose()

	mesh, err := skelmesh.New(doc.Name, sk, host, cfg.Batching.Options())
	if err != nil {
		return err
	}
	defer mesh.Dispose()

	effect := cfg.Effect.VertexEffect()
	mesh.VertexEffect = effect
	win.SetTitle(fmt.Sprintf("skelview - %s", doc.Name))

	log := logger.Named("skelview").With(zap.String("skeleton", doc.Name))
	onKey := func(key sdl.Keycode) {
		if key != sdl.K_SPACE || effect == nil {
			return
		}
		if mesh.VertexEffect == nil {
			mesh.VertexEffect = effect
		} else {
			mesh.VertexEffect = nil
		}
		log.Info("vertex effect toggled", zap.Bool("enabled", mesh.VertexEffect != nil))
	}

	batches := -1
	for win.PollEvents(onKey) {
		if err := mesh.Update(); err != nil {
			log.Warn("frame dropped", zap.Error(err))
		}
		if n := len(mesh.Batches()); n != batches {
			batches = n
			log.Debug("batch count changed", zap.Int("batches", n), zap.Int("pool", mesh.BatchCount()))
		}

		width, height := win.Size()
		host.SetProjection(projection(width, height))
		host.BeginFrame(width, height)
		if err := host.Draw(mesh.Batches()); err != nil {
			return err
		}
		win.SwapBuffers()
	}
	return nil
}

// projection maps skeleton space to the window. The skeleton origin sits
// centred, a quarter of the height above the bottom edge, with y up.
func projection(width, height int) math.Mat4 {
	w, h := float32(width), float32(height)
	return math.Ortho(-w/2, w/2, -h/4, h*3/4, viewNear, viewFar)
}
