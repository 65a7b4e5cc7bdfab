package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/config"
	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/skeleton"
	"github.com/Faultbox/midgard-spine/internal/engine/skelmesh"
	"github.com/Faultbox/midgard-spine/internal/engine/texture"
	"github.com/Faultbox/midgard-spine/internal/logger"
	"github.com/Faultbox/midgard-spine/pkg/formats"
)

// report summarizes one visible batch after a geometry pass.
type report struct {
	Frame     int
	Name      string
	Texture   string
	Blend     texture.BlendMode
	Vertices  int
	Indices   int
	DepthBias float32
}

// run loads the configured skeleton and runs cfg.Input.Frames geometry passes
// over in-memory drawables.
func run(cfg *config.Config) ([]report, error) {
	doc, err := formats.LoadSkeleton(cfg.Input.Skeleton)
	if err != nil {
		return nil, err
	}

	sk, atlas, err := skeleton.Build(doc, pageLoader(filepath.Dir(cfg.Input.Skeleton)))
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", doc.Name, err)
	}
	defer atlas.Dispose()

	host := skelmesh.HostFunc(func(name string) batch.Drawable {
		return batch.NewMemoryDrawable(name)
	})

	mesh, err := skelmesh.New(doc.Name, sk, host, cfg.Batching.Options())
	if err != nil {
		return nil, err
	}
	defer mesh.Dispose()

	mesh.VertexEffect = cfg.Effect.VertexEffect()

	var reports []report
	for frame := 0; frame < cfg.Input.Frames; frame++ {
		if err := mesh.Update(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", frame, err)
		}
		for _, b := range mesh.Batches() {
			reports = append(reports, summarize(frame, b))
		}
	}
	return reports, nil
}

func summarize(frame int, b *batch.Batch) report {
	r := report{Frame: frame, Name: b.Name(), Blend: b.Blend()}
	if d, ok := b.Drawable().(*batch.MemoryDrawable); ok {
		r.Vertices = d.VertexCount()
		r.Indices = len(d.Indices)
		r.DepthBias = d.DepthBias
		if d.Texture != nil {
			r.Texture = fmt.Sprint(d.Texture)
		}
	}
	return r
}

// pageLoader sizes page textures from the image next to the document when
// one exists, and falls back to the declared page size otherwise.
func pageLoader(dir string) skeleton.TextureLoader {
	log := logger.Named("pages")
	return func(page *texture.Page) (texture.Handle, error) {
		width, height := page.Width, page.Height
		img, err := texture.LoadImage(filepath.Join(dir, page.Name))
		switch {
		case err == nil:
			width, height = img.Bounds().Dx(), img.Bounds().Dy()
			if width != page.Width || height != page.Height {
				log.Warn("page image size differs from atlas",
					zap.String("page", page.Name),
					zap.Int("width", width), zap.Int("height", height))
			}
		case errors.Is(err, fs.ErrNotExist):
			log.Debug("page image missing, using declared size", zap.String("page", page.Name))
		default:
			return nil, err
		}
		return texture.NewMemoryTexture(page.Name, width, height), nil
	}
}
