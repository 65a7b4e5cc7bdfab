// Package config loads skelbatch settings.
package config

import (
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/midgard-spine/internal/engine/batch"
	"github.com/Faultbox/midgard-spine/internal/engine/skelmesh"
)

// Effect kinds.
const (
	EffectNone   = ""
	EffectJitter = "jitter"
	EffectSwirl  = "swirl"
)

// Config holds all settings.
type Config struct {
	Batching BatchingConfig `yaml:"batching"`
	Effect   EffectConfig   `yaml:"effect"`
	Input    InputConfig    `yaml:"input"`
	View     ViewConfig     `yaml:"view"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BatchingConfig controls how skeleton geometry is split into batches.
type BatchingConfig struct {
	MaxTriangles int     `yaml:"max_triangles"`
	ZOffset      float32 `yaml:"z_offset"`
	Depth        int     `yaml:"depth"`
	SplitByBlend bool    `yaml:"split_by_blend"`
}

// EffectConfig selects the vertex effect.
type EffectConfig struct {
	Kind string `yaml:"kind"` // "", "jitter" or "swirl"

	JitterX float32 `yaml:"jitter_x"`
	JitterY float32 `yaml:"jitter_y"`

	CenterX float32 `yaml:"center_x"`
	CenterY float32 `yaml:"center_y"`
	Radius  float32 `yaml:"radius"`
	Angle   float32 `yaml:"angle"` // degrees

	Seed uint64 `yaml:"seed"`
}

// InputConfig names the skeleton to process.
type InputConfig struct {
	Skeleton string `yaml:"skeleton"`
	Frames   int    `yaml:"frames"`
}

// ViewConfig holds skelview window settings.
type ViewConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Batching: BatchingConfig{
			MaxTriangles: batch.DefaultMaxTriangles,
			ZOffset:      -0.1,
			Depth:        0,
			SplitByBlend: true,
		},
		Effect: EffectConfig{
			JitterX: 2,
			JitterY: 2,
			Radius:  100,
			Angle:   90,
			Seed:    1,
		},
		Input: InputConfig{
			Skeleton: "skeleton.yaml",
			Frames:   1,
		},
		View: ViewConfig{
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Options returns the mesh options for these settings.
func (b BatchingConfig) Options() skelmesh.Options {
	return skelmesh.Options{
		MaxTriangles: b.MaxTriangles,
		ZOffset:      b.ZOffset,
		Depth:        b.Depth,
		SplitByBlend: b.SplitByBlend,
	}
}

// VertexEffect builds the configured effect, or nil when none is set.
func (e EffectConfig) VertexEffect() skelmesh.VertexEffect {
	switch e.Kind {
	case EffectJitter:
		rng := rand.New(rand.NewPCG(e.Seed, e.Seed))
		return skelmesh.JitterEffect(e.JitterX, e.JitterY, rng)
	case EffectSwirl:
		return skelmesh.SwirlEffect(e.CenterX, e.CenterY, e.Radius, e.Angle)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := batch.ValidateCapacity(c.Batching.MaxTriangles); err != nil {
		return fmt.Errorf("batching.max_triangles: %w", err)
	}
	switch c.Effect.Kind {
	case EffectNone, EffectJitter, EffectSwirl:
	default:
		return fmt.Errorf("effect.kind: unknown effect %q", c.Effect.Kind)
	}
	if c.Effect.Kind == EffectSwirl && c.Effect.Radius <= 0 {
		return fmt.Errorf("effect.radius: must be positive, got %v", c.Effect.Radius)
	}
	if c.Input.Frames < 1 {
		return fmt.Errorf("input.frames: must be at least 1, got %d", c.Input.Frames)
	}
	if c.Input.Skeleton == "" {
		return fmt.Errorf("input.skeleton: path is empty")
	}
	if c.View.Width < 1 || c.View.Height < 1 {
		return fmt.Errorf("view: window size must be positive, got %dx%d", c.View.Width, c.View.Height)
	}
	return nil
}
