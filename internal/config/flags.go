package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagSkeleton     = flag.String("skeleton", "", "Path to skeleton document")
	flagFrames       = flag.Int("frames", 0, "Number of geometry passes")
	flagMaxTriangles = flag.Int("max-triangles", 0, "Triangles per batch (1..10920)")
	flagEffect       = flag.String("effect", "", "Vertex effect: none, jitter or swirl")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSkeleton != "" {
		cfg.Input.Skeleton = *flagSkeleton
	}
	if *flagFrames > 0 {
		cfg.Input.Frames = *flagFrames
	}
	if *flagMaxTriangles != 0 {
		cfg.Batching.MaxTriangles = *flagMaxTriangles
	}
	switch *flagEffect {
	case "":
	case "none":
		cfg.Effect.Kind = EffectNone
	default:
		cfg.Effect.Kind = *flagEffect
	}
}
