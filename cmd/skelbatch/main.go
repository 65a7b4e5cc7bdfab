// Package main is the entry point for skelbatch, which loads a posed
// skeleton and reports the draw batches it produces.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-spine/internal/config"
	"github.com/Faultbox/midgard-spine/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== skelbatch ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	reports, err := run(cfg)
	if err != nil {
		logger.Error("batching failed", zap.Error(err))
		os.Exit(1)
	}

	for _, r := range reports {
		logger.Info("batch",
			zap.Int("frame", r.Frame),
			zap.String("name", r.Name),
			zap.String("texture", r.Texture),
			zap.Stringer("blend", r.Blend),
			zap.Int("vertices", r.Vertices),
			zap.Int("indices", r.Indices),
			zap.Float32("depth_bias", r.DepthBias),
		)
	}
	logger.Info("done", zap.Int("frames", cfg.Input.Frames), zap.Int("batches", len(reports)))
}
