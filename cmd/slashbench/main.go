// Package main runs the renderer headlessly against a simulated GPU.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/slash/internal/bench"
	"github.com/Faultbox/slash/internal/config"
	"github.com/Faultbox/slash/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	initLog := logger.Init
	if cfg.Logging.JSON && cfg.Logging.LogFile != "" {
		initLog = logger.InitJSON
	}
	if err := initLog(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := bench.Run(ctx, cfg)
	if err != nil {
		logger.Error("bench failed", zap.Error(err), zap.Int("frames", rep.Frames))
		os.Exit(1)
	}

	fmt.Printf("frames=%d objects=%d frame_time=%v visible=%d culled=%d waits=%d wait_time=%v\n",
		rep.Frames, rep.Objects, rep.FrameTime(), rep.Visible, rep.Culled, rep.Waits, rep.WaitTime)
}
