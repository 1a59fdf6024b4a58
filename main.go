package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"osmview/hal"
	"osmview/internal/buildinfo"
	"osmview/loader"
	"osmview/softgl"
	"osmview/viewer"
)

func main() {
	var (
		hcfg     hal.HeadlessConfig
		vcfg     viewer.Config
		headless bool
		resizes  string
		logLevel string
		version  bool
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Refresh rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run until interrupted).")
	flag.BoolVar(&hcfg.Fast, "fast", false, "Do not wait for the ticker in headless mode.")
	flag.StringVar(&hcfg.Out, "out", "", "Write the last frame as PNG when a headless run ends.")
	flag.StringVar(&resizes, "resize", "", "Headless viewport changes, e.g. 320x240@10,640x480@20.")
	flag.IntVar(&hcfg.Width, "width", 960, "Initial viewport width.")
	flag.IntVar(&hcfg.Height, "height", 540, "Initial viewport height.")
	flag.StringVar(&vcfg.Asset, "asset", viewer.DefaultAsset, "Mesh to load (path or http(s) URL).")
	flag.BoolVar(&vcfg.UseWorker, "worker", true, "Decode the mesh off the render goroutine.")
	flag.DurationVar(&vcfg.Interval, "interval", 100*time.Millisecond, "Minimum time between frames.")
	flag.IntVar(&vcfg.Workers, "workers", 0, "Raster goroutines (0 = one per CPU).")
	flag.BoolVar(&vcfg.Wireframe, "wireframe", false, "Start in wireframe mode.")
	flag.BoolVar(&vcfg.NoShadows, "no-shadows", false, "Disable the shadow map.")
	flag.StringVar(&logLevel, "log-level", "info", "debug|info|warn|error.")
	flag.BoolVar(&version, "version", false, "Print the version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	softgl.SetLogger(log)
	loader.SetLogger(log)
	log.Info("osmview starting", "version", buildinfo.Short(), "headless", headless)

	newApp := func(w, h int) (hal.App, error) {
		return viewer.New(vcfg, w, h, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if headless {
		steps, err := hal.ParseResizeSteps(resizes)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		hcfg.Resizes = steps
		hcfg.DrainLoad = hcfg.Ticks > 0
		hcfg.OnFailure = viewer.DrawFailure
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	err := hal.RunWindow(ctx, newApp, hal.WindowConfig{
		Title:     "osmview",
		Width:     hcfg.Width,
		Height:    hcfg.Height,
		OnFailure: viewer.DrawFailure,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
