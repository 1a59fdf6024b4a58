package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int    // refresh opportunities per second; 60
	Ticks uint64 // 0 runs until ctx is done

	Width, Height int // initial viewport; 640x360
	Resizes       []ResizeStep

	// Fast steps without waiting for the ticker. The clock handed to the app
	// still advances one period per tick.
	Fast bool
	// DrainLoad keeps ticking past Ticks while the app is loading.
	DrainLoad bool

	Out       string // PNG written when the run ends
	OnFailure FailureFunc
	Origin    time.Time // clock at tick 0; time.Now()
}

// RunHeadless runs the app without opening a window.
func RunHeadless(ctx context.Context, newApp NewApp, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 360
	}
	if cfg.Origin.IsZero() {
		cfg.Origin = time.Now()
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	app, err := newApp(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	clock := newTickClock(cfg.Origin, d)
	if err := app.Start(ctx, clock.now()); err != nil {
		return err
	}

	var refresh <-chan time.Time
	if !cfg.Fast {
		t := time.NewTicker(d)
		defer t.Stop()
		refresh = t.C
	}

	err = runTicks(ctx, app, clock, refresh, cfg)
	if err != nil && !errors.Is(err, context.Canceled) && cfg.OnFailure != nil {
		cfg.OnFailure(app.Surface(), err)
	}
	if cfg.Out != "" {
		if werr := WritePNG(cfg.Out, app.Surface()); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}

func runTicks(ctx context.Context, app App, clock *tickClock, refresh <-chan time.Time, cfg HeadlessConfig) error {
	resizes := cfg.Resizes
	for tick := uint64(0); ; tick++ {
		draining := false
		if cfg.Ticks > 0 && tick >= cfg.Ticks {
			if !cfg.DrainLoad || !app.Loading() {
				return nil
			}
			draining = true
		}

		if refresh != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-refresh:
			}
		} else {
			if err := ctx.Err(); err != nil {
				return err
			}
			if draining {
				time.Sleep(time.Millisecond)
			}
		}

		for len(resizes) > 0 && resizes[0].Tick <= tick {
			app.Resize(resizes[0].Width, resizes[0].Height)
			resizes = resizes[1:]
		}
		if err := app.Step(clock.step()); err != nil {
			return err
		}
	}
}
