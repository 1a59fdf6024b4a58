// Package hal hosts an App: it owns the refresh cadence, the viewport size
// and user input, and presents the App's surface.
package hal

import (
	"context"
	"errors"
	"image"
	"time"
)

var ErrNoWindow = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

// App is what a host drives. All methods are called from one goroutine.
type App interface {
	// Start runs once before the first Step.
	Start(ctx context.Context, now time.Time) error
	// Step is called at every refresh opportunity.
	Step(now time.Time) error
	Resize(width, height int)
	Surface() *image.RGBA
	// Loading reports outstanding asset work.
	Loading() bool
}

// Controls is implemented by apps that accept pointer and key input.
type Controls interface {
	Orbit(dx, dy float32)
	Pan(dx, dy float32)
	Zoom(notches float32)
	ToggleWireframe()
	ToggleStats()
	ResetView()
}

// NewApp builds the app for the initial viewport.
type NewApp func(width, height int) (App, error)

// FailureFunc paints err over dst after a Step fails.
type FailureFunc func(dst *image.RGBA, err error)
