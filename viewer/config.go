package viewer

import (
	"runtime"
	"time"

	"osmview/loop"
	"osmview/softgl"
)

// DefaultAsset is loaded when Config.Asset is empty.
const DefaultAsset = "test.ctm"

// Config controls the viewer. Zero values take the defaults noted per field.
type Config struct {
	Asset     string        // file path or http(s) URL; DefaultAsset
	UseWorker bool          // decode on the loader goroutine
	Interval  time.Duration // minimum frame spacing; loop.DefaultInterval
	Workers   int           // raster goroutines; runtime.NumCPU()
	Wireframe bool

	ShadowMapSize int // key light shadow map edge; 2048
	NoShadows     bool
	HideStats     bool

	Model ModelParams
}

// ModelParams places the loaded mesh.
type ModelParams struct {
	Scale     float32 // uniform; 1
	Position  softgl.Vec3
	RotationX float32 // radians
	RotationZ float32 // radians
}

// DefaultModelParams matches where the ground plane sits.
func DefaultModelParams() ModelParams {
	return ModelParams{Scale: 1, Position: softgl.V3(0, -200, 0)}
}

func (c Config) withDefaults() Config {
	if c.Asset == "" {
		c.Asset = DefaultAsset
	}
	if c.Interval <= 0 {
		c.Interval = loop.DefaultInterval
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ShadowMapSize <= 0 {
		c.ShadowMapSize = 2048
	}
	if c.Model == (ModelParams{}) {
		c.Model = DefaultModelParams()
	}
	if c.Model.Scale == 0 {
		c.Model.Scale = 1
	}
	return c
}
