//go:build !cgo

package hal

import "context"

// WindowConfig controls the desktop window host.
type WindowConfig struct {
	Title         string
	Width, Height int
	TPS           int
	OnFailure     FailureFunc
}

func RunWindow(context.Context, NewApp, WindowConfig) error {
	return ErrNoWindow
}
