package hal

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// WritePNG writes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("hal: snapshot %s: no surface", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("hal: snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("hal: snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("hal: snapshot %s: %w", path, err)
	}
	return nil
}
