package scene

import (
	"context"
	"fmt"
	"os"
)

// Placeholder background color used when generation is unavailable.
const placeholderColor = "0x1e1e28"

// ImageWriter is the slice of the media encoder needed to prepare
// background frames.
type ImageWriter interface {
	ResizeImage(ctx context.Context, imagePath, outputPath string, width, height int) error
	SolidColorImage(ctx context.Context, outputPath, hexColor string, width, height int) error
}

// UseLocalBackground normalizes a caller-supplied image to the
// canonical frame size.
func UseLocalBackground(ctx context.Context, encoder ImageWriter, imagePath, outputPath string) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("background image not found: %s: %w", imagePath, err)
	}
	return encoder.ResizeImage(ctx, imagePath, outputPath, FrameWidth, FrameHeight)
}

// Placeholder writes a flat dark frame as a stand-in background.
func Placeholder(ctx context.Context, encoder ImageWriter, outputPath string) error {
	return encoder.SolidColorImage(ctx, outputPath, placeholderColor, FrameWidth, FrameHeight)
}
