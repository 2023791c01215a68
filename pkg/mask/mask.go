// Package mask builds full-canvas layer masks from layer bounds and commits
// them through the host's imaging primitives.
package mask

import (
	"context"
	"fmt"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

const white byte = 255

// Synthesize returns a docWidth*docHeight single-channel buffer that is white
// inside b and black everywhere else. b must lie within the canvas; it is not
// checked here.
func Synthesize(b layer.Bounds, docWidth, docHeight int) []byte {
	buf := make([]byte, docWidth*docHeight) // zeroed: black

	rowSize := b.Right - b.Left
	whiteRow := make([]byte, rowSize)
	for i := range whiteRow {
		whiteRow[i] = white
	}

	for y := b.Top; y < b.Bottom; y++ {
		off := y*docWidth + b.Left
		copy(buf[off:off+rowSize], whiteRow)
	}
	return buf
}

// CreateMaskFromBounds synthesizes node's mask on doc's canvas and commits it
// as node's layer mask. The host image data is disposed on every path.
func CreateMaskFromBounds(ctx context.Context, doc host.Document, imaging host.Imaging, node *layer.Node) error {
	w, h := doc.Width(), doc.Height()
	buf := Synthesize(node.Bounds, w, h)

	data, err := imaging.CreateImageData(ctx, buf, host.ImageDataOptions{
		Width:      w,
		Height:     h,
		Components: 1,
		ColorSpace: host.Grayscale,
	})
	if err != nil {
		return fmt.Errorf("create mask image data for %q: %w", node.Name, err)
	}
	defer data.Dispose()

	if err := imaging.PutLayerMask(ctx, node.ID, data); err != nil {
		return fmt.Errorf("apply mask to %q: %w", node.Name, err)
	}
	return nil
}
