package docfile

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

func interpolator(method host.ResampleMethod) (draw.Interpolator, error) {
	switch method {
	case host.Bilinear:
		return draw.BiLinear, nil
	case host.NearestNeighbor:
		return draw.NearestNeighbor, nil
	case host.Bicubic:
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unsupported resample method %q", method)
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func decodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// resampleGray scales a PNG-encoded mask to w×h.
func resampleGray(data []byte, w, h int, interp draw.Interpolator) ([]byte, error) {
	src, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return encodePNG(dst)
}

// resampleRGBA scales a PNG-encoded layer raster to w×h.
func resampleRGBA(data []byte, w, h int, interp draw.Interpolator) ([]byte, error) {
	src, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return encodePNG(dst)
}

// scaleBounds maps b from the old canvas onto the new one. A non-empty
// rectangle stays at least one pixel wide and high.
func scaleBounds(b layer.Bounds, sx, sy float64, w, h int) layer.Bounds {
	if b.Empty() {
		return layer.Bounds{}
	}
	out := layer.Bounds{
		Left:   int(float64(b.Left) * sx),
		Top:    int(float64(b.Top) * sy),
		Right:  int(float64(b.Right)*sx + 0.5),
		Bottom: int(float64(b.Bottom)*sy + 0.5),
	}
	out.Left = min(out.Left, w-1)
	out.Top = min(out.Top, h-1)
	out.Right = min(max(out.Right, out.Left+1), w)
	out.Bottom = min(max(out.Bottom, out.Top+1), h)
	return out
}

// composite paints the pixel rasters of layers (top of the list is the top
// of the stack) onto one RGBA image covering area.
func composite(layers []*Layer, area layer.Bounds) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, area.Width(), area.Height()))
	painted := false
	if err := paint(dst, layers, area, &painted); err != nil {
		return nil, err
	}
	if !painted {
		return nil, nil
	}
	return encodePNG(dst)
}

func paint(dst *image.RGBA, layers []*Layer, area layer.Bounds, painted *bool) error {
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if len(l.Children) > 0 {
			if err := paint(dst, l.Children, area, painted); err != nil {
				return err
			}
			continue
		}
		if len(l.Pixels) == 0 || l.Bounds.Empty() {
			continue
		}
		src, err := decodePNG(l.Pixels)
		if err != nil {
			return fmt.Errorf("layer %q: %w", l.Name, err)
		}
		r := image.Rect(
			l.Bounds.Left-area.Left, l.Bounds.Top-area.Top,
			l.Bounds.Right-area.Left, l.Bounds.Bottom-area.Top,
		)
		draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
		*painted = true
	}
	return nil
}
