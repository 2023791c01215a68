package docfile

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// ErrNoTransaction is returned by mutating calls made outside RunAsAtomic.
var ErrNoTransaction = errors.New("document changes require an atomic scope")

// Session is an open document. It implements host.Host and host.Document.
//
// The outermost RunAsAtomic snapshots the document and restores it if the
// body fails; nested scopes join the outer one.
type Session struct {
	mu sync.Mutex

	name     string
	doc      *File
	depth    int
	snapshot *File
	history  []string
	live     int
}

var (
	_ host.Host     = (*Session)(nil)
	_ host.Document = (*Session)(nil)
)

// Open loads the document at path. The document is named after the file,
// without a trailing .yaml or .yml: "Photo.psd.yaml" opens as "Photo.psd".
func Open(path string) (*Session, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSession(documentName(path), f), nil
}

func documentName(path string) string {
	name := filepath.Base(path)
	switch ext := filepath.Ext(name); strings.ToLower(ext) {
	case ".yaml", ".yml":
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// NewSession wraps an in-memory document.
func NewSession(name string, f *File) *Session {
	return &Session{name: name, doc: f}
}

// History lists the labels of committed top-level scopes, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// LiveImageData counts image data created and not yet disposed.
func (s *Session) LiveImageData() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// File returns a copy of the current document.
func (s *Session) File() *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.clone()
}

// WriteTo saves the current document to path without renaming the session.
func (s *Session) WriteTo(path string) error {
	return s.File().Write(path)
}

func (s *Session) RunAsAtomic(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.depth == 0 {
		s.snapshot = s.doc.clone()
	}
	s.depth++
	s.mu.Unlock()

	// Runs on panic too, so a failed body never leaves the scope open.
	committed := false
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.depth--
		if s.depth > 0 {
			return
		}
		if committed {
			s.history = append(s.history, label)
		} else {
			s.doc = s.snapshot
		}
		s.snapshot = nil
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Session) ActiveDocument() (host.Document, error) {
	return s, nil
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Width
}

func (s *Session) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Height
}

func (s *Session) Layers() []*layer.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toNodes(s.doc.Layers)
}

// lockForChange acquires the lock for a mutation. The caller unlocks.
func (s *Session) lockForChange(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.depth == 0 {
		s.mu.Unlock()
		return ErrNoTransaction
	}
	return nil
}

func (s *Session) RenameLayer(ctx context.Context, id, name string) error {
	if err := s.lockForChange(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	l := find(s.doc.Layers, id)
	if l == nil {
		return fmt.Errorf("rename %s: %w", id, ErrLayerNotFound)
	}
	l.Name = name
	return nil
}

// MergeLayer replaces the layer with a single pixel layer holding the
// composite of its subtree. The merged layer gets a new ID.
func (s *Session) MergeLayer(ctx context.Context, id string) error {
	if err := s.lockForChange(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	owner, idx := locate(&s.doc.Layers, id)
	if owner == nil {
		return fmt.Errorf("merge %s: %w", id, ErrLayerNotFound)
	}
	l := (*owner)[idx]

	area := l.Bounds.Union(treeBounds(l.Children))
	pixels := l.Pixels
	if len(l.Children) > 0 && !area.Empty() {
		var err error
		pixels, err = composite([]*Layer{l}, area)
		if err != nil {
			return fmt.Errorf("merge %q: %w", l.Name, err)
		}
	}

	(*owner)[idx] = &Layer{
		ID:     uuid.NewString(),
		Name:   l.Name,
		Kind:   layer.KindPixel,
		Bounds: area,
		Pixels: pixels,
		Mask:   l.Mask,
	}
	return nil
}

func (s *Session) ResizeImage(ctx context.Context, width, height int, method host.ResampleMethod) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	interp, err := interpolator(method)
	if err != nil {
		return err
	}
	if err := s.lockForChange(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	sx := float64(width) / float64(s.doc.Width)
	sy := float64(height) / float64(s.doc.Height)

	var resize func(layers []*Layer) error
	resize = func(layers []*Layer) error {
		for _, l := range layers {
			l.Bounds = scaleBounds(l.Bounds, sx, sy, width, height)
			if len(l.Mask) > 0 {
				if l.Mask, err = resampleGray(l.Mask, width, height, interp); err != nil {
					return fmt.Errorf("resize mask of %q: %w", l.Name, err)
				}
			}
			if len(l.Pixels) > 0 && !l.Bounds.Empty() {
				if l.Pixels, err = resampleRGBA(l.Pixels, l.Bounds.Width(), l.Bounds.Height(), interp); err != nil {
					return fmt.Errorf("resize pixels of %q: %w", l.Name, err)
				}
			}
			if err := resize(l.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := resize(s.doc.Layers); err != nil {
		return err
	}

	s.doc.Width, s.doc.Height = width, height
	return nil
}

// SaveAs writes the document to entry.Path. The session keeps its name.
func (s *Session) SaveAs(ctx context.Context, entry host.Entry) error {
	if entry.Path == "" {
		return errors.New("save: empty path")
	}
	if err := s.lockForChange(ctx); err != nil {
		return err
	}
	f := s.doc.clone()
	s.mu.Unlock()

	return f.Write(entry.Path)
}

type imageData struct {
	s   *Session
	img image.Image
}

func (d *imageData) Width() int  { return d.img.Bounds().Dx() }
func (d *imageData) Height() int { return d.img.Bounds().Dy() }

func (d *imageData) Dispose() {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if d.img != nil {
		d.img = nil
		d.s.live--
	}
}

// CreateImageData wraps buf as a Grayscale (one component) or RGB (three
// components) image. The buffer is copied.
func (s *Session) CreateImageData(ctx context.Context, buf []byte, opts host.ImageDataOptions) (host.ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	if want := opts.Width * opts.Height * opts.Components; len(buf) != want {
		return nil, fmt.Errorf("buffer holds %d bytes, want %d", len(buf), want)
	}

	rect := image.Rect(0, 0, opts.Width, opts.Height)
	var img image.Image
	switch {
	case opts.ColorSpace == host.Grayscale && opts.Components == 1:
		g := image.NewGray(rect)
		copy(g.Pix, buf)
		img = g
	case opts.ColorSpace == host.RGB && opts.Components == 3:
		rgba := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(buf); i, j = i+3, j+4 {
			rgba.Pix[j], rgba.Pix[j+1], rgba.Pix[j+2], rgba.Pix[j+3] = buf[i], buf[i+1], buf[i+2], 255
		}
		img = rgba
	default:
		return nil, fmt.Errorf("unsupported image layout %s with %d components", opts.ColorSpace, opts.Components)
	}

	s.mu.Lock()
	s.live++
	s.mu.Unlock()
	return &imageData{s: s, img: img}, nil
}

// PutLayerMask stores data as the layer's mask. It must be a Grayscale image
// covering the whole canvas.
func (s *Session) PutLayerMask(ctx context.Context, layerID string, data host.ImageData) error {
	d, ok := data.(*imageData)
	if !ok || d.s != s {
		return errors.New("put mask: image data from another host")
	}

	if err := s.lockForChange(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	gray, ok := d.img.(*image.Gray)
	if !ok {
		return errors.New("put mask: image data is disposed or not grayscale")
	}
	if b := gray.Bounds(); b.Dx() != s.doc.Width || b.Dy() != s.doc.Height {
		return fmt.Errorf("put mask: %dx%d image on %dx%d canvas", b.Dx(), b.Dy(), s.doc.Width, s.doc.Height)
	}

	l := find(s.doc.Layers, layerID)
	if l == nil {
		return fmt.Errorf("put mask on %s: %w", layerID, ErrLayerNotFound)
	}
	enc, err := encodePNG(gray)
	if err != nil {
		return err
	}
	l.Mask = enc
	return nil
}
