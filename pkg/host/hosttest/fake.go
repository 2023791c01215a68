// Package hosttest provides an in-memory host that records every call, for
// use in tests of the preparation actions.
package hosttest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// ErrNoTransaction is returned by mutating calls made outside RunAsAtomic.
var ErrNoTransaction = errors.New("mutation outside a transaction")

// Fake implements host.Host, host.Document, host.SavePrompter and
// host.Notifier. Fail maps a call key such as "merge:<id>", "rename:<id>",
// "mask:<id>", "resize", "save", "prompt" or "image" to an injected error.
type Fake struct {
	mu sync.Mutex

	DocName string
	W, H    int
	Roots   []*layer.Node
	Fail    map[string]error

	calls   []string
	alerts  []string
	masks   map[string][]byte
	live    int
	depth   int
	maxSeen int
	saved   []host.Entry
	resized [][2]int
	methods []host.ResampleMethod
}

var (
	_ host.Host         = (*Fake)(nil)
	_ host.Document     = (*Fake)(nil)
	_ host.SavePrompter = (*Fake)(nil)
	_ host.Notifier     = (*Fake)(nil)
)

// New returns a fake document named name with the given canvas and layers.
func New(name string, w, h int, roots ...*layer.Node) *Fake {
	return &Fake{DocName: name, W: w, H: h, Roots: roots, masks: make(map[string][]byte)}
}

// Group builds a group node.
func Group(id, name string, children ...*layer.Node) *layer.Node {
	return &layer.Node{ID: id, Name: name, Kind: layer.KindGroup, Children: children}
}

// GroupAt builds a group node with bounds.
func GroupAt(id, name string, b layer.Bounds, children ...*layer.Node) *layer.Node {
	n := Group(id, name, children...)
	n.Bounds = b
	return n
}

func (f *Fake) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *Fake) failure(key string) error {
	if f.Fail == nil {
		return nil
	}
	return f.Fail[key]
}

// Calls returns the recorded call log in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Alerts returns every message passed to Alert.
func (f *Fake) Alerts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.alerts...)
}

// Mask returns the buffer committed as id's mask, if any.
func (f *Fake) Mask(id string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.masks[id]
	return b, ok
}

// LiveImageData counts image data created and not yet disposed.
func (f *Fake) LiveImageData() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// MaxDepth is the deepest transaction nesting observed.
func (f *Fake) MaxDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSeen
}

// Saved returns the entries passed to SaveAs.
func (f *Fake) Saved() []host.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]host.Entry(nil), f.saved...)
}

// Resized returns the sizes passed to ResizeImage and the methods used.
func (f *Fake) Resized() ([][2]int, []host.ResampleMethod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int(nil), f.resized...), append([]host.ResampleMethod(nil), f.methods...)
}

// RunAsAtomic records begin/commit/rollback around fn. It does not undo
// anything on failure; tests assert on the recorded sequence instead.
func (f *Fake) RunAsAtomic(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.record("begin:" + label)
	f.depth++
	f.maxSeen = max(f.maxSeen, f.depth)
	f.mu.Unlock()

	err := fn(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.depth--
	if err != nil {
		f.record("rollback:" + label)
		return err
	}
	f.record("commit:" + label)
	return nil
}

func (f *Fake) ActiveDocument() (host.Document, error) {
	if err := f.failure("document"); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fake) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DocName
}

func (f *Fake) Width() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.W
}

func (f *Fake) Height() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.H
}

func (f *Fake) Layers() []*layer.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Roots
}

func (f *Fake) mutate(key, call string) error {
	if f.depth == 0 {
		return ErrNoTransaction
	}
	f.record(call)
	return f.failure(key)
}

func (f *Fake) RenameLayer(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("rename:"+id, fmt.Sprintf("rename:%s:%s", id, name)); err != nil {
		return err
	}
	n := layer.Find(f.Roots, id)
	if n == nil {
		return fmt.Errorf("layer %s not found", id)
	}
	n.Name = name
	return nil
}

func (f *Fake) MergeLayer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("merge:"+id, fmt.Sprintf("merge:%s:%s", id, nameOf(f.Roots, id))); err != nil {
		return err
	}
	if n := layer.Find(f.Roots, id); n != nil {
		n.Kind = layer.KindPixel
		n.Children = nil
	}
	return nil
}

func nameOf(roots []*layer.Node, id string) string {
	if n := layer.Find(roots, id); n != nil {
		return n.Name
	}
	return ""
}

func (f *Fake) ResizeImage(_ context.Context, width, height int, method host.ResampleMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("resize", fmt.Sprintf("resize:%dx%d", width, height)); err != nil {
		return err
	}
	f.W, f.H = width, height
	f.resized = append(f.resized, [2]int{width, height})
	f.methods = append(f.methods, method)
	return nil
}

func (f *Fake) SaveAs(_ context.Context, entry host.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("save", "save:"+entry.Path); err != nil {
		return err
	}
	f.saved = append(f.saved, entry)
	return nil
}

// FileForSaving accepts the suggested name unchanged.
func (f *Fake) FileForSaving(_ context.Context, suggestedName string) (host.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("prompt:" + suggestedName)
	if err := f.failure("prompt"); err != nil {
		return host.Entry{}, err
	}
	return host.Entry{Path: suggestedName}, nil
}

func (f *Fake) Alert(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, msg)
}

type imageData struct {
	f        *Fake
	buf      []byte
	w, h     int
	disposed bool
}

func (d *imageData) Width() int  { return d.w }
func (d *imageData) Height() int { return d.h }

func (d *imageData) Dispose() {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	if !d.disposed {
		d.disposed = true
		d.f.live--
	}
}

func (f *Fake) CreateImageData(_ context.Context, buf []byte, opts host.ImageDataOptions) (host.ImageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("image"); err != nil {
		return nil, err
	}
	if len(buf) != opts.Width*opts.Height*opts.Components {
		return nil, fmt.Errorf("buffer length %d does not match %dx%dx%d", len(buf), opts.Width, opts.Height, opts.Components)
	}
	f.live++
	return &imageData{f: f, buf: append([]byte(nil), buf...), w: opts.Width, h: opts.Height}, nil
}

func (f *Fake) PutLayerMask(_ context.Context, layerID string, data host.ImageData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("mask:"+layerID, "mask:"+layerID); err != nil {
		return err
	}
	d, ok := data.(*imageData)
	if !ok || d.disposed {
		return fmt.Errorf("invalid image data for layer %s", layerID)
	}
	f.masks[layerID] = d.buf
	if n := layer.Find(f.Roots, layerID); n != nil {
		n.HasMask = true
	}
	return nil
}
