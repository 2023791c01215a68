// Package host declares the editor capabilities the preparation actions
// consume. The actions never touch a concrete editor; they call these
// interfaces, which an embedding application or the file-backed host in
// pkg/docfile implements.
package host

import (
	"context"
	"errors"

	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// ErrCanceled is returned by a SavePrompter when the user dismisses the prompt.
var ErrCanceled = errors.New("save canceled by user")

// ResampleMethod selects the interpolation used when resizing a document.
type ResampleMethod string

const (
	Bilinear        ResampleMethod = "BILINEAR"
	NearestNeighbor ResampleMethod = "NEAREST_NEIGHBOR"
	Bicubic         ResampleMethod = "BICUBIC"
)

// ColorSpace of raw image data handed to Imaging.
type ColorSpace string

const (
	Grayscale ColorSpace = "Grayscale"
	RGB       ColorSpace = "RGB"
)

// Document is the host's active document.
type Document interface {
	// Name is the document's file name including its extension.
	Name() string
	Width() int
	Height() int
	// Layers returns a snapshot of the top-level layers and their subtrees.
	Layers() []*layer.Node
	RenameLayer(ctx context.Context, id, name string) error
	// MergeLayer flattens the layer (and its descendants) into one pixel layer.
	MergeLayer(ctx context.Context, id string) error
	ResizeImage(ctx context.Context, width, height int, method ResampleMethod) error
	// SaveAs persists the document in the host's native format.
	SaveAs(ctx context.Context, entry Entry) error
}

// Transactor runs a body as one atomic, undoable host operation. If fn
// returns an error the host rolls back everything fn did.
type Transactor interface {
	RunAsAtomic(ctx context.Context, label string, fn func(ctx context.Context) error) error
}

// ImageDataOptions describes a raw buffer passed to CreateImageData.
type ImageDataOptions struct {
	Width      int
	Height     int
	Components int
	ColorSpace ColorSpace
}

// ImageData is a host-side image resource. It must be disposed once used.
type ImageData interface {
	Width() int
	Height() int
	Dispose()
}

// Imaging wraps the host's image buffer primitives.
type Imaging interface {
	CreateImageData(ctx context.Context, buf []byte, opts ImageDataOptions) (ImageData, error)
	PutLayerMask(ctx context.Context, layerID string, data ImageData) error
}

// Entry is a writable location returned by a SavePrompter.
type Entry struct {
	Path string
}

// SavePrompter asks the user where to save a file.
type SavePrompter interface {
	FileForSaving(ctx context.Context, suggestedName string) (Entry, error)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Alert(msg string)
}

// Host bundles everything an action needs from the editor.
type Host interface {
	Transactor
	Imaging
	ActiveDocument() (Document, error)
}
