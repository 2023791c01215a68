// Package docfile is a host backed by a layered document stored as YAML.
// Rasters (layer pixels and masks) are embedded as PNG bytes, so a single
// file carries the whole document.
package docfile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// ErrLayerNotFound is returned when a layer ID is not in the document.
var ErrLayerNotFound = errors.New("layer not found")

// File is the on-disk document.
type File struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Layers []*Layer `yaml:"layers"`
}

// Layer is one entry of the layer tree. Pixels covers Bounds; Mask covers
// the whole canvas.
type Layer struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Kind     layer.Kind   `yaml:"kind"`
	Bounds   layer.Bounds `yaml:"bounds"`
	Pixels   Raster       `yaml:"pixels,omitempty"`
	Mask     Raster       `yaml:"mask,omitempty"`
	Children []*Layer     `yaml:"children,omitempty"`
}

// Raster is PNG data, stored in YAML as a base64 !!binary scalar.
type Raster []byte

func (r Raster) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!binary",
		Value: base64.StdEncoding.EncodeToString(r),
	}, nil
}

func (r *Raster) UnmarshalYAML(n *yaml.Node) error {
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
	if err != nil {
		return fmt.Errorf("line %d: invalid raster data: %w", n.Line, err)
	}
	*r = data
	return nil
}

// Load reads and validates a document.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse document %q: %w", path, err)
	}
	if err := f.normalize(); err != nil {
		return nil, fmt.Errorf("document %q: %w", path, err)
	}
	return &f, nil
}

// Write encodes the document to path, creating parent directories.
func (f *File) Write(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write document %q: %w", path, err)
	}
	return nil
}

// normalize assigns missing IDs, derives empty group bounds from their
// children and rejects bounds outside the canvas.
func (f *File) normalize() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", f.Width, f.Height)
	}
	seen := make(map[string]bool)
	return normalizeLayers(f.Layers, f.Width, f.Height, seen)
}

func normalizeLayers(layers []*Layer, w, h int, seen map[string]bool) error {
	for _, l := range layers {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate layer id %q", l.ID)
		}
		seen[l.ID] = true

		if l.Kind == "" {
			l.Kind = layer.KindPixel
		}
		if len(l.Children) > 0 && l.Kind != layer.KindGroup {
			return fmt.Errorf("layer %q has children but kind %s", l.Name, l.Kind)
		}
		if err := normalizeLayers(l.Children, w, h, seen); err != nil {
			return err
		}
		if l.Kind == layer.KindGroup && l.Bounds.Empty() {
			l.Bounds = treeBounds(l.Children)
		}
		if !l.Bounds.Empty() && !l.Bounds.Within(w, h) {
			return fmt.Errorf("layer %q bounds %+v outside %dx%d canvas", l.Name, l.Bounds, w, h)
		}
	}
	return nil
}

// treeBounds is the union of the bounds of layers and all their descendants.
func treeBounds(layers []*Layer) layer.Bounds {
	var b layer.Bounds
	for _, l := range layers {
		b = b.Union(l.Bounds).Union(treeBounds(l.Children))
	}
	return b
}

func (f *File) clone() *File {
	return &File{Width: f.Width, Height: f.Height, Layers: cloneLayers(f.Layers)}
}

// cloneLayers copies the tree structure. Raster slices are shared: they are
// only ever replaced, never written in place.
func cloneLayers(layers []*Layer) []*Layer {
	if layers == nil {
		return nil
	}
	out := make([]*Layer, len(layers))
	for i, l := range layers {
		c := *l
		c.Children = cloneLayers(l.Children)
		out[i] = &c
	}
	return out
}

// locate returns the slice holding the layer with the given id and its index.
func locate(list *[]*Layer, id string) (*[]*Layer, int) {
	for i, l := range *list {
		if l.ID == id {
			return list, i
		}
		if owner, idx := locate(&l.Children, id); owner != nil {
			return owner, idx
		}
	}
	return nil, -1
}

func find(layers []*Layer, id string) *Layer {
	owner, idx := locate(&layers, id)
	if owner == nil {
		return nil
	}
	return (*owner)[idx]
}

func toNodes(layers []*Layer) []*layer.Node {
	if len(layers) == 0 {
		return nil
	}
	out := make([]*layer.Node, len(layers))
	for i, l := range layers {
		out[i] = &layer.Node{
			ID:       l.ID,
			Name:     l.Name,
			Kind:     l.Kind,
			Bounds:   l.Bounds,
			HasMask:  len(l.Mask) > 0,
			Children: toNodes(l.Children),
		}
	}
	return out
}
