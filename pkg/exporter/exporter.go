// Package exporter resizes the active document to the delivery resolution
// and saves it under a derived file name.
package exporter

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hellenic-development/layer-prep/pkg/host"
)

// Delivery resolution and resampling.
const (
	TargetWidth  = 1024
	TargetHeight = 1267
	Resample     = host.Bilinear
)

// Suffix appended to the document's base name.
const (
	Suffix    = "_EXPORT"
	Extension = ".psd"
)

// Transaction labels.
const (
	ExportLabel = "Exporting File"
	ResizeLabel = "resizing document"
	SaveLabel   = "saving psd"
)

var extRe = regexp.MustCompile(`\.[^/.]+$`)

// ExportFileName strips the final extension from docName and appends
// Suffix and Extension: "a.b.png" becomes "a.b_EXPORT.psd".
func ExportFileName(docName string) string {
	return extRe.ReplaceAllString(docName, "") + Suffix + Extension
}

// Pipeline runs resize then save against the host's active document.
type Pipeline struct {
	host   host.Host
	prompt host.SavePrompter
}

// New returns a Pipeline that asks p where to save.
func New(h host.Host, p host.SavePrompter) *Pipeline {
	return &Pipeline{host: h, prompt: p}
}

// ExportFile resizes and saves the document inside one outer transaction.
// It returns the location the document was saved to.
func (p *Pipeline) ExportFile(ctx context.Context) (host.Entry, error) {
	var entry host.Entry
	err := p.host.RunAsAtomic(ctx, ExportLabel, func(ctx context.Context) error {
		if err := p.ResizeDocument(ctx); err != nil {
			return err
		}
		var err error
		entry, err = p.SaveFile(ctx)
		return err
	})
	if err != nil {
		return host.Entry{}, err
	}
	return entry, nil
}

// ResizeDocument resamples the document to TargetWidth×TargetHeight.
func (p *Pipeline) ResizeDocument(ctx context.Context) error {
	doc, err := p.host.ActiveDocument()
	if err != nil {
		return err
	}
	return p.host.RunAsAtomic(ctx, ResizeLabel, func(ctx context.Context) error {
		if err := doc.ResizeImage(ctx, TargetWidth, TargetHeight, Resample); err != nil {
			return fmt.Errorf("resize to %dx%d: %w", TargetWidth, TargetHeight, err)
		}
		return nil
	})
}

// SaveFile asks for a location bound to the export name and saves the
// document there in the host's native format.
func (p *Pipeline) SaveFile(ctx context.Context) (host.Entry, error) {
	doc, err := p.host.ActiveDocument()
	if err != nil {
		return host.Entry{}, err
	}

	name := ExportFileName(doc.Name())
	entry, err := p.prompt.FileForSaving(ctx, name)
	if err != nil {
		return host.Entry{}, fmt.Errorf("choose location for %s: %w", name, err)
	}

	err = p.host.RunAsAtomic(ctx, SaveLabel, func(ctx context.Context) error {
		if err := doc.SaveAs(ctx, entry); err != nil {
			return fmt.Errorf("save %s: %w", entry.Path, err)
		}
		return nil
	})
	if err != nil {
		return host.Entry{}, err
	}
	return entry, nil
}
