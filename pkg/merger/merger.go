// Package merger flattens classified layer groups into single layers.
package merger

import (
	"context"
	"fmt"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

const (
	// TransactionLabel names the undo step recorded for a merge.
	TransactionLabel = "merging layers"
	// NoLayersMessage is shown when the document has nothing to flatten.
	NoLayersMessage = "No layers to merge"
)

// Merger strips classification suffixes from groups and merges them.
type Merger struct {
	host     host.Host
	notifier host.Notifier
}

// New returns a Merger working against h.
func New(h host.Host, n host.Notifier) *Merger {
	return &Merger{host: h, notifier: n}
}

// FlattenGroups merges every _SWIPE/_MERGE group of the active document and
// returns how many were merged. With no candidates the user is notified and
// no transaction is opened.
func (m *Merger) FlattenGroups(ctx context.Context) (int, error) {
	doc, err := m.host.ActiveDocument()
	if err != nil {
		return 0, err
	}

	groups := layer.FindLayers(doc.Layers())
	if len(groups) == 0 {
		m.notifier.Alert(NoLayersMessage)
		return 0, nil
	}

	if err := m.MergeGroupLayers(ctx, doc, groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}

// MergeGroupLayers renames every node to its name without suffixes, then
// merges every node, all inside one transaction. Every rename completes
// before the first merge.
func (m *Merger) MergeGroupLayers(ctx context.Context, doc host.Document, nodes []*layer.Node) error {
	return m.host.RunAsAtomic(ctx, TransactionLabel, func(ctx context.Context) error {
		for _, n := range nodes {
			name := layer.StripSuffixes(n.Name)
			if err := doc.RenameLayer(ctx, n.ID, name); err != nil {
				return fmt.Errorf("rename %q: %w", n.Name, err)
			}
		}
		for _, n := range nodes {
			if err := doc.MergeLayer(ctx, n.ID); err != nil {
				return fmt.Errorf("merge %q: %w", n.Name, err)
			}
		}
		return nil
	})
}
