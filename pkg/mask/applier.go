package mask

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/layer"
)

// TransactionLabel names the undo step recorded for CreateMasks.
const TransactionLabel = "Create Masks"

// NoLayersMessage is shown when the document has nothing to mask.
const NoLayersMessage = "No layers to mask"

// Applier masks every classified group of the active document.
type Applier struct {
	host     host.Host
	notifier host.Notifier
}

// NewApplier returns an Applier working against h.
func NewApplier(h host.Host, n host.Notifier) *Applier {
	return &Applier{host: h, notifier: n}
}

// CreateMasks gives every _SWIPE/_MERGE group a mask matching its bounds.
// It returns the number of masked groups. With no candidates the user is
// notified and no transaction is opened.
func (a *Applier) CreateMasks(ctx context.Context) (int, error) {
	doc, err := a.host.ActiveDocument()
	if err != nil {
		return 0, err
	}

	groups := layer.FindLayers(doc.Layers())
	if len(groups) == 0 {
		a.notifier.Alert(NoLayersMessage)
		return 0, nil
	}

	err = a.host.RunAsAtomic(ctx, TransactionLabel, func(ctx context.Context) error {
		eg, egCtx := errgroup.WithContext(ctx)
		for _, g := range groups {
			g := g
			eg.Go(func() error {
				return CreateMaskFromBounds(egCtx, doc, a.host, g)
			})
		}
		return eg.Wait()
	})
	if err != nil {
		return 0, err
	}
	return len(groups), nil
}
