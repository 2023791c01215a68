package docfile

import (
	"context"
	"path/filepath"

	"github.com/hellenic-development/layer-prep/pkg/host"
)

// DirPrompter answers every save prompt with the suggested name inside Dir.
type DirPrompter struct {
	Dir string
}

var _ host.SavePrompter = DirPrompter{}

func (p DirPrompter) FileForSaving(ctx context.Context, suggestedName string) (host.Entry, error) {
	if err := ctx.Err(); err != nil {
		return host.Entry{}, err
	}
	return host.Entry{Path: filepath.Join(p.Dir, suggestedName)}, nil
}
