package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellenic-development/layer-prep/pkg/host"
)

func TestStdinPrompter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "empty answer keeps suggestion", input: "\n", want: "Photo_EXPORT.psd"},
		{name: "explicit path", input: "out/final.psd\n", want: "out/final.psd"},
		{name: "directory answer", input: dir + "\n", want: filepath.Join(dir, "Photo_EXPORT.psd")},
		{name: "answer without newline", input: "final.psd", want: "final.psd"},
		{name: "q cancels", input: "q\n", wantErr: host.ErrCanceled},
		{name: "end of input cancels", input: "", wantErr: host.ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newStdinPrompter(strings.NewReader(tt.input))
			entry, err := p.FileForSaving(context.Background(), "Photo_EXPORT.psd")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Path)
		})
	}
}
