package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/hellenic-development/layer-prep/pkg/host"
)

// stdinPrompter asks on the terminal where to save. An empty answer keeps the
// suggested name in the current directory, a directory answer saves the
// suggested name inside it, and "q" or end of input cancels.
type stdinPrompter struct {
	in *bufio.Reader
}

func newStdinPrompter(r io.Reader) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(r)}
}

func (p *stdinPrompter) FileForSaving(ctx context.Context, suggestedName string) (host.Entry, error) {
	if err := ctx.Err(); err != nil {
		return host.Entry{}, err
	}
	color.New(color.FgCyan).Printf("Save as [%s] (q to cancel): ", suggestedName)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return host.Entry{}, fmt.Errorf("read answer: %w", err)
		}
		if line == "" {
			return host.Entry{}, host.ErrCanceled
		}
	}

	answer := strings.TrimSpace(line)
	switch {
	case answer == "":
		return host.Entry{Path: suggestedName}, nil
	case answer == "q":
		return host.Entry{}, host.ErrCanceled
	}

	if info, err := os.Stat(answer); err == nil && info.IsDir() {
		return host.Entry{Path: filepath.Join(answer, suggestedName)}, nil
	}
	return host.Entry{Path: answer}, nil
}
