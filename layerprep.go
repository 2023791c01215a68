package layerprep

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hellenic-development/layer-prep/pkg/exporter"
	"github.com/hellenic-development/layer-prep/pkg/host"
	"github.com/hellenic-development/layer-prep/pkg/mask"
	"github.com/hellenic-development/layer-prep/pkg/merger"
)

// Version is the layer-prep release.
const Version = "0.3.0"

var (
	// ErrNoHost is returned by New when Options.Host is nil.
	ErrNoHost = errors.New("no host configured")
	// ErrUnknownAction is returned for an action name ParseAction does not know.
	ErrUnknownAction = errors.New("unknown action")
)

// Action is one of the user-triggered commands.
type Action int

const (
	ActionCreateMasks Action = iota + 1
	ActionFlattenGroups
	ActionExportFile
)

var actionNames = map[Action]string{
	ActionCreateMasks:   "masks",
	ActionFlattenGroups: "flatten",
	ActionExportFile:    "export",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a command name ("masks", "flatten", "export") to an Action.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAction, name)
}

// Options configures a Dispatcher.
type Options struct {
	Host     host.Host
	Prompter host.SavePrompter // required for ActionExportFile
	Notifier host.Notifier     // nil = notices go to Logger.Warnf; dropped if Logger is nil too
	Logger   Logger            // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result describes what an action did.
type Result struct {
	Action Action
	Layers int        // groups masked or merged
	Entry  host.Entry // where ActionExportFile saved
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// notifier delivers user notices to Options.Notifier, falling back to the
// Logger as a warning.
type notifier struct {
	opts *Options
}

func (n notifier) Alert(msg string) {
	if n.opts.Notifier != nil {
		n.opts.Notifier.Alert(msg)
		return
	}
	n.opts.logWarn("%s", msg)
}

// Dispatcher binds the three actions to their components. It holds no state
// between calls; each call re-reads the live document.
type Dispatcher struct {
	opts Options
}

// New validates opts and returns a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Host == nil {
		return nil, ErrNoHost
	}
	return &Dispatcher{opts: opts}, nil
}

// Dispatch runs one action to completion. Host failures are returned as is;
// the host's transaction has already rolled the document back.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) (*Result, error) {
	o := &d.opts
	res := &Result{Action: action}

	var err error
	switch action {
	case ActionCreateMasks:
		o.logInfo("Creating masks...")
		res.Layers, err = mask.NewApplier(o.Host, notifier{o}).CreateMasks(ctx)
		if err == nil && res.Layers > 0 {
			o.logInfo("Masked %d group(s)", res.Layers)
		}
	case ActionFlattenGroups:
		o.logInfo("Flattening groups...")
		res.Layers, err = merger.New(o.Host, notifier{o}).FlattenGroups(ctx)
		if err == nil && res.Layers > 0 {
			o.logInfo("Merged %d group(s)", res.Layers)
		}
	case ActionExportFile:
		if o.Prompter == nil {
			return nil, errors.New("export: no save prompter configured")
		}
		o.logInfo("Resizing to %dx%d and exporting...", exporter.TargetWidth, exporter.TargetHeight)
		res.Entry, err = exporter.New(o.Host, o.Prompter).ExportFile(ctx)
		if err == nil {
			o.logInfo("Saved %s", res.Entry.Path)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil {
		o.logError("%s failed: %v", action, err)
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return res, nil
}

// CreateMasks is shorthand for Dispatch(ctx, ActionCreateMasks).
func (d *Dispatcher) CreateMasks(ctx context.Context) (*Result, error) {
	return d.Dispatch(ctx, ActionCreateMasks)
}

// FlattenGroups is shorthand for Dispatch(ctx, ActionFlattenGroups).
func (d *Dispatcher) FlattenGroups(ctx context.Context) (*Result, error) {
	return d.Dispatch(ctx, ActionFlattenGroups)
}

// ExportFile is shorthand for Dispatch(ctx, ActionExportFile).
func (d *Dispatcher) ExportFile(ctx context.Context) (*Result, error) {
	return d.Dispatch(ctx, ActionExportFile)
}
