// Package layerprep automates the preparation of layered image documents:
// it finds layer groups tagged with a _SWIPE or _MERGE name suffix, masks or
// flattens them, and exports the document resized to 1024x1267.
//
// The CLI lives in cmd/layer-prep; this root package exposes the same
// actions as a Go API so an editor integration can drive them directly.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named layerprep:
//
//	import "github.com/hellenic-development/layer-prep" // package layerprep
//
// # Quick start
//
//	sess, err := docfile.Open("Photo.psd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d, err := layerprep.New(layerprep.Options{
//	    Host:     sess,
//	    Prompter: docfile.DirPrompter{Dir: "exports"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := d.ExportFile(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Actions
//
// Each action re-reads the live document and runs inside a single host
// transaction, so the host records it as one undo step and rolls it back
// if any step fails:
//
//   - masks: every tagged group gets a layer mask equal to its bounds.
//   - flatten: the suffix is stripped from every tagged group, then each is
//     merged into one layer.
//   - export: the document is resized (bilinear) and saved as
//     <name>_EXPORT.psd at the location the prompter returns.
//
// When masks or flatten find no tagged groups the Notifier is told and the
// document is left untouched.
//
// # Hosts
//
// Editor capabilities are consumed through the interfaces in pkg/host.
// pkg/docfile implements them over a YAML document with embedded PNG
// rasters.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
package layerprep
