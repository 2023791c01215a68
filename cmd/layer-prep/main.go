package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	layerprep "github.com/hellenic-development/layer-prep"
	"github.com/hellenic-development/layer-prep/pkg/docfile"
	"github.com/hellenic-development/layer-prep/pkg/formatter"
	"github.com/hellenic-development/layer-prep/pkg/host"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = layerprep.Version

var (
	outPath   string
	outputDir string
	assumeYes bool
	verbose   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "layer-prep",
		Short: "Prepare layered documents for delivery",
		Long:  "Mask or flatten _SWIPE/_MERGE layer groups and export documents resized to 1024x1267",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress messages")

	masksCmd := &cobra.Command{
		Use:   "masks <document>",
		Short: "Add a layer mask matching its bounds to every _SWIPE/_MERGE group",
		Args:  cobra.ExactArgs(1),
		Run:   runEdit(layerprep.ActionCreateMasks),
	}
	flattenCmd := &cobra.Command{
		Use:   "flatten <document>",
		Short: "Strip the suffix from every _SWIPE/_MERGE group and merge it into one layer",
		Args:  cobra.ExactArgs(1),
		Run:   runEdit(layerprep.ActionFlattenGroups),
	}
	for _, cmd := range []*cobra.Command{masksCmd, flattenCmd} {
		cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the edited document here instead of in place")
	}

	exportCmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Resize to 1024x1267 and save as <name>_EXPORT.psd",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}
	exportCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Save into this directory without prompting")
	exportCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Accept the suggested file name in the current directory")

	inspectCmd := &cobra.Command{
		Use:   "inspect <document>",
		Short: "Print the layer tree and the groups the actions would touch",
		Args:  cobra.ExactArgs(1),
		Run:   runInspect,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("layer-prep version %s\n", version)
		},
	}

	rootCmd.AddCommand(masksCmd, flattenCmd, exportCmd, inspectCmd, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func fail(err error) {
	color.New(color.FgRed).Printf("Error: %v\n", err)
	os.Exit(1)
}

func open(path string, prompter host.SavePrompter) (*docfile.Session, *layerprep.Dispatcher) {
	sess, err := docfile.Open(path)
	if err != nil {
		fail(err)
	}

	opts := layerprep.Options{
		Host:     sess,
		Prompter: prompter,
		Notifier: &cliNotifier{},
	}
	if verbose {
		opts.Logger = &cliLogger{}
	}

	d, err := layerprep.New(opts)
	if err != nil {
		fail(err)
	}
	return sess, d
}

func runEdit(action layerprep.Action) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		green := color.New(color.FgGreen)

		sess, d := open(args[0], nil)
		res, err := d.Dispatch(cmd.Context(), action)
		if err != nil {
			fail(err)
		}
		if res.Layers == 0 {
			return
		}

		dest := args[0]
		if outPath != "" {
			dest = outPath
		}
		if err := sess.WriteTo(dest); err != nil {
			fail(err)
		}
		green.Printf("✓ %s: %d group(s), written to %s\n", action, res.Layers, dest)
	}
}

func runExport(cmd *cobra.Command, args []string) {
	var prompter host.SavePrompter
	switch {
	case outputDir != "":
		prompter = docfile.DirPrompter{Dir: outputDir}
	case assumeYes:
		prompter = docfile.DirPrompter{Dir: "."}
	default:
		prompter = newStdinPrompter(os.Stdin)
	}

	_, d := open(args[0], prompter)
	res, err := d.ExportFile(cmd.Context())
	if err != nil {
		fail(err)
	}
	color.New(color.FgGreen).Printf("✓ Exported %s\n", res.Entry.Path)
}

func runInspect(cmd *cobra.Command, args []string) {
	sess, err := docfile.Open(args[0])
	if err != nil {
		fail(err)
	}
	fmt.Print(formatter.ToMarkdown(sess))
}

// cliLogger implements layerprep.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}

// cliNotifier shows user notices regardless of --verbose.
type cliNotifier struct{}

func (n *cliNotifier) Alert(msg string) {
	color.New(color.FgCyan).Printf("ℹ %s\n", msg)
}
