package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/quickcrop/pkg/types"
)

type cropFlags struct {
	workers         int
	prefix          string
	format          string
	strategy        string
	padding         int
	caseInsensitive bool
	manifest        bool
	strict          bool
	jsonOutput      bool
}

func newCropCmd(a *app) *cobra.Command {
	var f cropFlags

	cmd := &cobra.Command{
		Use:   "crop <input-dir> <output-dir>",
		Short: "Trim every image in a directory",
		Long: `Trim the transparent margins of every matching image directly inside
input-dir and write the results to output-dir as <prefix><name>.

Files that fail are reported and skipped. The exit code is 1 when a
directory cannot be used, and with --strict 2 when any file failed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			summary, err := newRunner(a.cfg).CropBatch(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if f.jsonOutput {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			} else {
				printSummary(a, summary)
			}

			if f.strict && summary.Failed > 0 {
				return &exitError{Code: 2, Message: fmt.Sprintf("%d of %d files failed", summary.Failed, summary.Attempted)}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&f.workers, "workers", "w", 0, "number of files processed at once (default from config)")
	flags.StringVar(&f.prefix, "prefix", "", "output file name prefix")
	flags.StringVar(&f.format, "format", "", "output format: png|webp")
	flags.StringVar(&f.strategy, "strategy", "", "edge search: binary|linear")
	flags.IntVar(&f.padding, "padding", 0, "extra pixels kept around the content")
	flags.BoolVarP(&f.caseInsensitive, "ignore-case", "i", false, "match extensions ignoring case")
	flags.BoolVar(&f.manifest, "manifest", false, "write manifest.json with the summary to output-dir")
	flags.BoolVar(&f.strict, "strict", false, "exit with code 2 when any file failed")
	flags.BoolVar(&f.jsonOutput, "json", false, "print the summary as JSON")

	return cmd
}

// apply overrides configuration values with flags the user set
func (f *cropFlags) apply(cmd *cobra.Command, a *app) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		a.cfg.Batch.Workers = f.workers
	}
	if flags.Changed("prefix") {
		a.cfg.Output.Prefix = f.prefix
	}
	if flags.Changed("format") {
		a.cfg.Output.Format = f.format
	}
	if flags.Changed("strategy") {
		a.cfg.Cropper.Strategy = f.strategy
	}
	if flags.Changed("padding") {
		a.cfg.Cropper.Padding = f.padding
	}
	if flags.Changed("ignore-case") {
		a.cfg.Input.CaseInsensitive = f.caseInsensitive
	}
	if flags.Changed("manifest") {
		a.cfg.Output.Manifest = f.manifest
	}
}

func printSummary(a *app, summary types.Summary) {
	for _, res := range summary.Results {
		if res.Status == types.StatusOK {
			fmt.Fprintf(a.out, "ok    %s -> %s (%dx%d)\n", res.Name, res.OutputPath, res.Width, res.Height)
			continue
		}
		fmt.Fprintf(a.out, "FAIL  %s: %s\n", res.Name, res.Error)
	}
	fmt.Fprintf(a.out, "%d attempted, %d succeeded, %d failed\n", summary.Attempted, summary.Succeeded, summary.Failed)
}
