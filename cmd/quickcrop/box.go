package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/quickcrop/pkg/processing"
)

func newBoxCmd(a *app) *cobra.Command {
	var debugPath string

	cmd := &cobra.Command{
		Use:   "box <file>",
		Short: "Print the content box of an image as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			detector, closeCache := newDetector(cmd.Context(), a.cfg, nil)
			defer closeCache()

			res, err := detector.DetectBox(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if debugPath != "" {
				img, err := newAnalyzer(a.cfg).LoadImageFromBytes(data)
				if err != nil {
					return err
				}
				processor := newProcessor(a.cfg)
				overlay := processor.CreateDebugOverlay(img, res.Box)
				if err := processor.SaveImage(overlay, debugPath, processing.FormatPNG, 0, true); err != nil {
					return fmt.Errorf("failed to write debug overlay: %w", err)
				}
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&debugPath, "debug", "", "write a PNG with the box outlined to this path")
	return cmd
}
