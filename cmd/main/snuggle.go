package main

import (
	"fmt"

	"github.com/CTAG07/emotegen/pkg/compose"
	"github.com/CTAG07/emotegen/pkg/export"
	"github.com/CTAG07/emotegen/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func (a *app) snuggleCmd() *cobra.Command {
	var (
		descPath  string
		name      string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "snuggle LEFT.svg RIGHT.svg",
		Short: "Combine two drawings, cutting the left one where the right one overlaps",
		Long: `Combine two rendered drawings into one. The right drawing is drawn in front;
the left one is moved by (dx, dy) and masked out wherever the right one paints,
with an extra margin of "gap" units. The descriptor is a TOML, YAML or JSON file:

	dx = 24
	dy = 0
	gap = 2
	transform = ""

The result is written to <output>/vector/snuggle_<name>.svg.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := compose.LoadDesc(descPath)
			if err != nil {
				return fmt.Errorf("reading descriptor: %w", err)
			}
			left, err := svgdoc.LoadFile(args[0])
			if err != nil {
				return err
			}
			right, err := svgdoc.LoadFile(args[1])
			if err != nil {
				return err
			}
			out, err := svgdoc.Serialize(compose.Snuggle(left, right, desc))
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = a.config.Generator.OutputDir
			}
			exportConfig := *a.config.Export
			exportConfig.Force = true
			exporter := export.NewExporter(a.logger, outputDir, &exportConfig, nil)
			_, err = exporter.Export(cmd.Context(), "snuggle", name, out+"\n")
			return err
		},
	}

	cmd.Flags().StringVarP(&descPath, "desc", "d", "", "Snuggle descriptor file")
	cmd.Flags().StringVar(&name, "name", "", "Name of the result")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
