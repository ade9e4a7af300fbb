package main

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"sandpile/internal/render"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <out.png>",
		Short: "Render the grid after a number of generations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			generations, _ := cmd.Flags().GetInt("generations")
			rawWords, _ := cmd.Flags().GetStringSlice("cmd")
			noiseSeed, _ := cmd.Flags().GetInt64("noise-seed")
			scale, _ := cmd.Flags().GetInt("scale")

			words, err := parseWords(rawWords)
			if err != nil {
				return err
			}
			d, err := newDriver(cfg, runOptions{
				Words:     words,
				NoiseSeed: noiseSeed,
				Logger:    newLogger(cfg),
			})
			if err != nil {
				return err
			}
			res, err := simulate(cmd.Context(), d, generations)
			if err != nil {
				return err
			}

			var img image.Image = render.Screen(res.Cells, res.Resolution)
			if scale > 0 {
				img = render.Grid(res.Cells, res.Resolution, scale)
			}
			if err := writePNG(args[0], img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d grid, %d generations)\n",
				args[0], res.Resolution, res.Resolution, res.Generations)
			return nil
		},
	}

	cmd.Flags().Int("generations", 1000, "Generations to run before rendering")
	cmd.Flags().StringSlice("cmd", nil, "Command words applied before the run (hex or name=value)")
	cmd.Flags().Int64("noise-seed", 1, "Seed of the entropy sensor noise")
	cmd.Flags().Int("scale", 0, "Pixels per cell; 0 renders the full 640x480 frame")

	return cmd
}
