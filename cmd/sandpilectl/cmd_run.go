package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sandpile/internal/render"
	"sandpile/internal/stats"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the sandpile for a number of generations",
		Long: `Run the sandpile headless for a number of generations.

Command words given with --cmd are applied after power-up and before the
first generation, e.g. --cmd grid_size=64 --cmd drop_mode=1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			generations, _ := cmd.Flags().GetInt("generations")
			rawWords, _ := cmd.Flags().GetStringSlice("cmd")
			noiseSeed, _ := cmd.Flags().GetInt64("noise-seed")
			dbPath, _ := cmd.Flags().GetString("db")
			pngPath, _ := cmd.Flags().GetString("png")
			jsonOut, _ := cmd.Flags().GetBool("json")

			words, err := parseWords(rawWords)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.StatsDB
			}

			logger := newLogger(cfg)
			opts := runOptions{
				Words:     words,
				NoiseSeed: noiseSeed,
				Logger:    logger,
			}
			var store *stats.Store
			if dbPath != "" {
				store, err = stats.Open(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Recorder = store
			}

			d, err := newDriver(cfg, opts)
			if err != nil {
				return err
			}
			res, err := simulate(cmd.Context(), d, generations)
			if err != nil {
				return err
			}
			if store != nil {
				res.Run = store.Run()
			}
			logger.Info("run finished", "generations", res.Generations, "avalanches", res.Avalanches)

			if pngPath != "" {
				if err := writePNG(pngPath, render.Screen(res.Cells, res.Resolution)); err != nil {
					return err
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			printRunResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("generations", 1000, "Generations to run")
	cmd.Flags().StringSlice("cmd", nil, "Command words applied before the run (hex or name=value)")
	cmd.Flags().Int64("noise-seed", 1, "Seed of the entropy sensor noise")
	cmd.Flags().String("db", "", "SQLite file to record avalanches to (overrides stats_db)")
	cmd.Flags().String("png", "", "Write the final grid as a 640x480 frame to this PNG file")

	return cmd
}

func printRunResult(w io.Writer, res runResult) {
	fmt.Fprintf(w, "Resolution:   %dx%d\n", res.Resolution, res.Resolution)
	fmt.Fprintf(w, "Generations:  %s\n", humanize.Comma(int64(res.Generations)))
	fmt.Fprintf(w, "Drops:        %s\n", humanize.Comma(int64(res.Drops)))
	fmt.Fprintf(w, "Avalanches:   %s\n", humanize.Comma(int64(res.Avalanches)))
	fmt.Fprintf(w, "Topples:      %s\n", humanize.Comma(int64(res.Topples)))
	fmt.Fprintf(w, "Lost grains:  %s\n", humanize.Comma(int64(res.Lost)))
	fmt.Fprintf(w, "Grains held:  %s\n", humanize.Comma(int64(res.Grains)))
	if res.Unstable {
		fmt.Fprintln(w, "State:        relaxing")
	} else {
		fmt.Fprintln(w, "State:        stable")
	}
	if res.Run != "" {
		fmt.Fprintf(w, "Run:          %s\n", res.Run)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
