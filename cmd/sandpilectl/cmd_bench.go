package main

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sandpile/internal/config"
	"sandpile/internal/logging"
)

type benchResult struct {
	Runs        []runResult `json:"runs"`
	Generations int         `json:"generations"`
	Topples     int         `json:"topples"`
	Elapsed     string      `json:"elapsed"`
	PerSecond   float64     `json:"generations_per_second"`
}

// bench runs independent drivers in parallel, one per noise seed starting at
// base. Results are ordered by seed.
func bench(ctx context.Context, cfg *config.Config, words []uint16, base int64, runs, generations, jobs int) ([]runResult, error) {
	results := make([]runResult, runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := 0; i < runs; i++ {
		g.Go(func() error {
			d, err := newDriver(cfg, runOptions{
				Words:     words,
				NoiseSeed: base + int64(i),
				Logger:    logging.Discard(),
			})
			if err != nil {
				return err
			}
			res, err := simulate(ctx, d, generations)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			res.Cells = nil
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run independent sandpiles in parallel and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runs, _ := cmd.Flags().GetInt("runs")
			generations, _ := cmd.Flags().GetInt("generations")
			jobs, _ := cmd.Flags().GetInt("jobs")
			rawWords, _ := cmd.Flags().GetStringSlice("cmd")
			noiseSeed, _ := cmd.Flags().GetInt64("noise-seed")
			jsonOut, _ := cmd.Flags().GetBool("json")

			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", runs)
			}
			if jobs < 1 {
				jobs = runtime.GOMAXPROCS(0)
			}
			words, err := parseWords(rawWords)
			if err != nil {
				return err
			}

			start := time.Now()
			results, err := bench(cmd.Context(), cfg, words, noiseSeed, runs, generations, jobs)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := benchResult{Runs: results, Elapsed: elapsed.String()}
			for _, r := range results {
				out.Generations += r.Generations
				out.Topples += r.Topples
			}
			if s := elapsed.Seconds(); s > 0 {
				out.PerSecond = float64(out.Generations) / s
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-4s %-6s %12s %10s %12s %8s\n", "RUN", "RES", "GENERATIONS", "AVALANCHES", "TOPPLES", "GRAINS")
			for i, r := range results {
				fmt.Fprintf(w, "%-4d %-6d %12s %10s %12s %8s\n", i, r.Resolution,
					humanize.Comma(int64(r.Generations)),
					humanize.Comma(int64(r.Avalanches)),
					humanize.Comma(int64(r.Topples)),
					humanize.Comma(int64(r.Grains)))
			}
			fmt.Fprintf(w, "\n%s generations in %s (%s/s, %d jobs)\n",
				humanize.Comma(int64(out.Generations)),
				elapsed.Round(time.Millisecond),
				humanize.CommafWithDigits(out.PerSecond, 0),
				jobs)
			return nil
		},
	}

	cmd.Flags().Int("runs", 8, "Independent runs")
	cmd.Flags().Int("generations", 10000, "Generations per run")
	cmd.Flags().Int("jobs", 0, "Runs in flight at once (0 = GOMAXPROCS)")
	cmd.Flags().StringSlice("cmd", nil, "Command words applied to every run (hex or name=value)")
	cmd.Flags().Int64("noise-seed", 1, "Noise seed of run 0; run i uses seed+i")

	return cmd
}
