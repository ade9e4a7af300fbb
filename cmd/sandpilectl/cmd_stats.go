package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sandpile/internal/stats"
)

type runReport struct {
	Summary   stats.Summary  `json:"summary"`
	Histogram []stats.Bucket `json:"histogram"`
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <db>",
		Short: "Summarize recorded avalanches",
		Long: `Summarize the avalanches recorded in a stats database.

Every run in the file is reported unless --run selects one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, _ := cmd.Flags().GetString("run")
			jsonOut, _ := cmd.Flags().GetBool("json")

			store, err := stats.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			runs := []string{run}
			if run == "" {
				runs, err = store.Runs(ctx)
				if err != nil {
					return err
				}
			}

			reports := make([]runReport, 0, len(runs))
			for _, id := range runs {
				sum, err := store.Summarize(ctx, id)
				if err != nil {
					return err
				}
				hist, err := store.Histogram(ctx, id)
				if err != nil {
					return err
				}
				reports = append(reports, runReport{Summary: sum, Histogram: hist})
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(reports)
			}
			w := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(w, "No avalanches recorded.")
				return nil
			}
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(w)
				}
				s := r.Summary
				fmt.Fprintf(w, "Run %s\n", s.Run)
				fmt.Fprintf(w, "  avalanches  %s\n", humanize.Comma(int64(s.Avalanches)))
				fmt.Fprintf(w, "  topples     %s (max %s)\n", humanize.Comma(int64(s.Topples)), humanize.Comma(int64(s.MaxTopples)))
				fmt.Fprintf(w, "  lost        %s\n", humanize.Comma(int64(s.Lost)))
				fmt.Fprintf(w, "  max passes  %d\n", s.MaxPasses)
				fmt.Fprintln(w, "  size histogram:")
				for _, b := range r.Histogram {
					fmt.Fprintf(w, "    %-13s %8s %s\n", bucketLabel(b), humanize.Comma(int64(b.Count)), bar(b.Count, s.Avalanches, 40))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("run", "", "Only report this run id")

	return cmd
}

func bucketLabel(b stats.Bucket) string {
	if b.Lo == b.Hi {
		return fmt.Sprintf("%d", b.Lo)
	}
	return fmt.Sprintf("%d-%d", b.Lo, b.Hi)
}

// bar draws count as a share of total, width characters at most.
func bar(count, total, width int) string {
	if total <= 0 || count <= 0 {
		return ""
	}
	n := count * width / total
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}
