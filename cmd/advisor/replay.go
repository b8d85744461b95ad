package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/replay"
)

// #region replay

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Run scripted conversations and check each turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(flags.configPath, flags.logLevel, os.Stderr)
			if err != nil {
				return err
			}
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}

			results, svc := replay.Replay(cmd.Context(), f, orchestrator.WithLogger(logger))
			summary := replay.Summarize(results, svc)
			printReplay(cmd.OutOrStdout(), f, results, summary, verbose)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d turns did not match", summary.Failed, summary.TotalTurns)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every turn, not only failures")
	return cmd
}

func printReplay(w io.Writer, f *replay.Fixture, results []replay.Result, s replay.Summary, verbose bool) {
	if f.Description != "" {
		fmt.Fprintf(w, "%s\n\n", f.Description)
	}
	for _, r := range results {
		if r.Passed && !verbose {
			continue
		}
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "%s %-24s #%d %-18s %q\n", mark, r.Session, r.Index, r.Kind, r.Text)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "       %s\n", m)
		}
	}

	kinds := make([]string, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	fmt.Fprintf(w, "\nturns=%d passed=%d failed=%d rate_queries=%d\n", s.TotalTurns, s.Passed, s.Failed, s.RateCalls)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-18s %d\n", k, s.ByKind[orchestrator.Kind(k)])
	}
}

// #endregion replay
