package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rate-advisor/internal/logging"
)

// #region inspect

type inspectOpts struct {
	dbPath    string
	sessionID string
	last      int
	shares    bool
	jsonOut   bool
}

func newInspectCmd(flags *rootFlags) *cobra.Command {
	opts := inspectOpts{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show recorded turns from the turn log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags.configPath, flags.logLevel, os.Stderr)
			if err != nil {
				return err
			}
			if opts.dbPath == "" {
				opts.dbPath = cfg.TurnLog.Path
			}
			if opts.dbPath == "" {
				return errors.New("no turn log: set turn_log.path or pass --db")
			}
			tl, err := logging.OpenTurnLog(opts.dbPath, logger)
			if err != nil {
				return err
			}
			defer tl.Close()

			out := cmd.OutOrStdout()
			if opts.shares {
				shares, err := tl.Shares(cmd.Context())
				if err != nil {
					return err
				}
				return printShares(out, shares, opts.jsonOut)
			}
			entries, err := tl.Recent(cmd.Context(), opts.sessionID, opts.last)
			if err != nil {
				return err
			}
			return printEntries(out, entries, opts.jsonOut)
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "turn log database (overrides turn_log.path)")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "only this session")
	cmd.Flags().IntVar(&opts.last, "last", 20, "show N most recent turns")
	cmd.Flags().BoolVar(&opts.shares, "shares", false, "show decay-weighted outcome shares instead")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion inspect

// #region output

func printEntries(w io.Writer, entries []logging.Entry, jsonOut bool) error {
	if jsonOut {
		return writeIndented(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no turns recorded")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSESSION\tSEQ\tKIND\tSERVICE\tCOST\tPATH")
	for _, e := range entries {
		cost := "-"
		if e.CostUSD > 0 {
			cost = fmt.Sprintf("$%.2f", e.CostUSD)
		}
		svc := e.Service
		if svc == "" {
			svc = "-"
		}
		path := make([]string, len(e.Path))
		for i, s := range e.Path {
			path[i] = string(s)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), shortID(e.SessionID), e.Seq, e.Kind, svc, cost, strings.Join(path, ">"))
	}
	return tw.Flush()
}

func printShares(w io.Writer, shares []logging.KindShare, jsonOut bool) error {
	if jsonOut {
		return writeIndented(w, shares)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCOUNT\tWEIGHT")
	for _, s := range shares {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\n", s.Kind, s.Count, s.Weight)
	}
	return tw.Flush()
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
