package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rate-advisor/internal/rates"
)

// #region load-rates

func newLoadRatesCmd(flags *rootFlags) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "load-rates <rates.csv>",
		Short: "Load a rate CSV into the SQLite rate table",
		Long: `Upserts every row of a rate CSV (Zone, Weight and one column per
service) into the rate table and prints the service tiers it serves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags.configPath, flags.logLevel, os.Stderr)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Rates.DBPath
			}

			store, err := rates.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := loadCSVFile(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().Int("loaded", n).Int("total", total).Str("db", dbPath).Msg("rates loaded")

			tiers, err := store.Tiers(cmd.Context())
			if err != nil {
				return err
			}
			return printTiers(cmd.OutOrStdout(), n, total, tiers)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "rate database (overrides rates.db_path)")
	return cmd
}

func printTiers(w io.Writer, loaded, total int, tiers []rates.TierRow) error {
	fmt.Fprintf(w, "loaded %d rows (%d in table)\n\n", loaded, total)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tCOLUMN\tTIER\tDAYS\tWINDOW")
	for _, t := range tiers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.Service, t.Column, t.Tier, t.DeliveryDays, t.DeliveryWindow)
	}
	return tw.Flush()
}

// #endregion load-rates
