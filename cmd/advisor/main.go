// Command advisor answers shipping-rate questions in a conversation, over a
// terminal or HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rate-advisor/internal/config"
)

// version is set at build time.
var version = "dev"

// #region main

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "advisor",
		Short: "Shipping rate advisor",
		Long: `Recommends a shipping service from a rate table, answers follow-ups
about the recommendation and escalates when the customer pushes back.

Settings come from advisor.yaml and ADVISOR_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultConfigFile, "config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newChatCmd(flags),
		newServeCmd(flags),
		newReplayCmd(flags),
		newInspectCmd(flags),
		newLoadRatesCmd(flags),
	)
	return root
}

// #endregion main
