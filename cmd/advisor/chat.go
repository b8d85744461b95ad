package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #region chat

func newChatCmd(flags *rootFlags) *cobra.Command {
	var (
		sessionID string
		jsonOut   bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the advisor on stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags.configPath, flags.logLevel, os.Stderr)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return runChat(cmd.Context(), a.orch, sessionID, cmd.InOrStdin(), cmd.OutOrStdout(), jsonOut)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: random)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print each turn result as JSON")
	return cmd
}

// runChat reads one utterance per line until EOF or "quit".
func runChat(ctx context.Context, orch *orchestrator.Orchestrator, sessionID string, in io.Reader, out io.Writer, jsonOut bool) error {
	fmt.Fprintln(out, "Rate advisor ready. Ask about a shipment (or 'quit' to exit):")

	scanner := bufio.NewScanner(in)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}

		res := orch.ProcessTurn(ctx, sessionID, text)
		if jsonOut {
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n", res.ReplyText)
		fmt.Fprintf(out, "[%d] kind=%s%s total=%s\n", res.Seq, res.Kind, serviceSuffix(res), res.Total)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func serviceSuffix(res orchestrator.TurnResult) string {
	switch {
	case res.Escalation != nil:
		return fmt.Sprintf(" decision=%s", res.Escalation.Decision)
	case res.Recommendation != nil:
		return fmt.Sprintf(" service=%s cost=$%.2f", res.Recommendation.Service, res.Recommendation.CostUSD)
	}
	return ""
}

// #endregion chat
