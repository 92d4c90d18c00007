package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmagro/sidecar-payouts/internal/config"
	"github.com/dmagro/sidecar-payouts/internal/history"
	"github.com/dmagro/sidecar-payouts/internal/output"
)

func historyCmd() *cobra.Command {
	var (
		account string
		limit   int
		format  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past payout runs recorded in the local history database",
		Long: `List runs recorded by "payouts total" while history is enabled
(history.enabled in payouts.yaml or PAYOUTS_HISTORY_ENABLED=true).

Example:
  payouts history --account-id alice --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runHistory(cmd, cfg, account, limit, format)
		},
	}

	cmd.Flags().StringVarP(&account, "account-id", "a", "", "Only show runs for this account")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&format, "format", formatTerminal, "Output format: terminal|json")

	return cmd
}

func runHistory(cmd *cobra.Command, cfg *config.Config, account string, limit int, format string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runs := []history.Run{}
	if _, err := os.Stat(cfg.History.Path); err == nil {
		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if runs, err = store.List(ctx, account, limit); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat history database: %w", err)
	}

	if format == formatJSON {
		if runs == nil {
			runs = []history.Run{}
		}
		return output.RenderJSON(out, runs)
	}
	output.RenderHistoryTerminal(out, runs)
	return nil
}
