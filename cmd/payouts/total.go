package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmagro/sidecar-payouts/internal/config"
	"github.com/dmagro/sidecar-payouts/internal/history"
	"github.com/dmagro/sidecar-payouts/internal/output"
	"github.com/dmagro/sidecar-payouts/internal/pipeline"
	"github.com/dmagro/sidecar-payouts/internal/reports"
	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

type totalOptions struct {
	accounts    []string
	depth       uint
	format      string
	showEras    bool
	chart       bool
	writeReport bool
}

func totalCmd() *cobra.Command {
	var (
		opts   totalOptions
		policy string
	)

	cmd := &cobra.Command{
		Use:   "total",
		Short: "Sum unclaimed staking payouts over the last eras",
		Long: `Probe the sidecar, query staking payouts for each account and print the
sum of nominatorStakingPayout over entries that are not claimed yet.

The query asks the sidecar for depth+1 eras.

Policies:
  strict   stop at the first era with an empty or missing payouts list (default)
  lenient  skip such eras and keep summing

Example:
  payouts total --account-id 15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5 --depth 10 --eras`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, func(c *config.Config) {
				if cmd.Flags().Changed("policy") {
					c.Payouts.Policy = policy
				}
			})
			if err != nil {
				return err
			}
			return runTotal(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.accounts, "account-id", "a", nil, "Account to query (repeatable)")
	cmd.Flags().UintVarP(&opts.depth, "depth", "d", 0, "Number of past eras to look back")
	cmd.Flags().StringVar(&policy, "policy", "", "Aggregation policy: strict|lenient (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", formatTerminal, "Output format: terminal|json")
	cmd.Flags().BoolVar(&opts.showEras, "eras", false, "Show the per-era breakdown")
	cmd.Flags().BoolVar(&opts.chart, "chart", false, "Plot per-era totals")
	cmd.Flags().BoolVar(&opts.writeReport, "report", false, "Also write a JSON report file")
	_ = cmd.MarkFlagRequired("account-id")
	_ = cmd.MarkFlagRequired("depth")

	return cmd
}

func runTotal(cmd *cobra.Command, cfg *config.Config, opts totalOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := newLogger(cmd, cfg)

	client := sidecar.NewClient(cfg.Sidecar.URL, cfg.Sidecar.Timeout)
	runner := pipeline.New(client,
		pipeline.WithPolicy(cfg.Policy()),
		pipeline.WithConcurrency(cfg.Payouts.Concurrency),
		pipeline.WithLogger(log),
	)

	report, err := runner.Run(ctx, pipeline.Request{Accounts: opts.accounts, Depth: opts.depth})
	if errors.Is(err, pipeline.ErrNoAccounts) || errors.Is(err, pipeline.ErrEmptyAccount) || errors.Is(err, pipeline.ErrDepthTooLarge) {
		return err
	}
	if err != nil {
		return renderFailure(out, opts.format, err)
	}

	if opts.format == formatJSON {
		if err := output.RenderJSON(out, output.NewJSONReport(report)); err != nil {
			return err
		}
	} else {
		output.RenderTerminal(out, report, output.Options{
			Decimals: cfg.Payouts.Decimals,
			Symbol:   cfg.Payouts.Symbol,
			ShowEras: opts.showEras,
			Chart:    opts.chart,
		})
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.Path, report); err != nil {
			log.WarnContext(ctx, "Could not record run history", slog.String("error", err.Error()))
		}
	}

	if opts.writeReport {
		path, err := reports.WriteJSON(cfg.Reports.Dir, output.NewJSONReport(report), "payouts", report.StartedAt)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if opts.format == formatTerminal {
			fmt.Fprintf(out, "\nReport written to %s\n", path)
		}
	}

	return nil
}

func recordHistory(ctx context.Context, path string, report *pipeline.Report) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, ar := range report.Accounts {
		_, err := store.Record(ctx, history.Run{
			RecordedAt: report.StartedAt,
			Chain:      report.Chain,
			Account:    ar.Account,
			Depth:      report.Depth,
			Policy:     report.Policy,
			Outcome:    ar.Summary.Outcome.String(),
			Total:      ar.Summary.Total,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
