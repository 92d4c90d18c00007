package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmagro/sidecar-payouts/internal/config"
	"github.com/dmagro/sidecar-payouts/internal/output"
	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

func probeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the sidecar is reachable and attached to a chain",
		Long: `Run only the connectivity probe: GET / must answer 200, then
/node/version must name a chain other than "None".

Example:
  payouts probe --sidecar-url http://127.0.0.1:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runProbe(cmd, cfg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTerminal, "Output format: terminal|json")

	return cmd
}

func runProbe(cmd *cobra.Command, cfg *config.Config, format string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := newLogger(cmd, cfg)

	client := sidecar.NewClient(cfg.Sidecar.URL, cfg.Sidecar.Timeout)
	log.DebugContext(ctx, "Probing sidecar", slog.String("url", client.BaseURL()))

	version, err := client.ProbeVersion(ctx)
	if err != nil {
		return renderFailure(out, format, err)
	}

	res := output.ProbeResult{URL: client.BaseURL(), Version: version}
	if format == formatJSON {
		return output.RenderJSON(out, res)
	}
	output.RenderProbeTerminal(out, res)
	return nil
}
