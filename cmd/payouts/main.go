// Command payouts reports the unclaimed staking payouts of one or more
// accounts, as seen by a locally running Substrate API sidecar.
//
// Usage examples:
//
//	payouts probe
//	payouts total --account-id 15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5 --depth 10
//	payouts total -a alice -a bob -d 3 --eras --chart --report
//	payouts history --account-id alice --limit 5
//
// Every run is one probe (GET / then GET /node/version) followed by one
// staking-payouts query per account. Nothing is retried. Any stage failure
// prints a diagnostic and exits 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		// Stage failures already printed their diagnostic.
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Unclaimed staking payouts from a Substrate API sidecar",
		Long: `Query a Substrate API sidecar and sum the staking payouts an account has
not claimed yet, over the last N eras.

Configuration is read from payouts.yaml (when present), a .env file and
PAYOUTS_* environment variables. Flags override all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default payouts.yaml when present)")
	cmd.PersistentFlags().String("sidecar-url", "", "Sidecar base URL (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	cmd.AddCommand(totalCmd())
	cmd.AddCommand(probeCmd())
	cmd.AddCommand(historyCmd())

	return cmd
}
