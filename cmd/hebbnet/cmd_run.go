package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/najoast/hebbnet/bootstrap"
	"github.com/najoast/hebbnet/core"
	"github.com/najoast/hebbnet/logging"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the network and print a report for every input line",
		Long: `Run starts one goroutine per neuron on the wall clock. Each line read
from standard input prints one activity report. End of input, SIGINT or
SIGTERM stops the network gracefully.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, loader, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			var opts []bootstrap.Option
			if path != "" {
				opts = append(opts, bootstrap.WithConfigWatcher(path, loader))
			}

			app, err := bootstrap.NewApplication(cfg, logger, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.Start(ctx); err != nil {
				return err
			}
			if addr := app.ReportAddr(); addr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "report server on http://%s/report\n", addr)
			}

			loopErr := consoleLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), app.Network())

			if err := app.Shutdown(context.WithoutCancel(ctx)); err != nil {
				return err
			}
			return loopErr
		},
	}

	addNetworkFlags(cmd.Flags())
	cmd.Flags().Bool("serve", false, "Serve activity snapshots over HTTP")
	cmd.Flags().Int("port", 0, "HTTP port for --serve")

	return cmd
}

// consoleLoop writes one report line per input line. It returns nil at end of
// input or when ctx is done.
func consoleLoop(ctx context.Context, in io.Reader, out io.Writer, network *core.Network) error {
	lines := make(chan struct{})
	scanErr := make(chan error, 1)

	// The reader cannot be interrupted; it is left behind on cancellation.
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		case <-lines:
			if err := core.WriteReport(out, network.Report()); err != nil {
				return err
			}
		}
	}
}
