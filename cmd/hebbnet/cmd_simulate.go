package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/najoast/hebbnet/bootstrap"
	"github.com/najoast/hebbnet/core"
	"github.com/najoast/hebbnet/logging"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Step the network on a virtual clock and print reports",
		Long: `Simulate steps every neuron in id order with a fixed time step on a
virtual clock. With --seed the output is reproducible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			steps, _ := cmd.Flags().GetInt("steps")
			dt, _ := cmd.Flags().GetDuration("dt")
			every, _ := cmd.Flags().GetInt("every")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			if dt < 0 {
				return fmt.Errorf("--dt must not be negative, got %v", dt)
			}
			if policy, _ := cfg.OverflowPolicy(); policy == core.Block {
				return fmt.Errorf("--policy=%s: %w", policy, core.ErrBlockingPolicy)
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts, err := bootstrap.NetworkOptions(cfg, logger.Logger)
			if err != nil {
				return err
			}
			opts = append(opts, core.WithClock(core.NewManualClock(time.Unix(0, 0))))

			network, err := core.NewNetwork(cfg.Params(), opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := 1; i <= steps; i++ {
				if _, err := network.StepAll(cmd.Context(), dt.Seconds()); err != nil {
					return err
				}
				if every > 0 && i%every == 0 && i != steps {
					if err := core.WriteReport(out, network.Report()); err != nil {
						return err
					}
				}
			}
			return core.WriteReport(out, network.Report())
		},
	}

	addNetworkFlags(cmd.Flags())
	cmd.Flags().Int("steps", 100, "Number of steps")
	cmd.Flags().Duration("dt", 10*time.Millisecond, "Virtual time per step")
	cmd.Flags().Int("every", 0, "Also print a report every N steps")

	return cmd
}
