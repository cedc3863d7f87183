package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	// A missing .env file is fine; the environment may be set elsewhere.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hebbnet",
		Short: "Asynchronous neuron network simulator",
		Long: `hebbnet runs a network of independently scheduled neurons that exchange
signals, form links at random and strengthen the links that fire together.

Configuration is read from hebbnet.yaml (or --config), then HEBBNET_*
environment variables, then command-line flags.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: search ./, ./config, /etc/hebbnet)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSimulateCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hebbnet version %s\n", version)
		},
	}
}
