package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/najoast/hebbnet/config"
)

// addNetworkFlags registers the flags that override network configuration
func addNetworkFlags(flags *pflag.FlagSet) {
	flags.Int("size", 0, "Number of neurons")
	flags.Float64("max-energy", 0, "Energy cap per neuron")
	flags.Float64("threshold", 0, "Firing threshold per second")
	flags.Int("max-link", 0, "Maximum outgoing links per neuron")
	flags.Uint64("seed", 0, "Seed for reproducible runs")
	flags.Int("trace", -1, "Log every cycle of this neuron at debug level")
	flags.Int("mailbox", 0, "Mailbox capacity per neuron")
	flags.String("policy", "", "Mailbox overflow policy: drop-oldest, reject-new, block")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig loads the configuration file and environment, then applies the
// flags the user set. It returns the file path, empty when none was found.
func loadConfig(cmd *cobra.Command) (*config.Config, string, *config.Loader, error) {
	loader := config.NewLoader()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if found, err := loader.FindConfigFile(); err == nil {
			path = found
		}
	}

	cfg, err := loader.Load(path)
	if err != nil {
		return nil, "", nil, err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", nil, fmt.Errorf("invalid flags: %w", err)
	}

	return cfg, path, loader, nil
}

// applyFlags copies every changed flag into cfg
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("size", func() (e error) { cfg.Network.Size, e = flags.GetInt("size"); return })
	set("max-energy", func() (e error) { cfg.Network.MaxEnergy, e = flags.GetFloat64("max-energy"); return })
	set("threshold", func() (e error) { cfg.Network.Threshold, e = flags.GetFloat64("threshold"); return })
	set("max-link", func() (e error) { cfg.Network.MaxLink, e = flags.GetInt("max-link"); return })
	set("trace", func() (e error) { cfg.Network.TraceNeuron, e = flags.GetInt("trace"); return })
	set("mailbox", func() (e error) { cfg.Mailbox.Capacity, e = flags.GetInt("mailbox"); return })
	set("policy", func() (e error) { cfg.Mailbox.Policy, e = flags.GetString("policy"); return })
	set("seed", func() error {
		seed, e := flags.GetUint64("seed")
		cfg.Network.Seed = &seed
		return e
	})
	set("log-level", func() error {
		level, e := flags.GetString("log-level")
		cfg.Log.Level = config.LogLevel(level)
		return e
	})
	set("serve", func() (e error) { cfg.Report.Enabled, e = flags.GetBool("serve"); return })
	set("port", func() (e error) { cfg.Report.Port, e = flags.GetInt("port"); return })

	return err
}
