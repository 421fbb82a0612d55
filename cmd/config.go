package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if f := viper.ConfigFileUsed(); f != "" {
			fmt.Fprintf(out, "config file:          %s\n", f)
		}
		fmt.Fprintf(out, "data dir:             %s\n", cfg.ResolvedDataDir())
		fmt.Fprintf(out, "registry remote:      %s\n", cfg.Registry.RemoteURL)
		fmt.Fprintf(out, "registry maintainers: %s\n", strings.Join(cfg.Registry.Maintainers, ", "))
		fmt.Fprintf(out, "cache:                enabled=%v ttl=%s\n", cfg.Cache.Enabled, cfg.Cache.TTL)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
