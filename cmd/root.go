// Package cmd implements the tdc command-line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transport-data/tools/internal/config"
	"github.com/transport-data/tools/internal/log"
	"github.com/transport-data/tools/internal/paths"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "tdc",
	Short:   "Transport Data Commons tools",
	Long:    `Tools for maintaining SDMX structural artefacts in a local cache and the shared Transport Data Commons registry.`,
	Version: version,
	// The root command only prints help; the work lives in subcommands.
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tdc/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "",
		"root directory for the local cache and registry working copy")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug output to tdc.log in the data directory")

	// Bind flags to viper
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("registry.remote_url", defaults.Registry.RemoteURL)
	viper.SetDefault("registry.maintainers", defaults.Registry.Maintainers)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a commented default.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := filepath.Join(paths.ConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func initLogging() {
	if !debug && os.Getenv("TDC_DEBUG") == "" {
		return
	}
	logPath := filepath.Join(cfg.ResolvedDataDir(), "tdc.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return
	}
	if _, err := log.Init(logPath); err == nil {
		log.SetEnabled(true)
	}
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
