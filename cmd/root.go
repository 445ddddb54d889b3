package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "tariffbroker",
	Short:        "Tariff pricing agent for a simulated retail energy market",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults apply when empty)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file, or the defaults when none is
// given, and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	logger.SetGlobalLevel(cfg.Logging.Level)
	return cfg, nil
}
